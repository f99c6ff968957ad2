// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Config carries per-command defaults loadable from a TOML file via the
// --config persistent flag.  Flags given explicitly on the command line
// always win over config values.
type Config struct {
	Dp struct {
		Output     string `toml:"output"`
		ActiveBits string `toml:"active-bits"`
		OutputBits string `toml:"output-bits"`
	} `toml:"dp"`
	Sat struct {
		Output     string   `toml:"output"`
		Linear     bool     `toml:"linear"`
		MaxWeight  int      `toml:"max-weight"`
		FreeInputs []string `toml:"free-inputs"`
	} `toml:"sat"`
	Degree struct {
		InputDegrees       string `toml:"input-degrees"`
		DefaultInputDegree int    `toml:"default-input-degree"`
		Expand             int    `toml:"expand"`
	} `toml:"degree"`
}

// loadConfig reads the file named by --config, when given.
func loadConfig(cmd *cobra.Command) *Config {
	var config Config
	//
	filename := GetString(cmd, "config")
	//
	if filename == "" {
		return &config
	}
	//
	if _, err := toml.DecodeFile(filename, &config); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return &config
}

// stringOr returns the flag value when set on the command line, otherwise the
// config fallback when non-empty, otherwise the flag default.
func stringOr(cmd *cobra.Command, flag, fallback string) string {
	if !cmd.Flags().Changed(flag) && fallback != "" {
		return fallback
	}
	//
	return GetString(cmd, flag)
}

// intOr returns the flag value when set on the command line, otherwise the
// config fallback when non-zero, otherwise the flag default.
func intOr(cmd *cobra.Command, flag string, fallback int) int {
	if !cmd.Flags().Changed(flag) && fallback != 0 {
		return fallback
	}
	//
	return GetInt(cmd, flag)
}
