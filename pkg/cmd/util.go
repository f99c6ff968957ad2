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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-trail/pkg/circuit"
)

// GetFlag gets an expected flag, or exits with status 2 if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits with status 2 if an error
// arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetInt gets an expected int flag, or exits with status 2 if an error arises.
func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringSlice gets an expected string-slice flag, or exits with status 2 if
// an error arises.
func GetStringSlice(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// readArtifactFile parses a frontend artifact from the given file.
func readArtifactFile(filename string) (*circuit.Artifact, *circuit.Parser) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	parser := circuit.NewParser()
	//
	artifact, err := parser.Parse(bytes)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return artifact, parser
}

// writeOutputFile streams a serialiser into the given file.
func writeOutputFile(filename string, serialise func(io.Writer) error) {
	file, err := os.Create(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	defer file.Close()
	//
	if err := serialise(file); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}
