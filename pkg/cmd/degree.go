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
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-trail/pkg/degree"
	"github.com/consensys/go-trail/pkg/util"
)

// degreeCmd represents the numeric-mapping command
var degreeCmd = &cobra.Command{
	Use:   "degree [flags] artifact_file",
	Short: "Bound the algebraic degree of every output bit.",
	Long: `Bound the algebraic degree of every output bit via the numeric
	mapping: each output polynomial is bounded by summing per-variable
	degrees, with products of state bits refined through the update
	expressions they stem from.  Bounds are printed comma-separated in
	output bit order; -1 marks constant-zero bits.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := loadConfig(cmd)
		//
		inputDegrees, err := parseInputDegrees(
			stringOr(cmd, "input-degrees", config.Degree.InputDegrees))
		if err != nil {
			log.Fatal(err)
		}
		//
		bounder := degree.NewBounder(degree.Config{
			InputDegrees:       inputDegrees,
			DefaultInputDegree: intOr(cmd, "default-input-degree", config.Degree.DefaultInputDegree),
			ExpandTimes:        intOr(cmd, "expand", config.Degree.Expand),
		})
		//
		artifact, _ := readArtifactFile(args[0])
		stats := util.NewPerfStats()
		//
		var bounds []string
		//
		for _, output := range artifact.Outputs {
			log.Infof("output %s: %d bits", output.Name, len(output.Expressions))
			//
			for _, expr := range output.Expressions {
				poly, err := bounder.Convert(expr)
				if err != nil {
					log.Fatal(err)
				}
				//
				deg, err := bounder.Bound(poly)
				if err != nil {
					log.Fatal(err)
				}
				// Constant-zero bits clamp to -1.
				if deg < -1 {
					deg = -1
				}
				//
				bounds = append(bounds, strconv.Itoa(deg))
			}
		}
		//
		stats.Log("bounding degrees")
		fmt.Println(strings.Join(bounds, ","))
	},
}

// parseInputDegrees parses "name1=value1,name2=value2,..." assignments.
func parseInputDegrees(str string) (map[string]int, error) {
	if str == "" {
		return nil, nil
	}
	//
	result := make(map[string]int)
	//
	for _, item := range strings.Split(str, ",") {
		item = strings.TrimSpace(item)
		//
		if item == "" {
			continue
		}
		//
		name, valueStr, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid input degree %q: expected name=value", item)
		}
		//
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return nil, fmt.Errorf("invalid input degree %q: %w", item, err)
		}
		//
		result[name] = value
	}
	//
	return result, nil
}

func init() {
	rootCmd.AddCommand(degreeCmd)
	degreeCmd.Flags().StringP("input-degrees", "d", "",
		"input degrees, format \"name1=value1,name2=value2,...\"; unnamed free registers iv and plaintext default to degree one")
	degreeCmd.Flags().IntP("default-input-degree", "D", 0,
		"degree of input registers not named in --input-degrees")
	degreeCmd.Flags().Int("expand", 1, "substitute state reads through their updates n times")
}
