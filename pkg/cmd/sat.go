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
	"regexp"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-trail/pkg/sat"
	"github.com/consensys/go-trail/pkg/util"
)

// satCmd represents the differential/linear SAT command
var satCmd = &cobra.Command{
	Use:   "sat [flags] artifact_file",
	Short: "Compile the circuit into a differential or linear SAT instance.",
	Long: `Compile the circuit into a differential or linear SAT instance.
	Differential mode encodes DDT propagation of XOR differences, linear
	mode LAT propagation of linear masks; either way per-S-box weight
	variables count the trail's cost, bounded via --max-weight.  The
	written CNF is satisfiable exactly when a trail within the weight
	bound exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := loadConfig(cmd)
		//
		mode := sat.Differential
		if GetFlag(cmd, "linear") || (!cmd.Flags().Changed("differential") &&
			!cmd.Flags().Changed("linear") && config.Sat.Linear) {
			mode = sat.Linear
		}

		if GetFlag(cmd, "linear") && GetFlag(cmd, "differential") {
			log.Fatal("--differential and --linear are mutually exclusive")
		}
		//
		freeInputs := GetStringSlice(cmd, "free-inputs")
		if len(freeInputs) == 0 {
			freeInputs = config.Sat.FreeInputs
		}
		//
		artifact, _ := readArtifactFile(args[0])
		//
		stats := util.NewPerfStats()
		modeller := sat.NewModeller(mode, freeInputs)
		//
		for _, output := range artifact.Outputs {
			log.Infof("output %s: %d bits", output.Name, len(output.Expressions))
			//
			for _, expr := range output.Expressions {
				if _, err := modeller.Traverse(expr); err != nil {
					log.Fatal(err)
				}
			}
		}
		//
		modeller.RequireActiveInput()
		//
		if err := modeller.LimitWeight(intOr(cmd, "max-weight", config.Sat.MaxWeight)); err != nil {
			log.Fatal(err)
		}
		//
		stats.Log("modelling circuit")
		//
		filename := stringOr(cmd, "output", config.Sat.Output)
		//
		writeOutputFile(filename, func(w io.Writer) error {
			return modeller.Model().WriteDIMACS(w)
		})
		//
		log.Infof("wrote %d variables and %d clauses to %s (%s mode)",
			modeller.Model().NumVariables(), modeller.Model().NumClauses(),
			filename, mode)
		//
		if pattern := GetString(cmd, "print-states"); pattern != "" {
			printStates(modeller, pattern)
		}
	},
}

// printStates dumps the modelled expressions whose variable name matches the
// given pattern, pairing each CNF variable with the circuit bit it tracks.
func printStates(modeller *sat.Modeller, pattern string) {
	matcher, err := regexp.Compile(pattern)
	if err != nil {
		log.Fatal(err)
	}
	//
	model := modeller.Model()
	//
	for expr, v := range modeller.ModelledExprs() {
		name := model.VariableName(v)
		//
		if matcher.MatchString(name) {
			fmt.Printf("%20s | %s\n", name, expr)
		}
	}
}

func init() {
	rootCmd.AddCommand(satCmd)
	satCmd.Flags().Bool("differential", false, "encode differential (DDT) propagation; the default")
	satCmd.Flags().Bool("linear", false, "encode linear (LAT) propagation")
	satCmd.Flags().Int("max-weight", 63, "upper bound on the total trail weight")
	satCmd.Flags().StringSlice("free-inputs", nil,
		"input registers carrying free differences or masks (default plaintext)")
	satCmd.Flags().String("print-states", "",
		"print modelled expressions whose variable name matches the given regex")
	satCmd.Flags().StringP("output", "o", "output.cnf", "output DIMACS file")
}
