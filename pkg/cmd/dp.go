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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-trail/pkg/dp"
	"github.com/consensys/go-trail/pkg/util"
)

// dpCmd represents the division-property command
var dpCmd = &cobra.Command{
	Use:   "dp [flags] artifact_file",
	Short: "Compile the circuit into a division-property MILP instance.",
	Long: `Compile the circuit into a division-property MILP instance.
	The initial division property is given per input register via
	--active-bits; bits of registers never named stay unspecified.  The
	written LP minimises the property reaching the selected output bits;
	solving it (externally) decides whether an integral distinguisher
	exists.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		config := loadConfig(cmd)
		stats := util.NewPerfStats()
		//
		artifact, _ := readArtifactFile(args[0])
		stats.Log("parsing artifact")
		//
		activeBits, err := util.ParseNamedBitRanges(
			stringOr(cmd, "active-bits", config.Dp.ActiveBits))
		if err != nil {
			log.Fatal(err)
		}
		//
		outputBitsStr := stringOr(cmd, "output-bits", config.Dp.OutputBits)
		//
		outputBits, err := util.ParseNamedBitRanges(outputBitsStr)
		if err != nil {
			log.Fatal(err)
		}
		//
		allOutputBits := outputBitsStr == ""
		//
		modeller := dp.NewModeller()
		//
		for name, bits := range activeBits {
			modeller.AddActiveBits(name, bits)
		}
		//
		stats = util.NewPerfStats()
		//
		for _, output := range artifact.Outputs {
			log.Infof("output %s: %d bits", output.Name, len(output.Expressions))
			//
			for i, expr := range output.Expressions {
				if !allOutputBits && !outputBits[output.Name][uint(i)] {
					continue
				}
				//
				result, err := modeller.Traverse(expr)
				if err != nil {
					log.Fatal(err)
				}
				//
				modeller.MarkOutput(result)
			}
		}
		//
		modeller.Finalize()
		stats.Log("modelling circuit")
		//
		filename := stringOr(cmd, "output", config.Dp.Output)
		//
		writeOutputFile(filename, func(w io.Writer) error {
			return modeller.Model().WriteLP(w)
		})
		//
		log.Infof("wrote %d binary variables to %s",
			modeller.Model().NumVariables(), filename)
	},
}

func init() {
	rootCmd.AddCommand(dpCmd)
	dpCmd.Flags().StringP("active-bits", "I", "",
		"initial division property, format \"name1=range;name2=range;...\" where a range is comma-separated offsets or a-b spans, e.g. \"0,2,4-7\"")
	dpCmd.Flags().StringP("output-bits", "O", "",
		"target output bits, same format as --active-bits; defaults to all output bits")
	dpCmd.Flags().StringP("output", "o", "output.lp", "output LP file")
}
