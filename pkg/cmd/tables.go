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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/consensys/go-trail/pkg/circuit"
)

// tablesCmd represents the table inspection command
var tablesCmd = &cobra.Command{
	Use:   "tables [flags] artifact_file",
	Short: "Print the derived tables of every S-box in the artifact.",
	Long: `Print the derived tables of every S-box in the artifact: the ANF of
	each output coordinate, the difference distribution table and the
	linear approximation table.  Wide tables wrap to the terminal width.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Only the S-box declarations matter here, so the artifact schema
		// is consumed directly rather than through the full parser.
		bytes, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		var root struct {
			Components struct {
				Sboxes []struct {
					Name        string   `json:"name"`
					InputWidth  uint     `json:"input_width"`
					OutputWidth uint     `json:"output_width"`
					Value       []uint64 `json:"value"`
				} `json:"sboxes"`
			} `json:"components"`
		}
		//
		if err := json.Unmarshal(bytes, &root); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		width := terminalWidth()
		//
		for _, sbox := range root.Components.Sboxes {
			printSbox(sbox.Name, sbox.InputWidth, sbox.OutputWidth, sbox.Value, width)
		}
	},
}

// terminalWidth returns the width of the attached terminal, or a conventional
// default when output is redirected.
func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	//
	return 80
}

func printSbox(name string, inputWidth, outputWidth uint, values []uint64, width int) {
	table, err := circuit.NewLookupTable(name, inputWidth, outputWidth, values)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	fmt.Printf("%s: %d -> %d bits\n", name, inputWidth, outputWidth)
	//
	fmt.Println(" ANF coefficients (monomial indices per coordinate):")
	//
	for j := uint(0); j < outputWidth; j++ {
		coeffs := table.ANFBits(j)
		fmt.Printf("  y%d:", j)
		//
		for i, ok := coeffs.NextSet(0); ok; i, ok = coeffs.NextSet(i + 1) {
			fmt.Printf(" %d", i)
		}
		//
		fmt.Println()
	}
	//
	fmt.Println(" DDT:")
	printRows(len(table.DDT()[0]), len(table.DDT()), width, func(a, b int) string {
		return fmt.Sprintf("%d", table.DDT()[a][b])
	})
	//
	fmt.Println(" LAT:")
	printRows(len(table.LAT()[0]), len(table.LAT()), width, func(a, b int) string {
		return fmt.Sprintf("%d", table.LAT()[a][b])
	})
}

// printRows renders a table row-major, wrapping rows which exceed the
// terminal width.
func printRows(columns, rows, width int, cell func(a, b int) string) {
	// Find the widest cell so columns align.
	cellWidth := 1
	//
	for a := 0; a < rows; a++ {
		for b := 0; b < columns; b++ {
			if n := len(cell(a, b)); n > cellWidth {
				cellWidth = n
			}
		}
	}
	//
	perLine := (width - 2) / (cellWidth + 1)
	if perLine < 1 {
		perLine = 1
	}
	//
	for a := 0; a < rows; a++ {
		for b := 0; b < columns; b++ {
			if b > 0 && b%perLine == 0 {
				fmt.Println()
			}
			//
			fmt.Printf(" %*s", cellWidth, cell(a, b))
		}
		//
		fmt.Println()
	}
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
