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
package sat

import (
	"fmt"
	"math/bits"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-trail/pkg/logic"
)

// Entry is one position of a template clause.  Positive and Negative emit a
// literal of the corresponding polarity; Unknown and NotTaken emit nothing.
type Entry uint8

const (
	// Unknown positions carry no information.
	Unknown Entry = iota
	// Positive emits the variable unnegated.
	Positive
	// Negative emits the variable negated.
	Negative
	// NotTaken positions were dashes in the minimised cover.
	NotTaken
)

// RawTable is a non-negative count table indexed by input and output masks,
// e.g. a DDT, or a LAT with entries replaced by their magnitudes.
type RawTable [][]uint64

// WeightFunc maps a non-zero table cell onto its unary-encoded weight, i.e.
// the number of weight positions set for that cell.
type WeightFunc func(value uint64) uint

// DifferentialWeight is the DDT weight function: a cell holding v pairs costs
// n - floor(log2 v), the negated log-probability of the transition.
func DifferentialWeight(inputWidth uint) WeightFunc {
	return func(value uint64) uint {
		return inputWidth - log2(value)
	}
}

// LinearWeight is the LAT weight function over entry magnitudes: a cell of
// magnitude v costs n - floor(log2 v) - 1, the negated log of twice the
// correlation.
func LinearWeight(inputWidth uint) WeightFunc {
	return func(value uint64) uint {
		return inputWidth - log2(value) - 1
	}
}

func log2(value uint64) uint {
	return uint(bits.Len64(value)) - 1
}

// TableTemplate is the reusable CNF shape of one count table: each row is a
// clause over input-mask bits, output-mask bits and unary weight bits.  Rows
// come from the complement cover of the table's admissible cells, so each
// clause forbids one family of impossible combinations.
type TableTemplate struct {
	inputWidth  uint
	outputWidth uint
	rows        [][]Entry
}

// InputWidth returns the number of input-mask positions.
func (p *TableTemplate) InputWidth() uint {
	return p.inputWidth
}

// OutputWidth returns the number of output-mask positions, which is also the
// number of weight positions.
func (p *TableTemplate) OutputWidth() uint {
	return p.outputWidth
}

// Rows returns the template clauses.  The result must not be mutated.
func (p *TableTemplate) Rows() [][]Entry {
	return p.rows
}

// BuildTableTemplate constructs the template of a count table.  Every
// non-zero cell (a, b, v) becomes one on-set minterm over the bits of a
// (most significant first), the bits of b, and the unary encoding of
// weightFn(v); the minimised complement cover of those minterms is the
// template.
func BuildTableTemplate(table RawTable, weightFn WeightFunc) (*TableTemplate, error) {
	if len(table) < 2 || len(table[0]) < 2 {
		return nil, fmt.Errorf("count table must be at least 2x2, got %dx%d",
			len(table), len(table[0]))
	}
	//
	inputWidth := uint(bits.Len(uint(len(table) - 1)))
	outputWidth := uint(bits.Len(uint(len(table[0]) - 1)))
	width := inputWidth + 2*outputWidth
	//
	on, err := logic.NewCover(width)
	if err != nil {
		return nil, err
	}
	//
	for a, row := range table {
		for b, value := range row {
			if value == 0 {
				continue
			}
			//
			weight := weightFn(value)
			if weight > outputWidth {
				return nil, fmt.Errorf(
					"cell (%d, %d) has weight %d exceeding the %d weight positions",
					a, b, weight, outputWidth)
			}
			//
			var minterm uint64
			// Input-mask bits, most significant first.
			for c := uint(0); c < inputWidth; c++ {
				minterm |= (uint64(a) >> (inputWidth - 1 - c) & 1) << c
			}
			// Output-mask bits, most significant first.
			for c := uint(0); c < outputWidth; c++ {
				minterm |= (uint64(b) >> (outputWidth - 1 - c) & 1) << (inputWidth + c)
			}
			// Unary weight: the trailing `weight` positions are set.
			for c := outputWidth - weight; c < outputWidth; c++ {
				minterm |= 1 << (inputWidth + outputWidth + c)
			}
			//
			on.Add(logic.Minterm(minterm, width))
		}
	}
	//
	log.Debugf("table template on-set:\n%s", on)
	//
	cover, err := logic.MinimiseComplement(on)
	if err != nil {
		return nil, err
	}
	//
	rows := make([][]Entry, len(cover.Cubes))
	//
	for i, cube := range cover.Cubes {
		row := make([]Entry, width)
		//
		for c := uint(0); c < width; c++ {
			switch value, bound := cube.Bound(c); {
			case !bound:
				row[c] = NotTaken
			case value == 1:
				// Forbidden one: the clause wants the variable false.
				row[c] = Negative
			default:
				row[c] = Positive
			}
		}
		//
		rows[i] = row
	}
	//
	return &TableTemplate{inputWidth, outputWidth, rows}, nil
}

// AddWeightTableClauses instantiates a template against concrete input and
// output variables.  Fresh weight variables are allocated, one per weight
// position, and every template row is emitted as one clause over
// inputs ++ outputs ++ weights.  The weight variables are returned so the
// caller can accumulate them into a global weight bound.
func (p *Model) AddWeightTableClauses(template *TableTemplate,
	inputs, outputs []Variable) ([]Variable, error) {
	//
	inputWidth, outputWidth := template.InputWidth(), template.OutputWidth()
	//
	if uint(len(inputs)) != inputWidth || uint(len(outputs)) != outputWidth {
		return nil, fmt.Errorf("template expects %d inputs and %d outputs, got %d and %d",
			inputWidth, outputWidth, len(inputs), len(outputs))
	}
	//
	weights := p.CreateVariables(outputWidth, "w")
	//
	for _, row := range template.Rows() {
		var clause Clause
		//
		for i, entry := range row {
			var v Variable
			//
			switch {
			case uint(i) < inputWidth:
				v = inputs[i]
			case uint(i) < inputWidth+outputWidth:
				v = outputs[uint(i)-inputWidth]
			default:
				v = weights[uint(i)-inputWidth-outputWidth]
			}
			//
			switch entry {
			case Positive:
				clause = append(clause, v.Pos())
			case Negative:
				clause = append(clause, v.Neg())
			}
		}
		//
		p.AddClause(clause...)
	}
	//
	return weights, nil
}
