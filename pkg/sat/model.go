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

// Package sat implements the CNF model builder shared by the differential and
// linear modellers: a 1-indexed variable store, clause-level boolean gadgets,
// the Sinz sequential counter for cardinality bounds, table templates derived
// from two-level minimisation, and DIMACS serialisation.
package sat

import (
	"bufio"
	"fmt"
	"io"
)

// Variable is a CNF variable index.  Index zero is reserved and never
// assigned, matching the DIMACS convention where literal zero terminates a
// clause.
type Variable uint

// Literal is a signed variable occurrence: negative means negated.
type Literal int

// Pos returns the positive literal of this variable.
func (p Variable) Pos() Literal {
	return Literal(p)
}

// Neg returns the negated literal of this variable.
func (p Variable) Neg() Literal {
	return -Literal(p)
}

// Variable returns the variable underlying this literal.
func (p Literal) Variable() Variable {
	if p < 0 {
		return Variable(-p)
	}
	//
	return Variable(p)
}

// Clause is a disjunction of literals.
type Clause []Literal

// Model is a CNF formula under construction: a variable table and a clause
// list, with emission order equal to construction order.
type Model struct {
	// names holds one entry per variable; entry zero is the reserved index.
	names   []string
	clauses []Clause
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{names: []string{""}}
}

// NumVariables returns the number of assigned variables, excluding the
// reserved index zero.
func (p *Model) NumVariables() uint {
	return uint(len(p.names) - 1)
}

// NumClauses returns the number of clauses added so far.
func (p *Model) NumClauses() uint {
	return uint(len(p.clauses))
}

// Clauses returns the clause list.  Neither the list nor its clauses may be
// mutated.
func (p *Model) Clauses() []Clause {
	return p.clauses
}

// VariableName returns the debugging name given to a variable, possibly
// empty.
func (p *Model) VariableName(v Variable) string {
	return p.names[v]
}

// CreateVariable allocates a fresh variable with an optional debugging name.
func (p *Model) CreateVariable(name string) Variable {
	p.names = append(p.names, name)
	return Variable(len(p.names) - 1)
}

// CreateVariables allocates count fresh variables named prefix_0 and so on.
func (p *Model) CreateVariables(count uint, prefix string) []Variable {
	vars := make([]Variable, count)
	//
	for i := range vars {
		vars[i] = p.CreateVariable(fmt.Sprintf("%s_%d", prefix, i))
	}
	//
	return vars
}

// AddClause appends a clause.  The literal slice is retained.
func (p *Model) AddClause(lits ...Literal) {
	p.clauses = append(p.clauses, Clause(lits))
}

// AddXorClause constrains result to equal the XOR of the given values, via
// the classic exponential encoding: one clause per odd-cardinality subset of
// the operands, negating exactly that subset.  Each clause forbids one
// odd-parity assignment of values ++ result.
func (p *Model) AddXorClause(values []Variable, result Variable) {
	operands := make([]Variable, 0, len(values)+1)
	operands = append(operands, values...)
	operands = append(operands, result)
	//
	for k := uint(1); k <= uint(len(operands)); k += 2 {
		chooseSubsets(uint(len(operands)), k, func(subset map[uint]bool) {
			clause := make(Clause, len(operands))
			//
			for i, operand := range operands {
				if subset[uint(i)] {
					clause[i] = operand.Neg()
				} else {
					clause[i] = operand.Pos()
				}
			}
			//
			p.AddClause(clause...)
		})
	}
}

// AddAndClause constrains result to equal the conjunction of the given
// values.
func (p *Model) AddAndClause(values []Variable, result Variable) {
	for _, value := range values {
		p.AddClause(value.Pos(), result.Neg())
	}
	//
	clause := make(Clause, 0, len(values)+1)
	//
	for _, value := range values {
		clause = append(clause, value.Neg())
	}
	//
	p.AddClause(append(clause, result.Pos())...)
}

// AddOrClause constrains result to equal the disjunction of the given values.
func (p *Model) AddOrClause(values []Variable, result Variable) {
	for _, value := range values {
		p.AddClause(value.Neg(), result.Pos())
	}
	//
	clause := make(Clause, 0, len(values)+1)
	//
	for _, value := range values {
		clause = append(clause, value.Pos())
	}
	//
	p.AddClause(append(clause, result.Neg())...)
}

// AddEquivalentClause forces all listed variables equal, using a ring of
// implications: each variable implies its successor.
func (p *Model) AddEquivalentClause(values []Variable) {
	n := len(values)
	//
	for i, value := range values {
		p.AddClause(value.Neg(), values[(i+1)%n].Pos())
	}
}

// AddSequentialCounterLessEqual constrains the sum of the given variables to
// at most k, using the Sinz sequential counter: O(n*k) auxiliary variables
// s[i][j] recording "at least j+1 of the first i+1 inputs are set".
func (p *Model) AddSequentialCounterLessEqual(xs []Variable, k int) error {
	n := len(xs)
	//
	if k <= 0 {
		return fmt.Errorf("sequential counter bound %d must be positive", k)
	}

	if n < 2 {
		return fmt.Errorf("sequential counter needs at least 2 inputs, got %d", n)
	}
	//
	s := make([][]Variable, n-1)
	for i := range s {
		s[i] = p.CreateVariables(uint(k), fmt.Sprintf("seq_cnt_s_%d", i))
	}
	//
	p.AddClause(xs[0].Neg(), s[0][0].Pos())
	//
	for j := 1; j < k; j++ {
		p.AddClause(s[0][j].Neg())
	}
	//
	for i := 1; i < n-1; i++ {
		p.AddClause(xs[i].Neg(), s[i][0].Pos())
		p.AddClause(s[i-1][0].Neg(), s[i][0].Pos())
		//
		for j := 1; j < k; j++ {
			p.AddClause(xs[i].Neg(), s[i-1][j-1].Neg(), s[i][j].Pos())
		}
		//
		for j := 1; j < k; j++ {
			p.AddClause(s[i-1][j].Neg(), s[i][j].Pos())
		}
		//
		p.AddClause(xs[i].Neg(), s[i-1][k-1].Neg())
	}
	//
	p.AddClause(xs[n-1].Neg(), s[n-2][k-1].Neg())
	//
	return nil
}

// WriteDIMACS serialises the model in DIMACS CNF form.  The variable count in
// the header excludes the reserved index zero.
func (p *Model) WriteDIMACS(w io.Writer) error {
	buffered := bufio.NewWriter(w)
	//
	fmt.Fprintf(buffered, "p cnf %d %d\n", p.NumVariables(), len(p.clauses))
	//
	for _, clause := range p.clauses {
		for _, lit := range clause {
			fmt.Fprintf(buffered, "%d ", lit)
		}
		//
		fmt.Fprintln(buffered, "0")
	}
	//
	return buffered.Flush()
}

// Write renders the model clause-per-line using variable names where
// available, for human inspection.
func (p *Model) Write(w io.Writer, printNames bool) error {
	buffered := bufio.NewWriter(w)
	//
	for _, clause := range p.clauses {
		for i, lit := range clause {
			if i != 0 {
				fmt.Fprint(buffered, " ")
			}
			//
			if lit < 0 {
				fmt.Fprint(buffered, "-")
			}
			//
			name := p.names[lit.Variable()]
			//
			if printNames && name != "" {
				fmt.Fprint(buffered, name)
			} else {
				fmt.Fprintf(buffered, "%d", lit.Variable())
			}
		}
		//
		fmt.Fprintln(buffered)
	}
	//
	return buffered.Flush()
}

// chooseSubsets invokes the callback with every k-subset of {0, ..., n-1},
// in lexicographic order.
func chooseSubsets(n, k uint, fn func(map[uint]bool)) {
	indices := make([]uint, k)
	for i := range indices {
		indices[i] = uint(i)
	}
	//
	for {
		subset := make(map[uint]bool, k)
		for _, index := range indices {
			subset[index] = true
		}
		//
		fn(subset)
		// Advance to the next combination.
		i := k
		for i > 0 && indices[i-1] == uint(i-1)+n-k {
			i--
		}
		//
		if i == 0 {
			return
		}
		//
		i--
		indices[i]++
		//
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}
