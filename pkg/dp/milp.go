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
package dp

import (
	"bufio"
	"fmt"
	"io"
)

// Var is a binary MILP variable, identified by its allocation index.
type Var int

// DeferredVar is a handle onto a slot which currently designates some real
// variable.  Slots implement Copy propagation: when a modelled value is
// consumed a second time, the variable behind it is split into two fresh
// ones, and the slot is redirected so every earlier holder transparently
// sees the first half.  Constraints built over deferred variables resolve
// their slots only at serialisation time.
type DeferredVar int

// Comparator relates a linear expression to its right-hand side.
type Comparator uint8

const (
	// LessEqual is <=.
	LessEqual Comparator = iota
	// Equal is =.
	Equal
	// GreaterEqual is >=.
	GreaterEqual
)

func (p Comparator) String() string {
	switch p {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	default:
		return ">="
	}
}

// Term is one coefficient-variable product over deferred variables.
type Term struct {
	Var   DeferredVar
	Coeff int
}

// LinearExpr is a sum of terms plus an integer constant.
type LinearExpr struct {
	Terms    []Term
	Constant int
}

// Constraint relates a linear expression to a constant.
type Constraint struct {
	Expr LinearExpr
	Cmp  Comparator
	RHS  int
}

// ObjectiveSense selects minimisation or maximisation.
type ObjectiveSense uint8

const (
	// Minimize the objective.
	Minimize ObjectiveSense = iota
	// Maximize the objective.
	Maximize
)

// realTerm is a resolved coefficient-variable product, used for constraints
// whose variables are fixed at emission time (the copy splits).
type realTerm struct {
	v     Var
	coeff int
}

type realConstraint struct {
	terms    []realTerm
	constant int
	cmp      Comparator
	rhs      int
}

// Model is a binary MILP under construction.  Real variables are plain
// indices; deferred variables are slots resolved late, so that Copy
// propagation can rewrite them in place.
type Model struct {
	names []string
	// slots maps every deferred variable onto its current real variable.
	slots []Var
	// resolved constraints over real variables (the copy splits).
	resolved []realConstraint
	// deferred constraints, resolved at serialisation.
	deferred []Constraint
	//
	objective      LinearExpr
	objectiveSense ObjectiveSense
	hasObjective   bool
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{}
}

// NumVariables returns the number of real variables allocated so far.
func (p *Model) NumVariables() uint {
	return uint(len(p.names))
}

// CreateVariable allocates a fresh binary variable.
func (p *Model) CreateVariable(name string) Var {
	p.names = append(p.names, name)
	return Var(len(p.names) - 1)
}

// CreateDeferred wraps an existing real variable in a fresh slot.
func (p *Model) CreateDeferred(v Var) DeferredVar {
	p.slots = append(p.slots, v)
	return DeferredVar(len(p.slots) - 1)
}

// CreateDeferredVariable allocates a fresh variable and a slot onto it.
func (p *Model) CreateDeferredVariable(name string) DeferredVar {
	return p.CreateDeferred(p.CreateVariable(name))
}

// Resolve returns the real variable a slot currently designates.
func (p *Model) Resolve(dv DeferredVar) Var {
	return p.slots[dv]
}

// AddConstraint records a constraint over deferred variables; slots resolve
// when the model is written.
func (p *Model) AddConstraint(constraint Constraint) {
	p.deferred = append(p.deferred, constraint)
}

// SetObjective installs the objective function.
func (p *Model) SetObjective(expr LinearExpr, sense ObjectiveSense) {
	p.objective = expr
	p.objectiveSense = sense
	p.hasObjective = true
}

// Copy implements the division trail of the Copy function: a variable `a`
// consumed once more splits as a = b0 + b1 (see Xiang et al.,
// doi:10.1007/978-3-662-53887-6_24).  The given slot is redirected onto b0,
// so every constraint already holding it follows silently; the returned
// fresh slot designates b1.
func (p *Model) Copy(from DeferredVar) DeferredVar {
	a := p.slots[from]
	b0 := p.CreateVariable("")
	b1 := p.CreateVariable("")
	// a - b0 - b1 = 0, resolved immediately: the split must bind the
	// variable `a` designated right now.
	p.resolved = append(p.resolved, realConstraint{
		terms: []realTerm{{a, 1}, {b0, -1}, {b1, -1}},
		cmp:   Equal,
	})
	//
	p.slots[from] = b0
	//
	return p.CreateDeferred(b1)
}

// Xor models b = a0 ^ a1 under division propagation: a0 + a1 - b = 0.
func (p *Model) Xor(a0, a1 DeferredVar) DeferredVar {
	b := p.CreateDeferredVariable("")
	//
	p.AddConstraint(Constraint{
		Expr: LinearExpr{Terms: []Term{{a0, 1}, {a1, 1}, {b, -1}}},
		Cmp:  Equal,
	})
	//
	return b
}

// And models b = a0 & a1 under division propagation: b dominates both inputs
// and never exceeds their sum.
func (p *Model) And(a0, a1 DeferredVar) DeferredVar {
	b := p.CreateDeferredVariable("")
	//
	p.AddConstraint(Constraint{
		Expr: LinearExpr{Terms: []Term{{b, 1}, {a0, -1}}},
		Cmp:  GreaterEqual,
	})
	p.AddConstraint(Constraint{
		Expr: LinearExpr{Terms: []Term{{b, 1}, {a1, -1}}},
		Cmp:  GreaterEqual,
	})
	p.AddConstraint(Constraint{
		Expr: LinearExpr{Terms: []Term{{b, 1}, {a0, -1}, {a1, -1}}},
		Cmp:  LessEqual,
	})
	//
	return b
}

// Constant allocates a variable pinned to zero or one, wrapped in a slot.
func (p *Model) Constant(value bool) DeferredVar {
	v := p.CreateVariable("")
	rhs := 0
	//
	if value {
		rhs = 1
	}
	//
	p.resolved = append(p.resolved, realConstraint{
		terms: []realTerm{{v, 1}},
		cmp:   Equal,
		rhs:   rhs,
	})
	//
	return p.CreateDeferred(v)
}

// VariableName returns the LP-file name of a real variable.
func (p *Model) VariableName(v Var) string {
	return fmt.Sprintf("x_%d", v)
}

// WriteLP serialises the model in textual LP form: the objective section,
// Subject To, and the Binary declaration of every variable.  Deferred
// constraints resolve their slots here, after all copies have been applied.
func (p *Model) WriteLP(w io.Writer) error {
	buffered := bufio.NewWriter(w)
	//
	if p.hasObjective {
		if p.objectiveSense == Maximize {
			fmt.Fprintln(buffered, "Maximize")
		} else {
			fmt.Fprintln(buffered, "Minimize")
		}
		//
		fmt.Fprintf(buffered, " obj:%s\n", p.formatTerms(p.resolveTerms(p.objective.Terms)))
	}
	//
	fmt.Fprintln(buffered, "Subject To")
	//
	for _, constraint := range p.resolved {
		p.writeConstraint(buffered, constraint)
	}
	//
	for _, constraint := range p.deferred {
		p.writeConstraint(buffered, realConstraint{
			terms:    p.resolveTerms(constraint.Expr.Terms),
			constant: constraint.Expr.Constant,
			cmp:      constraint.Cmp,
			rhs:      constraint.RHS,
		})
	}
	//
	fmt.Fprintln(buffered, "Binary")
	//
	for v := range p.names {
		fmt.Fprintf(buffered, " %s\n", p.VariableName(Var(v)))
	}
	//
	return buffered.Flush()
}

func (p *Model) resolveTerms(terms []Term) []realTerm {
	resolved := make([]realTerm, len(terms))
	//
	for i, term := range terms {
		resolved[i] = realTerm{p.slots[term.Var], term.Coeff}
	}
	//
	return resolved
}

// writeConstraint renders one constraint line.  The expression constant
// migrates onto the right-hand side.
func (p *Model) writeConstraint(w io.Writer, constraint realConstraint) {
	fmt.Fprintf(w, "%s %s %.6f\n",
		p.formatTerms(constraint.terms),
		constraint.cmp,
		float64(constraint.rhs-constraint.constant))
}

// formatTerms renders every term with an explicit leading sign and
// six-decimal coefficient magnitude.
func (p *Model) formatTerms(terms []realTerm) string {
	var s string
	//
	for _, term := range terms {
		if term.coeff == 0 {
			continue
		}
		//
		sign := "+"
		coeff := term.coeff
		//
		if coeff < 0 {
			sign, coeff = "-", -coeff
		}
		//
		s += fmt.Sprintf(" %s %.6f %s", sign, float64(coeff), p.VariableName(term.v))
	}
	//
	return s
}
