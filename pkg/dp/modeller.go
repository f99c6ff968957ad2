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
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-trail/pkg/circuit"
	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

type resultKind uint8

const (
	// unspecified values belong to registers outside the initial division
	// property; nothing can be said about them.
	unspecified resultKind = iota
	// unmodelledFalse and unmodelledTrue are compile-time constants which
	// never touch the MILP.
	unmodelledFalse
	unmodelledTrue
	// modelled values carry a deferred MILP variable.
	modelled
)

// Result is the modelled value of one circuit bit: either an unmodelled
// constant (or unspecified), or a deferred MILP variable tracking the bit's
// division property.
type Result struct {
	kind resultKind
	dv   DeferredVar
	// constant marks a deferred constant not yet reused.  Its first reuse
	// aliases the pinned variable without a copy split; later reuses split.
	constant bool
}

// Modelled reports whether this result carries a MILP variable.
func (p Result) Modelled() bool {
	return p.kind == modelled
}

// Deferred returns the deferred variable of a modelled result.
func (p Result) Deferred() DeferredVar {
	if !p.Modelled() {
		panic("unmodelled result has no variable")
	}
	//
	return p.dv
}

// reuse prepares a memoised result for one more consumer.  Re-consuming a
// modelled value is a Copy under division propagation, so the variable
// splits; on its first reuse a deferred constant instead gets a fresh slot
// onto the same pinned variable.  The receiver is updated in place, so the memo table observes
// the redirection.
func (p *Result) reuse(model *Model) Result {
	if p.kind != modelled {
		return *p
	}
	//
	if p.constant {
		p.dv = model.CreateDeferred(model.Resolve(p.dv))
		p.constant = false
	} else {
		p.dv = model.Copy(p.dv)
	}
	//
	return *p
}

// Modeller compiles the division property propagation of a circuit into a
// MILP.  Bits of input registers named in the active-bits map seed the
// initial division property; every S-box instantiation contributes the
// reduced inequality description of its trail polytope.
type Modeller struct {
	model      *Model
	activeBits map[string]map[uint]bool
	memo       map[*circuit.Expr]*Result
	blocks     *hash.Map[circuit.SBoxBlock, []Result]
	// outputs are the marked output variables, deduplicated but in marking
	// order so emission stays deterministic.
	outputs    []DeferredVar
	outputSeen map[DeferredVar]bool
	source     InequalitySource
}

// NewModeller creates a modeller with the built-in inequality source.
func NewModeller() *Modeller {
	return &Modeller{
		model:      NewModel(),
		activeBits: make(map[string]map[uint]bool),
		memo:       make(map[*circuit.Expr]*Result),
		blocks:     hash.NewMap[circuit.SBoxBlock, []Result](64),
		outputSeen: make(map[DeferredVar]bool),
		source:     CutComplement,
	}
}

// Model exposes the MILP under construction.
func (p *Modeller) Model() *Model {
	return p.model
}

// SetInequalitySource replaces the trail-polytope inequality source, e.g.
// with an exact convex-hull converter.
func (p *Modeller) SetInequalitySource(source InequalitySource) {
	p.source = source
}

// AddActiveBits declares the initial division property of one input
// register: the given bit offsets are active, the register's remaining bits
// inactive.  Registers never declared stay unspecified.
func (p *Modeller) AddActiveBits(name string, bits map[uint]bool) {
	p.activeBits[name] = bits
}

// Traverse returns the modelled value of the given circuit bit.  Cache hits
// count as re-consumption and therefore split the underlying variable.
func (p *Modeller) Traverse(expr *circuit.Expr) (Result, error) {
	if cached, ok := p.memo[expr]; ok {
		return cached.reuse(p.model), nil
	}
	//
	result, err := p.traverse(expr)
	if err != nil {
		return Result{}, err
	}
	//
	p.memo[expr] = &result
	//
	return result, nil
}

func (p *Modeller) traverse(expr *circuit.Expr) (Result, error) {
	switch expr.Kind() {
	case circuit.Constant:
		if expr.Value() {
			return Result{kind: unmodelledTrue}, nil
		}
		//
		return Result{kind: unmodelledFalse}, nil
	case circuit.Read:
		return p.traverseRead(expr)
	case circuit.Lookup:
		return p.traverseLookup(expr)
	case circuit.Not:
		// Complementation leaves the division property unchanged.
		return p.Traverse(expr.Operand())
	case circuit.Xor:
		return p.traverseXor(expr)
	default:
		return p.traverseAndOr(expr)
	}
}

func (p *Modeller) traverseRead(expr *circuit.Expr) (Result, error) {
	target := expr.Target()
	//
	if target.Kind() == circuit.InputTarget {
		bits, ok := p.activeBits[target.Name()]
		//
		if !ok {
			return Result{kind: unspecified}, nil
		}
		//
		return Result{
			kind:     modelled,
			dv:       p.model.Constant(bits[expr.Offset()]),
			constant: true,
		}, nil
	}
	//
	if expr.Offset() >= uint(len(target.UpdateExprs)) {
		return Result{}, fmt.Errorf("state %q has no update expression for bit %d",
			target.Name(), expr.Offset())
	}
	//
	return p.Traverse(target.UpdateExprs[expr.Offset()])
}

func (p *Modeller) traverseLookup(expr *circuit.Expr) (Result, error) {
	block := circuit.SBoxBlock{Inputs: expr.Inputs(), Table: expr.Table()}
	//
	outputs, ok := p.blocks.Get(block)
	//
	if !ok {
		var err error
		//
		if outputs, err = p.modelBlock(block); err != nil {
			return Result{}, err
		}
		//
		p.blocks.Insert(block, outputs)
	}
	// Reads past the table width are constant false (8-bit-aligned frontend
	// reads over narrower S-boxes).
	if offset := expr.OutputOffset(); offset < uint(len(outputs)) {
		return outputs[offset], nil
	}
	//
	return Result{kind: unmodelledFalse}, nil
}

// modelBlock encodes one S-box instantiation: its division trails become a
// point cloud over the input and output variables, converted to cutting
// inequalities and reduced to a minimal covering set.
func (p *Modeller) modelBlock(block circuit.SBoxBlock) ([]Result, error) {
	inputs := make([]Result, len(block.Inputs))
	allModelled := true
	//
	for i, input := range block.Inputs {
		result, err := p.Traverse(input)
		if err != nil {
			return nil, err
		}
		//
		inputs[i] = result
		allModelled = allModelled && result.Modelled()
	}
	//
	outputWidth := block.Table.OutputWidth()
	//
	if !allModelled {
		outputs := make([]Result, outputWidth)
		for i := range outputs {
			outputs[i] = Result{kind: unspecified}
		}
		//
		return outputs, nil
	}
	// Variables of the trail polytope: the block inputs followed by fresh
	// output variables.
	vars := make([]DeferredVar, 0, uint(len(inputs))+outputWidth)
	//
	for _, input := range inputs {
		vars = append(vars, input.dv)
	}
	//
	for i := uint(0); i < outputWidth; i++ {
		vars = append(vars, p.model.CreateDeferredVariable(""))
	}
	//
	trails, err := DivisionPropertyTrail(block.Table)
	if err != nil {
		return nil, err
	}
	//
	inequalities, err := p.source(trails)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", block.Table.Name(), err)
	}
	//
	reduced, err := ReduceInequalities(inequalities, trails)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", block.Table.Name(), err)
	}
	//
	log.Debugf("table %q: %d trails, %d inequalities reduced to %d",
		block.Table.Name(), len(trails), len(inequalities), len(reduced))
	//
	for _, inequality := range reduced {
		terms := make([]Term, 0, len(vars))
		//
		for i, v := range vars {
			if coeff := inequality.Coefficients[i]; coeff != 0 {
				terms = append(terms, Term{v, coeff})
			}
		}
		//
		p.model.AddConstraint(Constraint{
			Expr: LinearExpr{Terms: terms, Constant: inequality.Constant},
			Cmp:  GreaterEqual,
		})
	}
	//
	outputs := make([]Result, outputWidth)
	for i := range outputs {
		outputs[i] = Result{kind: modelled, dv: vars[uint(len(inputs))+uint(i)]}
	}
	//
	return outputs, nil
}

func (p *Modeller) traverseXor(expr *circuit.Expr) (Result, error) {
	lhs, err := p.Traverse(expr.Left())
	if err != nil {
		return Result{}, err
	}
	//
	rhs, err := p.Traverse(expr.Right())
	if err != nil {
		return Result{}, err
	}
	//
	switch {
	case lhs.Modelled() && rhs.Modelled():
		return Result{kind: modelled, dv: p.model.Xor(lhs.dv, rhs.dv)}, nil
	case lhs.Modelled():
		return lhs, nil
	case rhs.Modelled():
		return rhs, nil
	case lhs.kind == unspecified || rhs.kind == unspecified:
		return Result{kind: unspecified}, nil
	case lhs.kind == rhs.kind:
		return Result{kind: unmodelledFalse}, nil
	default:
		return Result{kind: unmodelledTrue}, nil
	}
}

// traverseAndOr handles both And and Or.  With two modelled operands the two
// gates share one propagation rule; with an unmodelled side the gate
// short-circuits or degrades to the other side.
func (p *Modeller) traverseAndOr(expr *circuit.Expr) (Result, error) {
	kind := expr.Kind()
	//
	lhs, err := p.Traverse(expr.Left())
	if err != nil {
		return Result{}, err
	}
	//
	rhs, err := p.Traverse(expr.Right())
	if err != nil {
		return Result{}, err
	}
	//
	if lhs.Modelled() && rhs.Modelled() {
		return Result{kind: modelled, dv: p.model.And(lhs.dv, rhs.dv)}, nil
	}
	// One side modelled: the unmodelled side decides.
	if lhs.Modelled() || rhs.Modelled() {
		um, mo := lhs, rhs
		//
		if lhs.Modelled() {
			um, mo = rhs, lhs
		}
		//
		switch {
		case um.kind == unspecified:
			return Result{kind: unspecified}, nil
		case kind == circuit.And && um.kind == unmodelledFalse:
			return Result{kind: unmodelledFalse}, nil
		case kind == circuit.And:
			return mo, nil
		case um.kind == unmodelledFalse:
			return mo, nil
		default:
			return Result{kind: unmodelledTrue}, nil
		}
	}
	// Both unmodelled.
	if lhs.kind == unspecified || rhs.kind == unspecified {
		return Result{kind: unspecified}, nil
	}
	//
	if kind == circuit.And {
		if lhs.kind == unmodelledTrue && rhs.kind == unmodelledTrue {
			return Result{kind: unmodelledTrue}, nil
		}
		//
		return Result{kind: unmodelledFalse}, nil
	}
	//
	if lhs.kind == unmodelledFalse && rhs.kind == unmodelledFalse {
		return Result{kind: unmodelledFalse}, nil
	}
	//
	return Result{kind: unmodelledTrue}, nil
}

// MarkOutput records a modelled traversal result as an objective output.
func (p *Modeller) MarkOutput(result Result) {
	if !result.Modelled() || p.outputSeen[result.dv] {
		return
	}
	//
	p.outputSeen[result.dv] = true
	p.outputs = append(p.outputs, result.dv)
}

// OutputVariables resolves the marked outputs onto real variables.
func (p *Modeller) OutputVariables() []Var {
	vars := make([]Var, len(p.outputs))
	//
	for i, dv := range p.outputs {
		vars[i] = p.model.Resolve(dv)
	}
	//
	return vars
}

// Finalize installs the objective: minimise the total division property
// reaching the marked outputs.
func (p *Modeller) Finalize() {
	terms := make([]Term, len(p.outputs))
	//
	for i, dv := range p.outputs {
		terms[i] = Term{dv, 1}
	}
	//
	p.model.SetObjective(LinearExpr{Terms: terms}, Minimize)
}
