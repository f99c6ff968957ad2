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

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-trail/pkg/circuit"
	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// Mode selects which propagation the modeller encodes.
type Mode uint8

const (
	// Differential mode propagates XOR differences through the DDT.
	Differential Mode = iota
	// Linear mode propagates linear masks through the LAT.
	Linear
)

func (p Mode) String() string {
	if p == Linear {
		return "linear"
	}
	//
	return "differential"
}

// Modeller walks the expression DAG and encodes differential or linear trail
// propagation as CNF.  One CNF variable tracks the difference (or mask) of
// every distinct circuit bit; each S-box instantiation is encoded once
// through its table template, with per-cell weight variables counting the
// trail's negated log-probability (or log-correlation).
type Modeller struct {
	model *Model
	mode  Mode
	// falseVar is pinned to zero and models every inactive bit.
	falseVar Variable
	// freeInputs names the input registers whose bits carry free
	// differences; every other input propagates zero.
	freeInputs map[string]bool
	// weightVars accumulates the weight variables of every block, in
	// emission order.
	weightVars []Variable
	// inputVars are the free difference variables, in creation order.
	inputVars []Variable
	// andTable and orTable encode the binary gates as 2-to-1 S-boxes.
	andTable *circuit.LookupTable
	orTable  *circuit.LookupTable
	// templates caches one template per distinct lookup table.
	templates map[*circuit.LookupTable]*TableTemplate
	// exprs memoises the modelled variable per DAG node.
	exprs map[*circuit.Expr]Variable
	// blocks memoises the output vector per S-box instantiation.
	blocks *hash.Map[circuit.SBoxBlock, []Variable]
}

// NewModeller creates a modeller for the given mode.  Bits of the named free
// input registers become decision variables; when none are given, the
// conventional "plaintext" register is free.
func NewModeller(mode Mode, freeInputs []string) *Modeller {
	if len(freeInputs) == 0 {
		freeInputs = []string{"plaintext"}
	}
	//
	free := make(map[string]bool, len(freeInputs))
	for _, name := range freeInputs {
		free[name] = true
	}
	//
	model := NewModel()
	falseVar := model.CreateVariable("FALSE")
	model.AddClause(falseVar.Neg())
	//
	andTable, err := circuit.NewLookupTable("AND", 2, 1, []uint64{0, 0, 0, 1})
	if err != nil {
		panic(err)
	}
	//
	orTable, err := circuit.NewLookupTable("OR", 2, 1, []uint64{0, 1, 1, 1})
	if err != nil {
		panic(err)
	}
	//
	return &Modeller{
		model:      model,
		mode:       mode,
		falseVar:   falseVar,
		freeInputs: free,
		andTable:   andTable,
		orTable:    orTable,
		templates:  make(map[*circuit.LookupTable]*TableTemplate),
		exprs:      make(map[*circuit.Expr]Variable),
		blocks:     hash.NewMap[circuit.SBoxBlock, []Variable](64),
	}
}

// Model exposes the CNF under construction.
func (p *Modeller) Model() *Model {
	return p.model
}

// WeightVariables returns every weight variable emitted so far.
func (p *Modeller) WeightVariables() []Variable {
	return p.weightVars
}

// ModelledExprs returns the per-node variable assignment, for state dumps.
func (p *Modeller) ModelledExprs() map[*circuit.Expr]Variable {
	return p.exprs
}

// Traverse returns the CNF variable modelling the difference (or mask) of
// the given circuit bit, encoding it on first visit.
func (p *Modeller) Traverse(expr *circuit.Expr) (Variable, error) {
	if v, ok := p.exprs[expr]; ok {
		return v, nil
	}
	//
	v, err := p.traverse(expr)
	if err != nil {
		return 0, err
	}
	//
	p.exprs[expr] = v
	//
	return v, nil
}

func (p *Modeller) traverse(expr *circuit.Expr) (Variable, error) {
	switch expr.Kind() {
	case circuit.Constant:
		// Public constants carry no difference and no mask.
		return p.falseVar, nil
	case circuit.Read:
		target := expr.Target()
		//
		if target.Kind() == circuit.InputTarget {
			if !p.freeInputs[target.Name()] {
				return p.falseVar, nil
			}
			//
			v := p.model.CreateVariable(fmt.Sprintf("iv_%s_%d", target.Name(), expr.Offset()))
			p.inputVars = append(p.inputVars, v)
			//
			return v, nil
		}
		//
		if expr.Offset() >= uint(len(target.UpdateExprs)) {
			return 0, fmt.Errorf("state %q has no update expression for bit %d",
				target.Name(), expr.Offset())
		}
		//
		return p.Traverse(target.UpdateExprs[expr.Offset()])
	case circuit.Lookup:
		block := circuit.SBoxBlock{Inputs: expr.Inputs(), Table: expr.Table()}
		return p.lookupBlock(block, expr.OutputOffset())
	case circuit.Not:
		// Complementing a bit changes neither its difference nor its mask.
		return p.Traverse(expr.Operand())
	case circuit.And:
		block := circuit.SBoxBlock{
			Inputs: []*circuit.Expr{expr.Left(), expr.Right()},
			Table:  p.andTable,
		}
		//
		return p.lookupBlock(block, 0)
	case circuit.Or:
		block := circuit.SBoxBlock{
			Inputs: []*circuit.Expr{expr.Left(), expr.Right()},
			Table:  p.orTable,
		}
		//
		return p.lookupBlock(block, 0)
	default:
		return p.traverseXor(expr)
	}
}

// traverseXor handles the one gate where the two modes genuinely differ:
// differences add over XOR, whereas a linear mask must agree on both
// operands.
func (p *Modeller) traverseXor(expr *circuit.Expr) (Variable, error) {
	left, err := p.Traverse(expr.Left())
	if err != nil {
		return 0, err
	}
	//
	right, err := p.Traverse(expr.Right())
	if err != nil {
		return 0, err
	}
	// A constant operand short-circuits in both modes.
	if left == p.falseVar {
		return right, nil
	}

	if right == p.falseVar {
		return left, nil
	}
	//
	result := p.model.CreateVariable("xor")
	//
	if p.mode == Differential {
		p.model.AddXorClause([]Variable{left, right}, result)
	} else {
		p.model.AddEquivalentClause([]Variable{left, right, result})
	}
	//
	return result, nil
}

// lookupBlock returns the modelled output bit of an S-box instantiation,
// encoding the whole block on first sight so all of its output offsets share
// one output vector.
func (p *Modeller) lookupBlock(block circuit.SBoxBlock, offset uint) (Variable, error) {
	outputs, ok := p.blocks.Get(block)
	//
	if !ok {
		inputs := make([]Variable, len(block.Inputs))
		//
		for i, input := range block.Inputs {
			v, err := p.Traverse(input)
			if err != nil {
				return 0, err
			}
			//
			inputs[i] = v
		}
		//
		template, err := p.tableTemplate(block.Table)
		if err != nil {
			return 0, err
		}
		//
		outputs = p.model.CreateVariables(block.Table.OutputWidth(),
			fmt.Sprintf("%s_o", block.Table.Name()))
		//
		weights, err := p.model.AddWeightTableClauses(template, inputs, outputs)
		if err != nil {
			return 0, err
		}
		//
		p.weightVars = append(p.weightVars, weights...)
		p.blocks.Insert(block, outputs)
	}
	// Preprocessing runs on 8-bit units, so reads past a narrower S-box are
	// legal and carry no difference.
	if offset >= uint(len(outputs)) {
		return p.falseVar, nil
	}
	//
	return outputs[offset], nil
}

// tableTemplate builds (or recalls) the CNF template of a lookup table under
// the current mode.
func (p *Modeller) tableTemplate(table *circuit.LookupTable) (*TableTemplate, error) {
	if template, ok := p.templates[table]; ok {
		return template, nil
	}
	//
	var (
		raw      RawTable
		weightFn WeightFunc
	)
	//
	if p.mode == Differential {
		raw = RawTable(table.DDT())
		weightFn = DifferentialWeight(table.InputWidth())
	} else {
		lat := table.LAT()
		raw = make(RawTable, len(lat))
		//
		for a, row := range lat {
			raw[a] = make([]uint64, len(row))
			//
			for b, value := range row {
				if value < 0 {
					value = -value
				}
				//
				raw[a][b] = uint64(value)
			}
		}
		//
		weightFn = LinearWeight(table.InputWidth())
	}
	//
	log.Debugf("building %s template for table %q", p.mode, table.Name())
	//
	template, err := BuildTableTemplate(raw, weightFn)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", table.Name(), err)
	}
	//
	p.templates[table] = template
	//
	return template, nil
}

// RequireActiveInput adds the clause forcing a non-trivial trail: at least
// one free input bit is active.
func (p *Modeller) RequireActiveInput() {
	if len(p.inputVars) == 0 {
		return
	}
	//
	clause := make(Clause, len(p.inputVars))
	for i, v := range p.inputVars {
		clause[i] = v.Pos()
	}
	//
	p.model.AddClause(clause...)
}

// LimitWeight bounds the total trail weight through the sequential counter.
func (p *Modeller) LimitWeight(k int) error {
	if len(p.weightVars) < 2 {
		return nil
	}
	//
	return p.model.AddSequentialCounterLessEqual(p.weightVars, k)
}
