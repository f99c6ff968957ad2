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
package circuit

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Output is one named output register of the circuit together with the
// expression defining each of its bits.
type Output struct {
	Name        string
	Size        uint
	Expressions []*Expr
}

// Artifact is the parsed form of a frontend artifact: the cipher circuit as
// inputs, iteration (state) registers and output expressions, all referring
// into one shared expression store.
type Artifact struct {
	Inputs     []*ReadTarget
	Iterations []*ReadTarget
	Outputs    []Output
}

// Parser owns the read targets, lookup tables and the hash-consing store for
// one artifact.  Modellers constructed over the parse result share the
// parser's lifetime.
type Parser struct {
	store   *Store
	targets map[string]*ReadTarget
	tables  map[string]*LookupTable
}

// NewParser creates an empty parser.
func NewParser() *Parser {
	return &Parser{
		store:   NewStore(),
		targets: make(map[string]*ReadTarget),
		tables:  make(map[string]*LookupTable),
	}
}

// Store exposes the expression store, primarily so tests and modellers can
// construct expressions against the same interning pool.
func (p *Parser) Store() *Store {
	return p.store
}

// ReadTarget resolves a register name as it appears in a read expression.
// Names may arrive already prefixed ("input:pt"); bare names are resolved
// against declared inputs first, then iteration registers.
func (p *Parser) ReadTarget(name string) (*ReadTarget, error) {
	if target, ok := p.targets[name]; ok {
		return target, nil
	}

	if target, ok := p.targets["input:"+name]; ok {
		return target, nil
	}

	if target, ok := p.targets["state:"+name]; ok {
		return target, nil
	}
	//
	return nil, fmt.Errorf("unknown read target %q", name)
}

// LookupTable resolves a declared S-box by name.
func (p *Parser) LookupTable(name string) (*LookupTable, error) {
	if table, ok := p.tables[name]; ok {
		return table, nil
	}
	//
	return nil, fmt.Errorf("unknown lookup table %q", name)
}

// ===================================================================
// JSON schema
// ===================================================================

type registerJSON struct {
	Name string `json:"name"`
	Size uint   `json:"size"`
}

type sboxJSON struct {
	Name        string   `json:"name"`
	InputWidth  uint     `json:"input_width"`
	OutputWidth uint     `json:"output_width"`
	Value       []uint64 `json:"value"`
}

type iterationJSON struct {
	Name              string            `json:"name"`
	Size              uint              `json:"size"`
	UpdateExpressions []json.RawMessage `json:"update_expressions"`
}

type outputJSON struct {
	Name        string            `json:"name"`
	Size        uint              `json:"size"`
	Expressions []json.RawMessage `json:"expressions"`
}

type artifactJSON struct {
	Inputs     []registerJSON `json:"inputs"`
	Components struct {
		Sboxes []sboxJSON `json:"sboxes"`
	} `json:"components"`
	Iterations []iterationJSON `json:"iterations"`
	Outputs    []outputJSON    `json:"outputs"`
}

type exprJSON struct {
	Type         string            `json:"type"`
	Value        int               `json:"value"`
	TargetName   string            `json:"target_name"`
	Offset       int               `json:"offset"`
	TableName    string            `json:"table_name"`
	Inputs       []json.RawMessage `json:"inputs"`
	OutputOffset uint              `json:"output_offset"`
	Operator     string            `json:"operator"`
	Operand      json.RawMessage   `json:"operand"`
	Left         json.RawMessage   `json:"left"`
	Right        json.RawMessage   `json:"right"`
}

// Parse reads a frontend artifact.  Registers and tables are declared before
// any expression referring to them, so parsing proceeds in document order:
// inputs, S-boxes, iterations (with their update expressions), outputs.
// Structural shape violations are aggregated so a broken artifact reports
// every problem at once.
func (p *Parser) Parse(data []byte) (*Artifact, error) {
	var (
		root     artifactJSON
		artifact Artifact
	)
	//
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("malformed artifact: %w", err)
	}
	//
	for _, input := range root.Inputs {
		target := NewReadTarget(InputTarget, input.Name, input.Size)
		//
		if err := p.declareTarget("input:"+input.Name, target); err != nil {
			return nil, err
		}
		//
		artifact.Inputs = append(artifact.Inputs, target)
	}
	//
	for _, sbox := range root.Components.Sboxes {
		if _, ok := p.tables[sbox.Name]; ok {
			return nil, fmt.Errorf("duplicate lookup table %q", sbox.Name)
		}
		//
		table, err := NewLookupTable(sbox.Name, sbox.InputWidth, sbox.OutputWidth, sbox.Value)
		if err != nil {
			return nil, err
		}
		//
		p.tables[sbox.Name] = table
	}
	//
	for _, iteration := range root.Iterations {
		target := NewReadTarget(StateTarget, iteration.Name, iteration.Size)
		//
		if err := p.declareTarget("state:"+iteration.Name, target); err != nil {
			return nil, err
		}
		//
		for _, raw := range iteration.UpdateExpressions {
			expr, err := p.ParseExpr(raw)
			if err != nil {
				return nil, fmt.Errorf("iteration %q: %w", iteration.Name, err)
			}
			//
			target.UpdateExprs = append(target.UpdateExprs, expr)
		}
		//
		artifact.Iterations = append(artifact.Iterations, target)
	}
	//
	for _, output := range root.Outputs {
		info := Output{Name: output.Name, Size: output.Size}
		//
		for _, raw := range output.Expressions {
			expr, err := p.ParseExpr(raw)
			if err != nil {
				return nil, fmt.Errorf("output %q: %w", output.Name, err)
			}
			//
			info.Expressions = append(info.Expressions, expr)
		}
		//
		artifact.Outputs = append(artifact.Outputs, info)
	}
	//
	if err := validate(&artifact); err != nil {
		return nil, err
	}
	//
	return &artifact, nil
}

func (p *Parser) declareTarget(key string, target *ReadTarget) error {
	if _, ok := p.targets[key]; ok {
		return fmt.Errorf("duplicate register %q", key)
	}
	//
	p.targets[key] = target
	//
	return nil
}

// ParseExpr reads one expression node from its tagged-union JSON form,
// returning the interned expression.
func (p *Parser) ParseExpr(raw json.RawMessage) (*Expr, error) {
	var node exprJSON
	//
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("malformed expression: %w", err)
	}
	//
	switch node.Type {
	case "constant":
		return p.store.Constant(node.Value != 0), nil
	case "read":
		target, err := p.ReadTarget(node.TargetName)
		if err != nil {
			return nil, err
		}

		if node.Offset < 0 {
			return nil, fmt.Errorf("read of %q has negative offset %d", node.TargetName, node.Offset)
		}
		//
		return p.store.Read(target, uint(node.Offset)), nil
	case "lookup":
		table, err := p.LookupTable(node.TableName)
		if err != nil {
			return nil, err
		}
		//
		inputs := make([]*Expr, len(node.Inputs))
		//
		for i, rawInput := range node.Inputs {
			if inputs[i], err = p.ParseExpr(rawInput); err != nil {
				return nil, err
			}
		}
		//
		if uint(len(inputs)) != table.InputWidth() {
			return nil, fmt.Errorf("lookup of %q has %d inputs, table expects %d",
				node.TableName, len(inputs), table.InputWidth())
		}
		//
		return p.store.Lookup(table, inputs, node.OutputOffset), nil
	case "unary":
		if node.Operator != "not" {
			return nil, fmt.Errorf("unknown unary operator %q", node.Operator)
		}
		//
		operand, err := p.ParseExpr(node.Operand)
		if err != nil {
			return nil, err
		}
		//
		return p.store.Not(operand), nil
	case "binary":
		left, err := p.ParseExpr(node.Left)
		if err != nil {
			return nil, err
		}
		//
		right, err := p.ParseExpr(node.Right)
		if err != nil {
			return nil, err
		}
		//
		switch node.Operator {
		case "and":
			return p.store.Binary(And, left, right), nil
		case "or":
			return p.store.Binary(Or, left, right), nil
		case "xor":
			return p.store.Binary(Xor, left, right), nil
		default:
			return nil, fmt.Errorf("unknown binary operator %q", node.Operator)
		}
	default:
		return nil, fmt.Errorf("unknown expression type %q", node.Type)
	}
}

// validate aggregates shape errors across the whole artifact, so a broken
// frontend run surfaces every violation in one report.
func validate(artifact *Artifact) error {
	var errs *multierror.Error
	//
	for _, iteration := range artifact.Iterations {
		n := uint(len(iteration.UpdateExprs))
		// Iterations may omit update expressions entirely; when present there
		// must be one per bit.
		if n != 0 && n != iteration.Size()*8 {
			errs = multierror.Append(errs, fmt.Errorf(
				"iteration %q declares %d update expressions, expected %d",
				iteration.Name(), n, iteration.Size()*8))
		}
	}
	//
	return errs.ErrorOrNil()
}
