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
	"fmt"

	"github.com/consensys/go-trail/pkg/anf"
)

// Polynomial is the ANF of a circuit bit: a GF(2) polynomial whose variables
// are register bits.
type Polynomial = anf.Polynomial[ReadRef]

// Monomial is a product of register bits.
type Monomial = anf.Monomial[ReadRef]

// ANFConverter translates expressions into their algebraic normal form,
// memoised on expression identity.  Note the memo is insensitive to the read
// depth, so a converter must not be shared between conversions at different
// depths.
type ANFConverter struct {
	cache map[*Expr]Polynomial
}

// NewANFConverter creates a converter with an empty memo.
func NewANFConverter() *ANFConverter {
	return &ANFConverter{cache: make(map[*Expr]Polynomial)}
}

// Convert returns the ANF of the given expression.  State reads are rewritten
// through their update expressions while readDepth remains positive;
// exhausted reads stay as free variables.  Read-to-read forwarding chains are
// always followed, since they introduce no new algebra.
func (p *ANFConverter) Convert(expr *Expr, readDepth int) (Polynomial, error) {
	if cached, ok := p.cache[expr]; ok {
		return cached, nil
	}
	//
	result, err := p.convert(expr, readDepth)
	if err != nil {
		return Polynomial{}, err
	}
	//
	p.cache[expr] = result
	//
	return result, nil
}

func (p *ANFConverter) convert(expr *Expr, readDepth int) (Polynomial, error) {
	switch expr.Kind() {
	case Constant:
		return anf.FromConstant[ReadRef](expr.Value()), nil
	case Read:
		return p.convertRead(expr, readDepth)
	case Lookup:
		return p.convertLookup(expr, readDepth)
	case Not:
		operand, err := p.Convert(expr.Operand(), readDepth)
		if err != nil {
			return Polynomial{}, err
		}
		//
		return operand.Not(), nil
	default:
		left, err := p.Convert(expr.Left(), readDepth)
		if err != nil {
			return Polynomial{}, err
		}
		//
		right, err := p.Convert(expr.Right(), readDepth)
		if err != nil {
			return Polynomial{}, err
		}
		//
		switch expr.Kind() {
		case And:
			return left.Mul(right), nil
		case Xor:
			return left.Add(right), nil
		default:
			// a | b = !(!a * !b)
			return left.Not().Mul(right.Not()).Not(), nil
		}
	}
}

func (p *ANFConverter) convertRead(expr *Expr, readDepth int) (Polynomial, error) {
	for {
		target, offset := expr.Target(), expr.Offset()
		//
		if target.Kind() != StateTarget {
			return anf.FromVariable(expr.Ref()), nil
		}

		if offset >= uint(len(target.UpdateExprs)) {
			// With no depth left the bit stays free and is never expanded.
			if readDepth <= 0 {
				return anf.FromVariable(expr.Ref()), nil
			}
			//
			return Polynomial{}, fmt.Errorf(
				"state %q has no update expression for bit %d", target.Name(), offset)
		}
		//
		expanded := target.UpdateExprs[offset]
		//
		if expanded.Kind() != Read {
			if readDepth > 0 {
				return p.Convert(expanded, readDepth-1)
			}
			//
			return anf.FromVariable(expr.Ref()), nil
		}
		// Plain forwarding read, follow it without spending depth.
		expr = expanded
	}
}

func (p *ANFConverter) convertLookup(expr *Expr, readDepth int) (Polynomial, error) {
	var (
		table  = expr.Table()
		inputs = expr.Inputs()
		offset = expr.OutputOffset()
		result = anf.FromConstant[ReadRef](false)
	)
	// Reads past the table's output width are constant false; the frontend
	// emits 8-bit-aligned reads over narrower S-boxes.
	if offset >= table.OutputWidth() {
		return result, nil
	}
	//
	coeffs := table.ANFBits(offset)
	//
	for i, ok := coeffs.NextSet(0); ok; i, ok = coeffs.NextSet(i + 1) {
		term := anf.FromConstant[ReadRef](true)
		//
		for j := range inputs {
			if i&(1<<uint(j)) != 0 {
				input, err := p.Convert(inputs[j], readDepth)
				if err != nil {
					return Polynomial{}, err
				}
				//
				term = term.Mul(input)
			}
		}
		//
		result = result.Add(term)
	}
	//
	return result, nil
}
