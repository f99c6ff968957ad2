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

// Package degree implements the numeric-mapping bounder: upper bounds on the
// algebraic degree of circuit bits, computed by mapping every monomial onto
// the sum of its variables' degree bounds and refining products of state
// bits through recorded update-expression monomials.
package degree

import (
	"fmt"
	"math"

	"github.com/consensys/go-trail/pkg/anf"
	"github.com/consensys/go-trail/pkg/circuit"
	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// NegativeInfinity is the degree of the zero polynomial.
const NegativeInfinity = math.MinInt

// maxPartitionedSize bounds the monomial sizes worth the partition search;
// beyond it the plain variable-degree sum is used.
const maxPartitionedSize = 6

// Config parameterises a Bounder.
type Config struct {
	// InputDegrees assigns a degree to the bits of named input registers.
	// When nil, the conventional free registers "iv" and "plaintext" have
	// degree one.
	InputDegrees map[string]int
	// DefaultInputDegree applies to input registers not named above.
	DefaultInputDegree int
	// ExpandTimes is how often state reads are substituted through their
	// update expressions before bounding, at least one.
	ExpandTimes int
}

// Bounder computes degree upper bounds.  It is stateful: product monomials
// observed in update expressions are recorded as refinement rules
// (a product of state bits is at most the degree of the bit it updates), and
// every resolved degree is memoised.
type Bounder struct {
	conv               *circuit.ANFConverter
	inputDegrees       map[string]int
	defaultInputDegree int
	expandTimes        int
	// readDegrees memoises the degree of every state bit.
	readDegrees map[circuit.ReadRef]int
	// betterBound maps a product monomial onto the state bit whose update
	// expression contains it; bounding the bit bounds the product.
	betterBound *hash.Map[circuit.Monomial, circuit.ReadRef]
	// suppressed guards against circular refinement while a bit's own
	// degree is being resolved.
	suppressed map[circuit.ReadRef]bool
	// monomialDegrees memoises the unrefined monomial bounds.
	monomialDegrees *hash.Map[circuit.Monomial, int]
	// polyDegrees memoises whole polynomials.
	polyDegrees *hash.Map[circuit.Polynomial, int]
}

// NewBounder creates a bounder for the given configuration.
func NewBounder(cfg Config) *Bounder {
	inputDegrees := cfg.InputDegrees
	//
	if inputDegrees == nil {
		inputDegrees = map[string]int{"iv": 1, "plaintext": 1}
	}
	//
	expandTimes := cfg.ExpandTimes
	if expandTimes < 1 {
		expandTimes = 1
	}
	//
	return &Bounder{
		conv:               circuit.NewANFConverter(),
		inputDegrees:       inputDegrees,
		defaultInputDegree: cfg.DefaultInputDegree,
		expandTimes:        expandTimes,
		readDegrees:        make(map[circuit.ReadRef]int),
		betterBound:        hash.NewMap[circuit.Monomial, circuit.ReadRef](64),
		suppressed:         make(map[circuit.ReadRef]bool),
		monomialDegrees:    hash.NewMap[circuit.Monomial, int](64),
		polyDegrees:        hash.NewMap[circuit.Polynomial, int](64),
	}
}

// Convert exposes the bounder's ANF converter, so callers bound the same
// polynomials the bounder memoises.
func (p *Bounder) Convert(expr *circuit.Expr) (circuit.Polynomial, error) {
	return p.conv.Convert(expr, 0)
}

// Bound returns an upper bound on the algebraic degree of the polynomial:
// the maximum over its monomials, NegativeInfinity for the zero polynomial.
func (p *Bounder) Bound(poly circuit.Polynomial) (int, error) {
	if cached, ok := p.polyDegrees.Get(poly); ok {
		return cached, nil
	}
	//
	result := NegativeInfinity
	//
	if poly.Constant() {
		result = 0
	}
	//
	var firstErr error
	//
	poly.Monomials(func(mono circuit.Monomial) bool {
		deg, err := p.monomialDegree(mono)
		//
		if err != nil {
			firstErr = err
			return false
		}
		//
		if deg > result {
			result = deg
		}
		//
		return true
	})
	//
	if firstErr != nil {
		return 0, firstErr
	}
	//
	p.polyDegrees.Insert(poly, result)
	//
	return result, nil
}

// monomialDegree bounds one monomial.  Small products are additionally run
// through the partition search: any grouping of the variables whose parts
// all carry a recorded refinement (or are single variables) yields a
// candidate bound, and the minimum wins.  Partition results depend on the
// suppression context and are deliberately not memoised.
func (p *Bounder) monomialDegree(mono circuit.Monomial) (int, error) {
	if cached, ok := p.monomialDegrees.Get(mono); ok {
		return cached, nil
	}
	//
	if size := mono.Size(); size > 1 && size <= maxPartitionedSize {
		return p.partitionedDegree(mono)
	}
	//
	result := 0
	//
	for _, ref := range mono.Vars() {
		deg, err := p.variableDegree(ref)
		if err != nil {
			return 0, err
		}
		//
		result += deg
	}
	//
	p.monomialDegrees.Insert(mono, result)
	//
	return result, nil
}

func (p *Bounder) partitionedDegree(mono circuit.Monomial) (int, error) {
	var (
		result   = math.MaxInt
		firstErr error
	)
	//
	partitions(mono.Vars(), func(parts []circuit.Monomial) bool {
		deg := 0
		//
		for _, part := range parts {
			if part.Size() == 1 {
				varDeg, err := p.variableDegree(part.Vars()[0])
				//
				if err != nil {
					firstErr = err
					return false
				}
				//
				deg += varDeg
				//
				continue
			}
			//
			ref, ok := p.betterBound.Get(part)
			//
			if !ok || p.suppressed[ref] {
				// No refinement covers this part; the partition is void.
				return true
			}
			//
			varDeg, err := p.variableDegree(ref)
			if err != nil {
				firstErr = err
				return false
			}
			//
			deg += varDeg
		}
		//
		if deg < result {
			result = deg
		}
		//
		return true
	})
	//
	if firstErr != nil {
		return 0, firstErr
	}
	//
	return result, nil
}

// variableDegree bounds one register bit.  Input bits have configured
// degrees; a state bit is bounded by expanding its update expression, with
// the bit suppressed from refinements while its own bound is in flight.
func (p *Bounder) variableDegree(ref circuit.ReadRef) (int, error) {
	inserted := !p.suppressed[ref]
	p.suppressed[ref] = true
	//
	defer func() {
		if inserted {
			delete(p.suppressed, ref)
		}
	}()
	//
	if ref.Target.Kind() == circuit.InputTarget {
		if deg, ok := p.inputDegrees[ref.Target.Name()]; ok {
			return deg, nil
		}
		//
		return p.defaultInputDegree, nil
	}
	//
	if cached, ok := p.readDegrees[ref]; ok {
		return cached, nil
	}
	//
	poly, err := p.readState(ref)
	if err != nil {
		return 0, err
	}
	//
	for i := 0; i < p.expandTimes; i++ {
		if poly, err = p.substituteOnce(poly); err != nil {
			return 0, err
		}
	}
	//
	result, err := p.Bound(poly)
	if err != nil {
		return 0, err
	}
	//
	p.readDegrees[ref] = result
	//
	return result, nil
}

// readState converts the update expression of a state bit, recording every
// product monomial it contains as a refinement rule for that bit.
func (p *Bounder) readState(ref circuit.ReadRef) (circuit.Polynomial, error) {
	if ref.Offset >= uint(len(ref.Target.UpdateExprs)) {
		return circuit.Polynomial{}, fmt.Errorf(
			"state %q has no update expression for bit %d", ref.Target.Name(), ref.Offset)
	}
	//
	poly, err := p.conv.Convert(ref.Target.UpdateExprs[ref.Offset], 0)
	if err != nil {
		return circuit.Polynomial{}, err
	}
	//
	poly.Monomials(func(mono circuit.Monomial) bool {
		if mono.Size() > 1 {
			p.betterBound.Insert(mono, ref)
		}
		//
		return true
	})
	//
	return poly, nil
}

// substituteOnce rewrites every variable of the polynomial: single-variable
// monomials and input bits stay put, while state bits inside products expand
// through their update expressions.
func (p *Bounder) substituteOnce(poly circuit.Polynomial) (circuit.Polynomial, error) {
	var firstErr error
	//
	nested := anf.Translate(poly,
		func(ref circuit.ReadRef, mono circuit.Monomial) circuit.Polynomial {
			if mono.Size() < 2 || ref.Target.Kind() == circuit.InputTarget {
				return anf.FromVariable(ref)
			}
			//
			expanded, err := p.readState(ref)
			//
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				//
				return anf.FromVariable(ref)
			}
			//
			return expanded
		})
	//
	if firstErr != nil {
		return circuit.Polynomial{}, firstErr
	}
	//
	return anf.Expand(nested), nil
}
