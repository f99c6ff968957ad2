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
package anf

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// testVar is a plain numbered variable for exercising the algebra.
type testVar uint

func (p testVar) Equals(other testVar) bool {
	return p == other
}

func (p testVar) Hash() uint64 {
	return uint64(p) * 0x9e3779b97f4a7c15
}

func (p testVar) String() string {
	return fmt.Sprintf("v%d", uint(p))
}

// polyOf densely decodes a polynomial over four variables: bit i of mask is
// the coefficient of the monomial whose variable set is the bit pattern i.
func polyOf(mask uint16, constant bool) Polynomial[testVar] {
	p := NewPolynomial[testVar](constant)
	//
	for i := uint(0); i < 16; i++ {
		if mask&(1<<i) == 0 {
			continue
		}

		var vars []testVar
		//
		for j := uint(0); j < 4; j++ {
			if i&(1<<j) != 0 {
				vars = append(vars, testVar(j))
			}
		}
		//
		p.AddMonomial(NewMonomial(vars...))
	}
	//
	return p
}

// evaluate a polynomial at the assignment whose bit j gives variable j.
func evaluate(p Polynomial[testVar], assignment uint) bool {
	result := p.Constant()
	//
	p.Monomials(func(mono Monomial[testVar]) bool {
		value := true
		//
		for _, v := range mono.Vars() {
			value = value && assignment&(1<<uint(v)) != 0
		}
		//
		result = result != value
		//
		return true
	})
	//
	return result
}

func genPoly() gopter.Gen {
	return gopter.CombineGens(gen.UInt16(), gen.Bool()).Map(
		func(values []interface{}) Polynomial[testVar] {
			return polyOf(values[0].(uint16), values[1].(bool))
		})
}

func Test_Anf_Laws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 256
	properties := gopter.NewProperties(parameters)
	//
	zero := NewPolynomial[testVar](false)
	one := NewPolynomial[testVar](true)
	//
	properties.Property("p+p = 0", prop.ForAll(
		func(p Polynomial[testVar]) bool {
			return p.Add(p).IsZero()
		}, genPoly()))
	//
	properties.Property("p*0 = 0", prop.ForAll(
		func(p Polynomial[testVar]) bool {
			return p.Mul(zero).IsZero()
		}, genPoly()))
	//
	properties.Property("p*1 = p", prop.ForAll(
		func(p Polynomial[testVar]) bool {
			return p.Mul(one).Equals(p)
		}, genPoly()))
	//
	properties.Property("!p = p+1", prop.ForAll(
		func(p Polynomial[testVar]) bool {
			return p.Not().Equals(p.Add(one))
		}, genPoly()))
	//
	properties.Property("(p+q)*r = p*r + q*r", prop.ForAll(
		func(p, q, r Polynomial[testVar]) bool {
			return p.Add(q).Mul(r).Equals(p.Mul(r).Add(q.Mul(r)))
		}, genPoly(), genPoly(), genPoly()))
	//
	properties.Property("p+q = q+p and p*q = q*p", prop.ForAll(
		func(p, q Polynomial[testVar]) bool {
			return p.Add(q).Equals(q.Add(p)) && p.Mul(q).Equals(q.Mul(p))
		}, genPoly(), genPoly()))
	//
	properties.TestingRun(t)
}

func Test_Anf_Semantics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 128
	properties := gopter.NewProperties(parameters)
	//
	properties.Property("add is xor, mul is and", prop.ForAll(
		func(p, q Polynomial[testVar]) bool {
			sum, product := p.Add(q), p.Mul(q)
			//
			for x := uint(0); x < 16; x++ {
				if evaluate(sum, x) != (evaluate(p, x) != evaluate(q, x)) {
					return false
				}

				if evaluate(product, x) != (evaluate(p, x) && evaluate(q, x)) {
					return false
				}
			}
			//
			return true
		}, genPoly(), genPoly()))
	//
	properties.Property("(!p)*(!q)+1 = p or q", prop.ForAll(
		func(p, q Polynomial[testVar]) bool {
			or := p.Not().Mul(q.Not()).Not()
			//
			for x := uint(0); x < 16; x++ {
				if evaluate(or, x) != (evaluate(p, x) || evaluate(q, x)) {
					return false
				}
			}
			//
			return true
		}, genPoly(), genPoly()))
	//
	properties.TestingRun(t)
}

func Test_Anf_AddMonomialToggles(t *testing.T) {
	p := NewPolynomial[testVar](false)
	mono := NewMonomial(testVar(0), testVar(1))
	//
	p.AddMonomial(mono)
	require.Equal(t, uint(1), p.Len())
	// Adding again cancels in GF(2)
	p.AddMonomial(NewMonomial(testVar(1), testVar(0)))
	require.True(t, p.IsZero())
}

func Test_Anf_Translate(t *testing.T) {
	// p = v0*v1 + v2
	p := NewPolynomial[testVar](false)
	p.AddMonomial(NewMonomial(testVar(0), testVar(1)))
	p.AddMonomial(NewMonomial(testVar(2)))
	// Shift every variable up by one, recording the monomial context.
	degrees := make(map[testVar]uint)
	//
	q := Translate(p, func(v testVar, mono Monomial[testVar]) testVar {
		degrees[v] = mono.Size()
		return v + 1
	})
	//
	expected := NewPolynomial[testVar](false)
	expected.AddMonomial(NewMonomial(testVar(1), testVar(2)))
	expected.AddMonomial(NewMonomial(testVar(3)))
	//
	require.True(t, q.Equals(expected))
	require.Equal(t, uint(2), degrees[testVar(0)])
	require.Equal(t, uint(1), degrees[testVar(2)])
}

func Test_Anf_Expand(t *testing.T) {
	// inner polynomials a = v0 + v1, b = v2 + 1
	a := NewPolynomial[testVar](false)
	a.AddMonomial(NewMonomial(testVar(0)))
	a.AddMonomial(NewMonomial(testVar(1)))
	//
	b := NewPolynomial[testVar](true)
	b.AddMonomial(NewMonomial(testVar(2)))
	// outer = a*b (as a single nested monomial)
	outer := FromMonomial(NewMonomial(a, b))
	flat := Expand(outer)
	// (v0+v1)*(v2+1) = v0*v2 + v1*v2 + v0 + v1
	for x := uint(0); x < 16; x++ {
		require.Equal(t, evaluate(a, x) && evaluate(b, x), evaluate(flat, x))
	}
}
