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

// Package anf implements the Algebraic Normal Form of boolean functions:
// polynomials over GF(2) whose monomials are products of variables of an
// arbitrary (hashable) type.  Addition is symmetric difference of monomial
// sets, multiplication distributes via the Cartesian product, and negation
// toggles the constant term.
package anf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// Polynomial is a sum (XOR) of monomials plus a boolean constant.  The zero
// value is NOT usable; construct polynomials through the constructors below.
// All operations are value-oriented: they return fresh polynomials and never
// mutate their operands, except for AddMonomial which is the building block
// the operations share.
type Polynomial[T hash.Hasher[T]] struct {
	monomials *hash.Set[Monomial[T]]
	constant  bool
}

// NewPolynomial constructs a polynomial holding just the given constant.
func NewPolynomial[T hash.Hasher[T]](constant bool) Polynomial[T] {
	return Polynomial[T]{hash.NewSet[Monomial[T]](4), constant}
}

// FromConstant is an alias of NewPolynomial matching its sibling
// constructors.
func FromConstant[T hash.Hasher[T]](constant bool) Polynomial[T] {
	return NewPolynomial[T](constant)
}

// FromMonomial constructs the polynomial consisting of a single monomial.
func FromMonomial[T hash.Hasher[T]](mono Monomial[T]) Polynomial[T] {
	p := NewPolynomial[T](false)
	p.monomials.Insert(mono)
	//
	return p
}

// FromVariable constructs the polynomial consisting of a single degree-one
// monomial.
func FromVariable[T hash.Hasher[T]](v T) Polynomial[T] {
	return FromMonomial(NewMonomial(v))
}

// Constant returns the constant term of this polynomial.
func (p Polynomial[T]) Constant() bool {
	return p.constant
}

// Len returns the number of monomials in this polynomial.
func (p Polynomial[T]) Len() uint {
	return p.monomials.Size()
}

// IsZero checks whether this is the zero polynomial (no monomials, constant
// false).
func (p Polynomial[T]) IsZero() bool {
	return !p.constant && p.monomials.Size() == 0
}

// Monomials visits every monomial until the callback returns false.
func (p Polynomial[T]) Monomials(fn func(Monomial[T]) bool) {
	p.monomials.Iter(fn)
}

// AddMonomial toggles membership of the given monomial, i.e. adds it in
// GF(2).  This mutates the receiver and is intended for polynomial
// construction sites only.
func (p Polynomial[T]) AddMonomial(mono Monomial[T]) {
	p.monomials.Toggle(mono)
}

// Clone creates a disjoint copy of this polynomial.
func (p Polynomial[T]) Clone() Polynomial[T] {
	return Polynomial[T]{p.monomials.Clone(), p.constant}
}

// Add computes the GF(2) sum of two polynomials: the symmetric difference of
// their monomial sets, with constants XORed.
func (p Polynomial[T]) Add(other Polynomial[T]) Polynomial[T] {
	result := p.Clone()
	result.constant = p.constant != other.constant
	//
	other.Monomials(func(mono Monomial[T]) bool {
		result.AddMonomial(mono)
		return true
	})
	//
	return result
}

// Mul computes the GF(2) product of two polynomials by accumulating the
// pairwise monomial products, with the constant terms distributing over the
// opposite operand.
func (p Polynomial[T]) Mul(other Polynomial[T]) Polynomial[T] {
	result := NewPolynomial[T](false)
	//
	if p.constant {
		result.constant = other.constant
		//
		other.Monomials(func(mono Monomial[T]) bool {
			result.AddMonomial(mono)
			return true
		})
	}
	//
	if other.constant {
		p.Monomials(func(mono Monomial[T]) bool {
			result.AddMonomial(mono)
			return true
		})
	}
	// Cartesian product of the monomial sets.
	p.Monomials(func(lhs Monomial[T]) bool {
		other.Monomials(func(rhs Monomial[T]) bool {
			result.AddMonomial(lhs.Mul(rhs))
			return true
		})
		//
		return true
	})
	//
	return result
}

// Not complements this polynomial, i.e. adds the constant one.
func (p Polynomial[T]) Not() Polynomial[T] {
	result := p.Clone()
	result.constant = !result.constant
	//
	return result
}

// Equals implements structural equality of polynomials: identical constants
// and identical monomial sets.
func (p Polynomial[T]) Equals(other Polynomial[T]) bool {
	if p.constant != other.constant || p.monomials.Size() != other.monomials.Size() {
		return false
	}
	//
	equal := true
	//
	p.Monomials(func(mono Monomial[T]) bool {
		equal = other.monomials.Contains(mono)
		return equal
	})
	//
	return equal
}

// Hash returns an order-independent hashcode consistent with Equals, allowing
// polynomials themselves to act as set elements or map keys (e.g. in the
// degree bounder's memo table, or as variables of a nested polynomial).
func (p Polynomial[T]) Hash() uint64 {
	var code uint64
	//
	p.Monomials(func(mono Monomial[T]) bool {
		code ^= mono.Hash()
		return true
	})
	//
	if p.constant {
		code = hash.Mix(code, 1)
	}
	//
	return code
}

func (p Polynomial[T]) String() string {
	var parts []string
	//
	if p.constant {
		parts = append(parts, "1")
	}
	//
	p.Monomials(func(mono Monomial[T]) bool {
		parts = append(parts, mono.String())
		return true
	})
	//
	if len(parts) == 0 {
		return "0"
	}
	// Sort for deterministic output, since set iteration order is arbitrary.
	sort.Strings(parts[boolToInt(p.constant):])
	//
	return strings.Join(parts, " + ")
}

// Translate maps every variable of this polynomial through the given
// function.  The function receives the containing monomial alongside the
// variable, so callers can substitute differently in degree-1 and
// higher-degree contexts.
func Translate[T hash.Hasher[T], U hash.Hasher[U]](p Polynomial[T],
	fn func(T, Monomial[T]) U) Polynomial[U] {
	//
	result := NewPolynomial[U](p.constant)
	//
	p.Monomials(func(mono Monomial[T]) bool {
		result.monomials.Insert(TranslateMonomial(mono, fn))
		return true
	})
	//
	return result
}

// Expand flattens a polynomial whose variables are themselves polynomials by
// multiplying out every monomial.
func Expand[T hash.Hasher[T]](p Polynomial[Polynomial[T]]) Polynomial[T] {
	result := NewPolynomial[T](p.constant)
	//
	p.Monomials(func(mono Monomial[Polynomial[T]]) bool {
		expanded := NewPolynomial[T](true)
		//
		for _, inner := range mono.Vars() {
			expanded = expanded.Mul(inner)
		}
		//
		result = result.Add(expanded)
		//
		return true
	})
	//
	return result
}

func stringOf(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	//
	return fmt.Sprintf("%v", v)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	//
	return 0
}
