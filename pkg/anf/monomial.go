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
	"strings"

	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// Monomial is a product of distinct variables over GF(2).  Since x*x = x,
// exponents are irrelevant and a monomial is simply a set of variables.  The
// empty monomial denotes the constant one.  Monomials are small (bounded by
// the circuit fan-in), so membership is checked linearly against the backing
// slice rather than paying for a nested set structure.
type Monomial[T hash.Hasher[T]] struct {
	vars []T
}

// NewMonomial constructs a monomial over the given variables, deduplicating
// them.
func NewMonomial[T hash.Hasher[T]](vars ...T) Monomial[T] {
	var mono Monomial[T]
	//
	for _, v := range vars {
		mono = mono.Insert(v)
	}
	//
	return mono
}

// Size returns the number of distinct variables (i.e. the naive degree).
func (p Monomial[T]) Size() uint {
	return uint(len(p.vars))
}

// Vars returns the underlying variables.  The slice must not be mutated.
func (p Monomial[T]) Vars() []T {
	return p.vars
}

// Contains checks whether a given variable occurs in this monomial.
func (p Monomial[T]) Contains(v T) bool {
	for _, other := range p.vars {
		if v.Equals(other) {
			return true
		}
	}
	//
	return false
}

// Insert returns this monomial extended with the given variable.  The
// receiver is unchanged.
func (p Monomial[T]) Insert(v T) Monomial[T] {
	if p.Contains(v) {
		return p
	}
	// NOTE: full copy, so sibling monomials never share backing storage.
	vars := make([]T, len(p.vars), len(p.vars)+1)
	copy(vars, p.vars)
	//
	return Monomial[T]{append(vars, v)}
}

// Mul multiplies two monomials, which in GF(2) is just the union of their
// variables.
func (p Monomial[T]) Mul(other Monomial[T]) Monomial[T] {
	result := p
	//
	for _, v := range other.vars {
		result = result.Insert(v)
	}
	//
	return result
}

// Equals implements set equality between monomials.
func (p Monomial[T]) Equals(other Monomial[T]) bool {
	if len(p.vars) != len(other.vars) {
		return false
	}
	//
	for _, v := range p.vars {
		if !other.Contains(v) {
			return false
		}
	}
	//
	return true
}

// Hash returns an order-independent hashcode, as required for set equality.
func (p Monomial[T]) Hash() uint64 {
	var code uint64
	// XOR is commutative, hence insensitive to variable order.
	for _, v := range p.vars {
		code ^= v.Hash()
	}
	//
	return code
}

func (p Monomial[T]) String() string {
	var builder strings.Builder
	//
	for i, v := range p.vars {
		if i != 0 {
			builder.WriteString("*")
		}

		builder.WriteString(stringOf(v))
	}
	//
	return builder.String()
}

// TranslateMonomial maps every variable of a monomial through the given
// function, which also receives the containing monomial so it can distinguish
// degree-1 from higher-degree contexts.
func TranslateMonomial[T hash.Hasher[T], U hash.Hasher[U]](mono Monomial[T],
	fn func(T, Monomial[T]) U) Monomial[U] {
	//
	var result Monomial[U]
	//
	for _, v := range mono.vars {
		result = result.Insert(fn(v, mono))
	}
	//
	return result
}
