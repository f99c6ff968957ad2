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
	"slices"

	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// Store is the hash-consing pool of expressions.  Every construction funnels
// through intern, so structurally equal subtrees collapse onto a single node
// and two parses of identical artifacts allocate identical node counts.  The
// store only ever grows; nodes live as long as the store does.
type Store struct {
	exprs *hash.Set[*Expr]
	// next interning sequence number.
	next uint64
}

// NewStore creates an empty expression store.
func NewStore() *Store {
	return &Store{hash.NewSet[*Expr](256), 0}
}

// Size returns the number of unique expressions interned so far.
func (p *Store) Size() uint {
	return p.exprs.Size()
}

// intern returns the canonical node equal to the candidate, inserting the
// candidate (and assigning its id) when no such node exists yet.
func (p *Store) intern(candidate *Expr) *Expr {
	if existing, ok := p.exprs.Find(candidate); ok {
		return existing
	}
	//
	candidate.id = p.next
	p.next++
	p.exprs.Insert(candidate)
	//
	return candidate
}

// Constant returns the interned literal node for the given bit.
func (p *Store) Constant(value bool) *Expr {
	return p.intern(&Expr{kind: Constant, value: value})
}

// Read returns the interned node reading the given bit of a register.
func (p *Store) Read(target *ReadTarget, offset uint) *Expr {
	return p.intern(&Expr{kind: Read, target: target, offset: offset})
}

// Lookup returns the interned node selecting output bit outputOffset of the
// given S-box applied to the inputs.  The input vector is copied.
func (p *Store) Lookup(table *LookupTable, inputs []*Expr, outputOffset uint) *Expr {
	return p.intern(&Expr{
		kind:   Lookup,
		table:  table,
		inputs: slices.Clone(inputs),
		offset: outputOffset,
	})
}

// Not returns the interned complement of the given expression.
func (p *Store) Not(operand *Expr) *Expr {
	return p.intern(&Expr{kind: Not, left: operand})
}

// Binary returns the interned binary node of the given kind.  And, Or and Xor
// are commutative, so operands are normalised onto a stable order (by
// interning id) before the store is consulted.
func (p *Store) Binary(kind Kind, left, right *Expr) *Expr {
	if kind != And && kind != Or && kind != Xor {
		panic("binary expression kind required")
	}
	//
	if left.id > right.id {
		left, right = right, left
	}
	//
	return p.intern(&Expr{kind: kind, left: left, right: right})
}
