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
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Store_ConstantsShared(t *testing.T) {
	store := NewStore()
	//
	require.Same(t, store.Constant(true), store.Constant(true))
	require.Same(t, store.Constant(false), store.Constant(false))
	require.NotSame(t, store.Constant(true), store.Constant(false))
	require.Equal(t, uint(2), store.Size())
}

func Test_Store_ReadsShared(t *testing.T) {
	store := NewStore()
	target := NewReadTarget(InputTarget, "pt", 8)
	other := NewReadTarget(InputTarget, "pt", 8)
	//
	require.Same(t, store.Read(target, 3), store.Read(target, 3))
	require.NotSame(t, store.Read(target, 3), store.Read(target, 4))
	// Target identity matters, not its name.
	require.NotSame(t, store.Read(target, 3), store.Read(other, 3))
}

func Test_Store_CommutativeNormalisation(t *testing.T) {
	store := NewStore()
	target := NewReadTarget(InputTarget, "pt", 8)
	a := store.Read(target, 0)
	b := store.Read(target, 1)
	// Operand order is irrelevant for commutative operators.
	require.Same(t, store.Binary(Xor, a, b), store.Binary(Xor, b, a))
	require.Same(t, store.Binary(And, a, b), store.Binary(And, b, a))
	require.Same(t, store.Binary(Or, a, b), store.Binary(Or, b, a))
	// ...but different operators are distinct nodes.
	require.NotSame(t, store.Binary(Xor, a, b), store.Binary(And, a, b))
}

func Test_Store_LookupsShared(t *testing.T) {
	store := NewStore()
	target := NewReadTarget(InputTarget, "pt", 8)
	table := newTable(t, "and", 2, 1, []uint64{0, 0, 0, 1})
	inputs := []*Expr{store.Read(target, 0), store.Read(target, 1)}
	//
	require.Same(t, store.Lookup(table, inputs, 0), store.Lookup(table, inputs, 0))
	require.NotSame(t, store.Lookup(table, inputs, 0), store.Lookup(table, inputs, 1))
	// Deep sharing: a composite built twice is one node.
	before := store.Size()
	lhs := store.Binary(Xor, store.Lookup(table, inputs, 0), store.Constant(true))
	rhs := store.Binary(Xor, store.Lookup(table, inputs, 0), store.Constant(true))
	require.Same(t, lhs, rhs)
	require.Equal(t, before+2, store.Size())
}
