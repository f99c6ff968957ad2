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
	"testing"

	"github.com/consensys/go-trail/pkg/circuit"
	"github.com/stretchr/testify/require"
)

func Test_Modeller_ConstantsAndKeyBitsInactive(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	key := circuit.NewReadTarget(circuit.InputTarget, "key", 1)
	//
	modeller := NewModeller(Differential, nil)
	//
	c, err := modeller.Traverse(store.Constant(true))
	require.NoError(t, err)
	//
	k, err := modeller.Traverse(store.Read(key, 0))
	require.NoError(t, err)
	// Both share the pinned FALSE variable.
	require.Equal(t, c, k)
	//
	free, err := modeller.Traverse(store.Read(pt, 0))
	require.NoError(t, err)
	require.NotEqual(t, c, free)
}

func Test_Modeller_XorShortCircuit(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	//
	modeller := NewModeller(Differential, nil)
	// pt[0] ^ constant has the difference of pt[0]: no gadget needed.
	expr := store.Binary(circuit.Xor, store.Read(pt, 0), store.Constant(true))
	v, err := modeller.Traverse(expr)
	require.NoError(t, err)
	//
	direct, err := modeller.Traverse(store.Read(pt, 0))
	require.NoError(t, err)
	require.Equal(t, direct, v)
}

func Test_Modeller_NotIsIdentity(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	//
	modeller := NewModeller(Differential, nil)
	//
	plain, err := modeller.Traverse(store.Read(pt, 0))
	require.NoError(t, err)
	//
	negated, err := modeller.Traverse(store.Not(store.Read(pt, 0)))
	require.NoError(t, err)
	require.Equal(t, plain, negated)
}

func Test_Modeller_BlockSharing(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	table, err := circuit.NewLookupTable("S", 4, 4,
		[]uint64{12, 5, 6, 11, 9, 0, 10, 13, 3, 14, 15, 8, 4, 7, 1, 2})
	require.NoError(t, err)
	//
	inputs := make([]*circuit.Expr, 4)
	for i := range inputs {
		inputs[i] = store.Read(pt, uint(i))
	}
	//
	modeller := NewModeller(Differential, []string{"plaintext"})
	// All output offsets of one instantiation share one encoding, so the
	// weight variables are emitted exactly once.
	for offset := uint(0); offset < 4; offset++ {
		_, err := modeller.Traverse(store.Lookup(table, inputs, offset))
		require.NoError(t, err)
	}
	//
	require.Len(t, modeller.WeightVariables(), 4)
	// An offset past the output width reads as the inactive bit.
	v, err := modeller.Traverse(store.Lookup(table, inputs, 7))
	require.NoError(t, err)
	//
	inactive, err := modeller.Traverse(store.Constant(false))
	require.NoError(t, err)
	require.Equal(t, inactive, v)
}

func Test_Modeller_GatesViaTables(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	a, b := store.Read(pt, 0), store.Read(pt, 1)
	//
	modeller := NewModeller(Differential, nil)
	//
	_, err := modeller.Traverse(store.Binary(circuit.And, a, b))
	require.NoError(t, err)
	// The AND gate costs one weight variable.
	require.Len(t, modeller.WeightVariables(), 1)
	//
	_, err = modeller.Traverse(store.Binary(circuit.Or, a, b))
	require.NoError(t, err)
	require.Len(t, modeller.WeightVariables(), 2)
}

func Test_Modeller_LinearXorForcesEquality(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	//
	modeller := NewModeller(Linear, nil)
	//
	expr := store.Binary(circuit.Xor, store.Read(pt, 0), store.Read(pt, 1))
	result, err := modeller.Traverse(expr)
	require.NoError(t, err)
	//
	left, err := modeller.Traverse(store.Read(pt, 0))
	require.NoError(t, err)
	//
	right, err := modeller.Traverse(store.Read(pt, 1))
	require.NoError(t, err)
	// Masks must agree across an XOR gate: only the all-equal assignments of
	// (left, right, result) satisfy the model.
	model := modeller.Model()
	//
	for assignment := uint(0); assignment < 8; assignment++ {
		values := [3]bool{assignment&1 != 0, assignment&2 != 0, assignment&4 != 0}
		fixed := map[Variable]bool{
			left:   values[0],
			right:  values[1],
			result: values[2],
		}
		//
		expected := values[0] == values[1] && values[1] == values[2]
		require.Equal(t, expected, satisfiable(model, fixed))
	}
}

func Test_Modeller_StateTraversal(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	state := circuit.NewReadTarget(circuit.StateTarget, "r", 1)
	//
	for i := uint(0); i < 8; i++ {
		state.UpdateExprs = append(state.UpdateExprs, store.Read(pt, i))
	}
	//
	modeller := NewModeller(Differential, nil)
	//
	viaState, err := modeller.Traverse(store.Read(state, 5))
	require.NoError(t, err)
	//
	direct, err := modeller.Traverse(store.Read(pt, 5))
	require.NoError(t, err)
	require.Equal(t, direct, viaState)
	// A state bit with no defining expression is a shape error.
	short := circuit.NewReadTarget(circuit.StateTarget, "bad", 1)
	_, err = modeller.Traverse(store.Read(short, 0))
	require.Error(t, err)
}
