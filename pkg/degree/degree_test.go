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
package degree

import (
	"testing"

	"github.com/consensys/go-trail/pkg/circuit"
	"github.com/stretchr/testify/require"
)

func Test_Degree_Partitions(t *testing.T) {
	pt := circuit.NewReadTarget(circuit.InputTarget, "pt", 1)
	vars := []circuit.ReadRef{{Target: pt, Offset: 0}, {Target: pt, Offset: 1}, {Target: pt, Offset: 2}}
	// The number of set partitions of three elements is the Bell number 5.
	count := 0
	partitions(vars, func(parts []circuit.Monomial) bool {
		count++
		//
		total := uint(0)
		for _, part := range parts {
			total += part.Size()
		}
		//
		require.Equal(t, uint(3), total)
		//
		return true
	})
	//
	require.Equal(t, 5, count)
}

func Test_Degree_InputBits(t *testing.T) {
	store := circuit.NewStore()
	iv := circuit.NewReadTarget(circuit.InputTarget, "iv", 1)
	key := circuit.NewReadTarget(circuit.InputTarget, "key", 1)
	//
	bounder := NewBounder(Config{})
	// iv bits are free (degree one) by default, key bits constant.
	poly, err := bounder.Convert(store.Binary(circuit.And, store.Read(iv, 0), store.Read(iv, 1)))
	require.NoError(t, err)
	//
	deg, err := bounder.Bound(poly)
	require.NoError(t, err)
	require.Equal(t, 2, deg)
	//
	poly, err = bounder.Convert(store.Read(key, 0))
	require.NoError(t, err)
	//
	deg, err = bounder.Bound(poly)
	require.NoError(t, err)
	require.Equal(t, 0, deg)
}

func Test_Degree_Constants(t *testing.T) {
	store := circuit.NewStore()
	bounder := NewBounder(Config{})
	//
	one, err := bounder.Convert(store.Constant(true))
	require.NoError(t, err)
	//
	deg, err := bounder.Bound(one)
	require.NoError(t, err)
	require.Equal(t, 0, deg)
	//
	zero, err := bounder.Convert(store.Constant(false))
	require.NoError(t, err)
	//
	deg, err = bounder.Bound(zero)
	require.NoError(t, err)
	require.Equal(t, NegativeInfinity, deg)
}

func Test_Degree_ConfiguredInputDegrees(t *testing.T) {
	store := circuit.NewStore()
	nonce := circuit.NewReadTarget(circuit.InputTarget, "nonce", 1)
	//
	bounder := NewBounder(Config{
		InputDegrees:       map[string]int{"nonce": 3},
		DefaultInputDegree: 1,
	})
	//
	poly, err := bounder.Convert(store.Binary(circuit.And,
		store.Read(nonce, 0), store.Read(nonce, 1)))
	require.NoError(t, err)
	//
	deg, err := bounder.Bound(poly)
	require.NoError(t, err)
	require.Equal(t, 6, deg)
}

func Test_Degree_StateExpansion(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	state := circuit.NewReadTarget(circuit.StateTarget, "r", 1)
	// r[0] = pt[0] & pt[1]
	state.UpdateExprs = append(state.UpdateExprs,
		store.Binary(circuit.And, store.Read(pt, 0), store.Read(pt, 1)))
	for i := 0; i < 7; i++ {
		state.UpdateExprs = append(state.UpdateExprs, store.Constant(false))
	}
	//
	bounder := NewBounder(Config{})
	//
	poly, err := bounder.Convert(store.Read(state, 0))
	require.NoError(t, err)
	//
	deg, err := bounder.Bound(poly)
	require.NoError(t, err)
	require.Equal(t, 2, deg)
}

func Test_Degree_SquaringCollapses(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	sum := store.Binary(circuit.Xor, store.Read(pt, 0), store.Read(pt, 1))
	// Two registers carrying the same sum, multiplied together: since
	// x*x = x over GF(2), the product (pt0+pt1)*(pt0+pt1) collapses to
	// pt0 + pt1 of degree one, not two.
	b0 := circuit.NewReadTarget(circuit.StateTarget, "b0", 1)
	b1 := circuit.NewReadTarget(circuit.StateTarget, "b1", 1)
	b0.UpdateExprs = []*circuit.Expr{sum}
	b1.UpdateExprs = []*circuit.Expr{sum}
	//
	a := circuit.NewReadTarget(circuit.StateTarget, "a", 1)
	a.UpdateExprs = []*circuit.Expr{
		store.Binary(circuit.And, store.Read(b0, 0), store.Read(b1, 0)),
	}
	//
	bounder := NewBounder(Config{})
	//
	poly, err := bounder.Convert(store.Read(a, 0))
	require.NoError(t, err)
	//
	deg, err := bounder.Bound(poly)
	require.NoError(t, err)
	require.Equal(t, 1, deg)
}

func Test_Degree_RefinementThroughRecordedProducts(t *testing.T) {
	store := circuit.NewStore()
	pt := circuit.NewReadTarget(circuit.InputTarget, "plaintext", 1)
	sum := store.Binary(circuit.Xor, store.Read(pt, 0), store.Read(pt, 1))
	//
	b0 := circuit.NewReadTarget(circuit.StateTarget, "b0", 1)
	b1 := circuit.NewReadTarget(circuit.StateTarget, "b1", 1)
	b0.UpdateExprs = []*circuit.Expr{sum}
	b1.UpdateExprs = []*circuit.Expr{sum}
	//
	a := circuit.NewReadTarget(circuit.StateTarget, "a", 1)
	a.UpdateExprs = []*circuit.Expr{
		store.Binary(circuit.And, store.Read(b0, 0), store.Read(b1, 0)),
	}
	//
	bounder := NewBounder(Config{})
	// Bounding a[0] records the product b0[0]*b1[0] as refinable by a[0],
	// whose true bound is one.
	aPoly, err := bounder.Convert(store.Read(a, 0))
	require.NoError(t, err)
	//
	aDeg, err := bounder.Bound(aPoly)
	require.NoError(t, err)
	require.Equal(t, 1, aDeg)
	// The raw product b0[0]*b1[0] sums variable degrees to two, but the
	// partition search finds the recorded refinement and reports one.
	product, err := bounder.Convert(store.Binary(circuit.And,
		store.Read(b0, 0), store.Read(b1, 0)))
	require.NoError(t, err)
	//
	deg, err := bounder.Bound(product)
	require.NoError(t, err)
	require.Equal(t, 1, deg)
}

func Test_Degree_MissingUpdateIsError(t *testing.T) {
	store := circuit.NewStore()
	state := circuit.NewReadTarget(circuit.StateTarget, "r", 1)
	//
	bounder := NewBounder(Config{})
	//
	poly, err := bounder.Convert(store.Read(state, 3))
	require.NoError(t, err)
	//
	_, err = bounder.Bound(poly)
	require.Error(t, err)
}
