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
package dp

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func Test_Reduce_SingleSeparator(t *testing.T) {
	// P = {(0,0), (0,1), (1,0)}; of the three inequalities only x0 + x1 <= 1
	// cuts the missing corner, and it alone suffices.
	points := []Vertex{{0, 0}, {0, 1}, {1, 0}}
	inequalities := []Inequality{
		{Coefficients: []int{-1, -1}, Constant: 1}, // x0 + x1 <= 1
		{Coefficients: []int{-1, 0}, Constant: 1},  // x0 <= 1
		{Coefficients: []int{0, -1}, Constant: 1},  // x1 <= 1
	}
	//
	reduced, err := ReduceInequalities(inequalities, points)
	require.NoError(t, err)
	require.Equal(t, []Inequality{inequalities[0]}, reduced)
}

func Test_Reduce_InsufficientSeparatingPower(t *testing.T) {
	points := []Vertex{{0, 0}}
	// Nothing here cuts (1,1).
	inequalities := []Inequality{
		{Coefficients: []int{-1, 0}, Constant: 1},
		{Coefficients: []int{0, -1}, Constant: 1},
	}
	//
	_, err := ReduceInequalities(inequalities, points)
	require.ErrorContains(t, err, "insufficient separating power")
}

func Test_Reduce_Validation(t *testing.T) {
	_, err := ReduceInequalities(nil, []Vertex{{0}})
	require.Error(t, err)
	//
	_, err = ReduceInequalities([]Inequality{{Coefficients: []int{1}}}, nil)
	require.Error(t, err)
	// Mixed dimensions rejected.
	_, err = ReduceInequalities(
		[]Inequality{{Coefficients: []int{1}}},
		[]Vertex{{0}, {0, 1}})
	require.Error(t, err)
}

func Test_Reduce_PreservesFeasibleSet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	//
	properties.Property("reduction preserves the binary feasible region", prop.ForAll(
		func(membership uint8) bool {
			const dimension = 3
			// Reduction needs something to cut and something to keep.
			if membership == 0 || membership == 0xFF {
				return true
			}
			//
			points := pointsOf(uint64(membership), dimension)
			//
			inequalities, err := CutComplement(points)
			if err != nil {
				return false
			}
			//
			reduced, err := ReduceInequalities(inequalities, points)
			if err != nil {
				return false
			}
			// The result is a subset of the input...
			for _, inequality := range reduced {
				if !containsInequality(inequalities, inequality) {
					return false
				}
			}
			// ...with an unchanged feasible region.
			return feasibleSetEquals(reduced, uint64(membership), dimension)
		}, gen.UInt8()))
	//
	properties.TestingRun(t)
}

func containsInequality(haystack []Inequality, needle Inequality) bool {
	for _, candidate := range haystack {
		if candidate.Constant != needle.Constant ||
			len(candidate.Coefficients) != len(needle.Coefficients) {
			continue
		}
		//
		match := true
		//
		for i := range candidate.Coefficients {
			match = match && candidate.Coefficients[i] == needle.Coefficients[i]
		}
		//
		if match {
			return true
		}
	}
	//
	return false
}
