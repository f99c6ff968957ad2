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
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ReduceInequalities selects a minimal-ish subset of the given inequalities
// whose feasible region restricted to {0,1}^d is exactly the given point
// set.  This is the greedy covering of Xiang et al. (Algorithm 1,
// doi:10.1007/978-3-662-53887-6_24): repeatedly keep the inequality cutting
// the most currently-uncut complement points, lowest index winning ties,
// until no complement point survives.
func ReduceInequalities(inequalities []Inequality, points []Vertex) ([]Inequality, error) {
	if len(points) == 0 || len(inequalities) == 0 {
		return nil, fmt.Errorf("points and inequalities must not be empty")
	}
	//
	dimension := points[0].Dimension()
	//
	if dimension >= 64 {
		return nil, fmt.Errorf("dimension %d too large to enumerate", dimension)
	}
	//
	for _, point := range points {
		if point.Dimension() != dimension {
			return nil, fmt.Errorf("all points must share dimension %d", dimension)
		}
	}
	//
	for _, inequality := range inequalities {
		if inequality.Dimension() != dimension {
			return nil, fmt.Errorf("inequality dimension %d must equal %d",
				inequality.Dimension(), dimension)
		}
	}
	// Index the admissible points.
	admissible := bitset.New(1 << dimension)
	//
	for _, point := range points {
		key, err := point.bitKey()
		if err != nil {
			return nil, err
		}
		//
		admissible.Set(uint(key))
	}
	// Enumerate the complement.
	var complement []Vertex
	//
	for index := uint64(0); index < 1<<dimension; index++ {
		if !admissible.Test(uint(index)) {
			complement = append(complement, VertexFromBits(index, dimension))
		}
	}
	//
	remaining := make([]Inequality, len(inequalities))
	copy(remaining, inequalities)
	//
	var result []Inequality
	//
	for len(complement) > 0 {
		bestIndex := -1
		var bestViolations []uint
		//
		for i, inequality := range remaining {
			var violations []uint
			//
			for j, point := range complement {
				value, err := inequality.Eval(point)
				if err != nil {
					return nil, err
				}
				//
				if value < 0 {
					violations = append(violations, uint(j))
				}
			}
			//
			if len(violations) > len(bestViolations) {
				bestIndex, bestViolations = i, violations
			}
		}
		//
		if bestIndex < 0 {
			return nil, fmt.Errorf(
				"failed to reduce inequalities: insufficient separating power")
		}
		//
		result = append(result, remaining[bestIndex])
		remaining = append(remaining[:bestIndex], remaining[bestIndex+1:]...)
		// Drop the points the chosen inequality cuts.
		cut := bitset.New(uint(len(complement)))
		for _, j := range bestViolations {
			cut.Set(j)
		}
		//
		var survivors []Vertex
		//
		for j, point := range complement {
			if !cut.Test(uint(j)) {
				survivors = append(survivors, point)
			}
		}
		//
		complement = survivors
	}
	//
	return result, nil
}
