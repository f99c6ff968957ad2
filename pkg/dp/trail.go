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
	"github.com/bits-and-blooms/bitset"

	"github.com/consensys/go-trail/pkg/circuit"
)

// DivisionPropertyTrail enumerates the minimal admissible division trails
// (u, v) of an S-box as 0/1 vertices of dimension n+m, input bits first
// (least significant coordinate is input bit zero).
//
// A trail u -> v is admissible when the ANF of the product of the output
// bits selected by v contains a monomial covering u.  For each input mask
// only the minimal output masks under bit-subset order are emitted; the
// trivial trail 0 -> 0 seeds the set.
func DivisionPropertyTrail(sbox *circuit.LookupTable) ([]Vertex, error) {
	var (
		inputWidth  = sbox.InputWidth()
		outputWidth = sbox.OutputWidth()
		inputMasks  = uint64(1) << inputWidth
		outputMasks = uint64(1) << outputWidth
		data        = sbox.TableData()
	)
	// The ANF of pi_b(S(x)) for every output mask b, computed by loading the
	// product bit as a one-coordinate value table and reusing the Moebius
	// transform.
	anfs := make([]*bitset.BitSet, outputMasks)
	//
	for b := uint64(0); b < outputMasks; b++ {
		bits := make([]uint64, len(data))
		//
		for i, value := range data {
			// Masks only select declared output bits, so wider raw entries
			// need no truncation here.
			bits[i] = bitPower(value, b)
		}
		//
		product, err := circuit.NewLookupTable("", inputWidth, 1, bits)
		if err != nil {
			return nil, err
		}
		//
		anfs[b] = product.ANFBits(0)
	}
	//
	trails := []Vertex{make(Vertex, inputWidth+outputWidth)}
	//
	for u := uint64(1); u < inputMasks; u++ {
		var minimal []uint64
		//
		for v := uint64(1); v < outputMasks; v++ {
			// Coverable: some monomial of pi_v contains every bit of u.
			covered := false
			anf := anfs[v]
			//
			for index, ok := anf.NextSet(0); ok; index, ok = anf.NextSet(index + 1) {
				if uint64(index)|u == uint64(index) {
					covered = true
					break
				}
			}
			//
			if !covered {
				continue
			}
			// Keep only masks minimal under subset order.
			keep := true
			var superseded []int
			//
			for i, existing := range minimal {
				if existing|v == v {
					// An existing mask is a subset of v.
					keep = false
					break
				}

				if existing|v == existing {
					// v is a subset of an existing mask.
					superseded = append(superseded, i)
				}
			}
			//
			if !keep {
				continue
			}
			//
			for i := len(superseded) - 1; i >= 0; i-- {
				index := superseded[i]
				minimal = append(minimal[:index], minimal[index+1:]...)
			}
			//
			minimal = append(minimal, v)
		}
		//
		for _, v := range minimal {
			trail := append(VertexFromBits(u, inputWidth), VertexFromBits(v, outputWidth)...)
			trails = append(trails, trail)
		}
	}
	//
	return trails, nil
}

// bitPower evaluates the monomial x^u, i.e. one exactly when u's bits are a
// subset of x's.
func bitPower(x, u uint64) uint64 {
	if x&u == u {
		return 1
	}
	//
	return 0
}
