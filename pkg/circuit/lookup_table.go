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
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
)

var tableCounter atomic.Uint64

// LookupTable is the value table of an n-to-m bit S-box.  Derived artifacts
// (the per-coordinate ANF coefficient vectors, the difference distribution
// table and the linear approximation table) are computed on first demand and
// retained for the table's lifetime.
//
// Table entries wider than the declared output width are accepted; bits at or
// above the output width are ignored by every derived computation.
type LookupTable struct {
	id          uint64
	name        string
	inputWidth  uint
	outputWidth uint
	values      []uint64

	anfOnce sync.Once
	anfBits []*bitset.BitSet

	ddtOnce sync.Once
	ddt     [][]uint64

	latOnce sync.Once
	lat     [][]int64
}

// NewLookupTable constructs an S-box table.  Zero input or output widths are
// rejected.  A short value vector is padded with zeroes up to 2^n entries; a
// long one is truncated.
func NewLookupTable(name string, inputWidth, outputWidth uint, values []uint64) (*LookupTable, error) {
	if inputWidth == 0 || outputWidth == 0 {
		return nil, fmt.Errorf("lookup table %q: widths must be non-zero (got %d -> %d)",
			name, inputWidth, outputWidth)
	}
	//
	size := uint(1) << inputWidth
	data := make([]uint64, size)
	copy(data, values)
	//
	return &LookupTable{
		id:          tableCounter.Add(1),
		name:        name,
		inputWidth:  inputWidth,
		outputWidth: outputWidth,
		values:      data,
	}, nil
}

// Name returns the table name as declared in the artifact.
func (p *LookupTable) Name() string {
	return p.name
}

// InputWidth returns the number of input bits.
func (p *LookupTable) InputWidth() uint {
	return p.inputWidth
}

// OutputWidth returns the number of output bits.
func (p *LookupTable) OutputWidth() uint {
	return p.outputWidth
}

// TableData returns the raw value vector, padded (or truncated) to exactly
// 2^n entries.  The slice must not be mutated.
func (p *LookupTable) TableData() []uint64 {
	return p.values
}

// outputMask returns the mask selecting the declared output bits.
func (p *LookupTable) outputMask() uint64 {
	if p.outputWidth >= 64 {
		return ^uint64(0)
	}
	//
	return (uint64(1) << p.outputWidth) - 1
}

// ANFBits returns the ANF coefficient vector of output coordinate j: a bitset
// of length 2^n whose bit i is the coefficient of the monomial over the input
// bits selected by i.  Panics if j is not a valid coordinate; callers decide
// the out-of-range policy (reads beyond the output width are constant false).
func (p *LookupTable) ANFBits(j uint) *bitset.BitSet {
	if j >= p.outputWidth {
		panic(fmt.Sprintf("lookup table %q: coordinate %d out of range", p.name, j))
	}
	//
	p.anfOnce.Do(p.computeANFBits)
	//
	return p.anfBits[j]
}

// computeANFBits loads the value table bit-sliced per coordinate, then applies
// the in-place Moebius transform over GF(2) along each input variable.
func (p *LookupTable) computeANFBits() {
	size := uint(1) << p.inputWidth
	slices := make([]*bitset.BitSet, p.outputWidth)
	//
	for j := range slices {
		slices[j] = bitset.New(size)
	}
	//
	for i, value := range p.values {
		for j := uint(0); j < p.outputWidth; j++ {
			if (value>>j)&1 == 1 {
				slices[j].Set(uint(i))
			}
		}
	}
	// Moebius transform: one butterfly pass per input variable.
	for i := uint(0); i < p.inputWidth; i++ {
		stride := uint(1) << (i + 1)
		//
		for j := uint(0); j < size; j += stride {
			for k := uint(0); k < uint(1)<<i; k++ {
				left, right := j+k, j+k+(1<<i)
				//
				for _, slice := range slices {
					slice.SetTo(right, slice.Test(right) != slice.Test(left))
				}
			}
		}
	}
	//
	p.anfBits = slices
}

// DDT returns the difference distribution table: DDT[a][b] counts the pairs
// (x1, x2) with x1^x2 = a and S(x1)^S(x2) = b.
func (p *LookupTable) DDT() [][]uint64 {
	p.ddtOnce.Do(func() {
		inSize := uint64(1) << p.inputWidth
		outSize := uint64(1) << p.outputWidth
		mask := p.outputMask()
		//
		ddt := make([][]uint64, inSize)
		for i := range ddt {
			ddt[i] = make([]uint64, outSize)
		}
		//
		for x1 := uint64(0); x1 < inSize; x1++ {
			for x2 := uint64(0); x2 < inSize; x2++ {
				input := x1 ^ x2
				output := (p.values[x1] ^ p.values[x2]) & mask
				ddt[input][output]++
			}
		}
		//
		p.ddt = ddt
	})
	//
	return p.ddt
}

// LAT returns the linear approximation table: LAT[a][b] is the number of
// inputs x on which the parity of a&x agrees with the parity of b&S(x), minus
// half the input space.
func (p *LookupTable) LAT() [][]int64 {
	p.latOnce.Do(func() {
		inSize := uint64(1) << p.inputWidth
		outSize := uint64(1) << p.outputWidth
		mask := p.outputMask()
		bias := int64(inSize / 2)
		//
		lat := make([][]int64, inSize)
		for a := range lat {
			lat[a] = make([]int64, outSize)
		}
		//
		for a := uint64(0); a < inSize; a++ {
			for b := uint64(0); b < outSize; b++ {
				var count int64
				//
				for x := uint64(0); x < inSize; x++ {
					if parity(a&x) == parity(b&(p.values[x]&mask)) {
						count++
					}
				}
				//
				lat[a][b] = count - bias
			}
		}
		//
		p.lat = lat
	})
	//
	return p.lat
}

func parity(v uint64) uint {
	return uint(bits.OnesCount64(v)) & 1
}
