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

// Package logic implements two-level logic minimisation over cube covers.
// A boolean function on up to 64 positions is represented as a sum of cubes
// (product terms); the package computes complement covers and expands them
// into compact prime-ish covers.  This is the engine behind the CNF table
// templates of the SAT builder and the cutting inequalities of the
// division-property modeller.
package logic

import (
	"math/bits"
	"strings"
)

// MaxWidth bounds the number of cube positions.  Packing a cube into two
// machine words keeps every cover operation branch-free and allocation-free.
const MaxWidth = 64

// Cube is a product term: every position is either bound to 0, bound to 1,
// or unbound (dash).  The care word selects the bound positions, the value
// word gives their polarity.  Value bits of unbound positions are kept zero
// so cubes compare with ==.
type Cube struct {
	care  uint64
	value uint64
}

// FullCube returns the cube with every position unbound, covering the whole
// space.
func FullCube() Cube {
	return Cube{}
}

// Minterm returns the fully-bound cube over the given width.
func Minterm(value uint64, width uint) Cube {
	care := widthMask(width)
	return Cube{care, value & care}
}

// Bound reports whether position i is bound and, if so, its polarity.
func (p Cube) Bound(i uint) (uint64, bool) {
	if p.care&(1<<i) == 0 {
		return 0, false
	}
	//
	return (p.value >> i) & 1, true
}

// BoundCount returns the number of bound positions.
func (p Cube) BoundCount() uint {
	return uint(bits.OnesCount64(p.care))
}

// IsFull reports whether this cube covers the whole space.
func (p Cube) IsFull() bool {
	return p.care == 0
}

// bind returns this cube with position i bound to the given polarity.
func (p Cube) bind(i uint, polarity uint64) Cube {
	p.care |= 1 << i
	p.value = (p.value &^ (1 << i)) | (polarity << i)
	//
	return p
}

// free returns this cube with position i unbound.
func (p Cube) free(i uint) Cube {
	p.care &^= 1 << i
	p.value &^= 1 << i
	//
	return p
}

// Intersects reports whether two cubes share at least one point, i.e. they
// agree on every position bound in both.
func (p Cube) Intersects(other Cube) bool {
	return (p.value^other.value)&p.care&other.care == 0
}

// Covers reports whether this cube contains every point of the other: this
// cube binds no position the other leaves free, and agrees wherever bound.
func (p Cube) Covers(other Cube) bool {
	return p.care&^other.care == 0 && (p.value^other.value)&p.care == 0
}

// String renders this cube as a PLA input line over the given width, with
// position zero leftmost.
func (p Cube) String(width uint) string {
	var builder strings.Builder
	//
	for i := uint(0); i < width; i++ {
		switch polarity, bound := p.Bound(i); {
		case !bound:
			builder.WriteByte('-')
		case polarity == 1:
			builder.WriteByte('1')
		default:
			builder.WriteByte('0')
		}
	}
	//
	return builder.String()
}

func widthMask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	//
	return (uint64(1) << width) - 1
}
