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
package hash

const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Mix folds a value into a running FNV-1a style hash.  Chained mixes are order
// sensitive, which is what one wants for sequences.
func Mix(seed, value uint64) uint64 {
	seed ^= value
	seed *= prime64
	//
	return seed
}

// Seed returns the canonical starting point for chained Mix calls.
func Seed() uint64 {
	return offset64
}

// Uint64Key wraps a plain uint64 as something which can be placed into a Set
// or used as a Map key.
type Uint64Key uint64

// Equals compares two Uint64Keys for equality.
func (p Uint64Key) Equals(other Uint64Key) bool {
	return p == other
}

// Hash scrambles the underlying value.  Identity would work, but scrambling
// avoids pathological bucketing for regular key sequences.
func (p Uint64Key) Hash() uint64 {
	return Mix(offset64, uint64(p))
}
