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
	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// SBoxBlock identifies one instantiation of an S-box: the exact input
// expression vector together with the table applied to it.  Modellers key
// their block-level caches on this, so all output offsets of the same
// instantiation share one modelled output vector.
type SBoxBlock struct {
	Inputs []*Expr
	Table  *LookupTable
}

// Equals compares blocks by table identity and input sequence identity.
func (p SBoxBlock) Equals(other SBoxBlock) bool {
	if p.Table != other.Table || len(p.Inputs) != len(other.Inputs) {
		return false
	}
	//
	for i := range p.Inputs {
		if p.Inputs[i] != other.Inputs[i] {
			return false
		}
	}
	//
	return true
}

// Hash implements hash.Hasher consistently with Equals.
func (p SBoxBlock) Hash() uint64 {
	code := hash.Seed()
	//
	for _, input := range p.Inputs {
		code = hash.Mix(code, input.id)
	}
	//
	return hash.Mix(code, p.Table.id)
}
