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
	"github.com/consensys/go-trail/pkg/anf"
	"github.com/consensys/go-trail/pkg/circuit"
)

// partitions visits every set partition of the given variables, as monomial
// lists, until the callback returns false.  Each variable either opens a new
// part or joins one of the parts formed so far; the visitor owns the slice
// only for the duration of the call.
func partitions(vars []circuit.ReadRef, fn func([]circuit.Monomial) bool) {
	var rec func(i int, current []circuit.Monomial) bool
	//
	rec = func(i int, current []circuit.Monomial) bool {
		if i == len(vars) {
			return fn(current)
		}
		//
		v := vars[i]
		// The variable as a part of its own...
		if !rec(i+1, append(current, anf.NewMonomial(v))) {
			return false
		}
		// ...or joined onto an earlier part.
		for j := range current {
			saved := current[j]
			current[j] = saved.Insert(v)
			//
			if !rec(i+1, current) {
				return false
			}
			//
			current[j] = saved
		}
		//
		return true
	}
	//
	rec(0, make([]circuit.Monomial, 0, len(vars)))
}
