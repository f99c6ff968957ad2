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

import (
	"math/rand"
	"testing"
)

// collidingKey hashes every value to one of two buckets, so collision handling
// is exercised constantly.
type collidingKey uint64

func (p collidingKey) Equals(other collidingKey) bool {
	return p == other
}

func (p collidingKey) Hash() uint64 {
	return uint64(p) % 2
}

func Test_HashSet_00(t *testing.T) {
	check_HashSet_InsertRemove(t, 10, 16)
}

func Test_HashSet_01(t *testing.T) {
	for i := 0; i < 100; i++ {
		check_HashSet_InsertRemove(t, 100, 32)
	}
}

func Test_HashSet_02(t *testing.T) {
	check_HashSet_InsertRemove(t, 10000, 1024)
}

func Test_HashSet_03(t *testing.T) {
	set := NewSet[collidingKey](4)
	// Toggle twice cancels out
	if !set.Toggle(collidingKey(3)) {
		t.Error("first toggle should insert")
	}

	if set.Toggle(collidingKey(3)) {
		t.Error("second toggle should remove")
	}

	if set.Size() != 0 {
		t.Errorf("expected empty set, got size %d", set.Size())
	}
}

func Test_HashSet_04(t *testing.T) {
	set := NewSet[collidingKey](4)
	set.Insert(collidingKey(7))
	//
	if item, ok := set.Find(collidingKey(7)); !ok || item != 7 {
		t.Error("find failed to locate representative")
	}

	if _, ok := set.Find(collidingKey(9)); ok {
		t.Error("find located non-existent item")
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_HashSet_InsertRemove(t *testing.T, n int, m uint64) {
	set := NewSet[collidingKey](16)
	oracle := make(map[collidingKey]bool, n)
	//
	for i := 0; i < n; i++ {
		item := collidingKey(rand.Uint64() % m)
		//
		if rand.Int()%2 == 0 {
			set.Insert(item)
			oracle[item] = true
		} else {
			set.Remove(item)
			delete(oracle, item)
		}
	}
	// Check size matches
	if set.Size() != uint(len(oracle)) {
		t.Errorf("set size %d does not match oracle size %d", set.Size(), len(oracle))
	}
	// Check membership matches
	for i := uint64(0); i < m; i++ {
		item := collidingKey(i)
		if set.Contains(item) != oracle[item] {
			t.Errorf("membership mismatch for %d", i)
		}
	}
}
