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

func Test_HashMap_00(t *testing.T) {
	check_HashMap_InsertGet(t, 10, 16)
}

func Test_HashMap_01(t *testing.T) {
	for i := 0; i < 100; i++ {
		check_HashMap_InsertGet(t, 100, 32)
	}
}

func Test_HashMap_02(t *testing.T) {
	check_HashMap_InsertGet(t, 10000, 1024)
}

func Test_HashMap_03(t *testing.T) {
	m := NewMap[collidingKey, string](4)
	calls := 0
	supplier := func() string {
		calls++
		return "fresh"
	}
	// First call inserts
	if v, present := m.GetOrInsert(collidingKey(1), supplier); present || v != "fresh" {
		t.Error("expected supplier value on first access")
	}
	// Second call reuses
	if v, present := m.GetOrInsert(collidingKey(1), supplier); !present || v != "fresh" {
		t.Error("expected cached value on second access")
	}

	if calls != 1 {
		t.Errorf("supplier called %d times, expected 1", calls)
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_HashMap_InsertGet(t *testing.T, n int, m uint64) {
	hmap := NewMap[collidingKey, uint64](16)
	oracle := make(map[collidingKey]uint64, n)
	//
	for i := 0; i < n; i++ {
		key := collidingKey(rand.Uint64() % m)
		value := rand.Uint64()
		hmap.Insert(key, value)
		oracle[key] = value
	}
	//
	if hmap.Size() != uint(len(oracle)) {
		t.Errorf("map size %d does not match oracle size %d", hmap.Size(), len(oracle))
	}
	//
	for key, value := range oracle {
		if actual, ok := hmap.Get(key); !ok || actual != value {
			t.Errorf("binding mismatch for key %d", key)
		}
	}
}
