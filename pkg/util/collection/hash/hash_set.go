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

// A reasonably simple hashset implementation which permits collisions.  Observe
// that, for example, hashicorp's go-set is *not* a suitable replacement here,
// since that does not handle collisions.  Specifically, it assumes the hash
// function always uniquely identifies the data in question.  I don't want to
// make that assumption here.

// Hasher provides a generic definition of a hashing function suitable for use
// within the hashset.  This is similar to the Hasher interface provided in
// go-set, except that it additionally includes equality.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

// Set defines a generic set implementation backed by a map.  This is a true
// hashtable in that collisions are handled gracefully using buckets, rather
// than simply discarding them.  Beyond plain insertion, this set supports
// removal and membership toggling, which gives it the XOR semantics needed for
// symmetric-difference style accumulation.
type Set[T Hasher[T]] struct {
	// items maps hashcodes to *buckets* of items.
	items map[uint64][]T
	// count of items currently stored.
	count uint
}

// NewSet creates a new Set with a given underlying capacity.
func NewSet[T Hasher[T]](size uint) *Set[T] {
	items := make(map[uint64][]T, size)
	return &Set[T]{items, 0}
}

// Size returns the number of unique items stored in this Set.
func (p *Set[T]) Size() uint {
	return p.count
}

// Insert a new item into this set, returning true if it was already contained
// and false otherwise.
func (p *Set[T]) Insert(item T) bool {
	hash := item.Hash()
	bucket := p.items[hash]
	//
	for _, other := range bucket {
		if item.Equals(other) {
			return true
		}
	}
	// Item not present
	p.items[hash] = append(bucket, item)
	p.count++
	//
	return false
}

// Remove an item from this set, returning true if it was present.
func (p *Set[T]) Remove(item T) bool {
	hash := item.Hash()
	bucket := p.items[hash]
	//
	for i, other := range bucket {
		if item.Equals(other) {
			n := len(bucket) - 1
			bucket[i] = bucket[n]
			bucket = bucket[:n]
			// Drop empty buckets entirely
			if n == 0 {
				delete(p.items, hash)
			} else {
				p.items[hash] = bucket
			}
			//
			p.count--
			//
			return true
		}
	}
	//
	return false
}

// Toggle flips membership of the given item, returning true if the item is
// contained *after* the operation.  This implements addition in GF(2): two
// toggles of the same item cancel out.
func (p *Set[T]) Toggle(item T) bool {
	if p.Remove(item) {
		return false
	}
	//
	p.Insert(item)
	//
	return true
}

// Contains checks whether a given item is in this set, or not.
func (p *Set[T]) Contains(item T) bool {
	_, ok := p.Find(item)
	return ok
}

// Find locates the stored representative equal to the given item.  This is
// what makes the set usable for interning: the caller probes with a candidate
// and, on success, receives the canonical element inserted earlier.
func (p *Set[T]) Find(item T) (T, bool) {
	var empty T
	//
	for _, other := range p.items[item.Hash()] {
		if item.Equals(other) {
			return other, true
		}
	}
	//
	return empty, false
}

// Iter visits every item in this set until the callback returns false.  No
// ordering guarantees are made; callers which need determinism must collect
// and sort.
func (p *Set[T]) Iter(fn func(T) bool) {
	for _, bucket := range p.items {
		for _, item := range bucket {
			if !fn(item) {
				return
			}
		}
	}
}

// Clone creates a disjoint copy of this set.
func (p *Set[T]) Clone() *Set[T] {
	clone := NewSet[T](p.count)
	//
	p.Iter(func(item T) bool {
		clone.Insert(item)
		return true
	})
	//
	return clone
}
