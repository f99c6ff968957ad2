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
	"sync/atomic"

	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// TargetKind distinguishes the two classes of readable registers.
type TargetKind uint8

const (
	// InputTarget is an external input register (plaintext, key, iv, ...).
	// Its bits are free variables of the circuit.
	InputTarget TargetKind = iota
	// StateTarget is an internal register whose bits are defined by update
	// expressions, one per bit.
	StateTarget
)

func (p TargetKind) String() string {
	switch p {
	case InputTarget:
		return "input"
	case StateTarget:
		return "state"
	default:
		return "invalid"
	}
}

// targetCounter issues process-unique identifiers for read targets, giving
// them a stable key for hashing without relying on pointer values.
var targetCounter atomic.Uint64

// ReadTarget is a named register which bit reads resolve against.  Input
// targets carry no update expressions; state targets carry one update
// expression per bit, in the frontend's bit order.
type ReadTarget struct {
	id   uint64
	kind TargetKind
	name string
	size uint
	// UpdateExprs gives, for every bit of a state register, the expression
	// defining that bit.  Populated by the parser after construction, since
	// update expressions may refer back to their own target.
	UpdateExprs []*Expr
}

// NewReadTarget constructs a fresh read target of the given kind.
func NewReadTarget(kind TargetKind, name string, size uint) *ReadTarget {
	return &ReadTarget{
		id:   targetCounter.Add(1),
		kind: kind,
		name: name,
		size: size,
	}
}

// Kind returns the class of this register.
func (p *ReadTarget) Kind() TargetKind {
	return p.kind
}

// Name returns the register name as declared in the artifact.
func (p *ReadTarget) Name() string {
	return p.name
}

// Size returns the declared register size.
func (p *ReadTarget) Size() uint {
	return p.size
}

// ReadRef identifies one bit of one register.  It is the variable type of
// circuit polynomials: two refs are equal when they name the same target
// (by identity) and offset.
type ReadRef struct {
	Target *ReadTarget
	Offset uint
}

// Equals implements hash.Hasher.
func (p ReadRef) Equals(other ReadRef) bool {
	return p.Target == other.Target && p.Offset == other.Offset
}

// Hash implements hash.Hasher.
func (p ReadRef) Hash() uint64 {
	return hash.Mix(hash.Mix(hash.Seed(), p.Target.id), uint64(p.Offset))
}

func (p ReadRef) String() string {
	return fmt.Sprintf("%s[%d]", p.Target.name, p.Offset)
}
