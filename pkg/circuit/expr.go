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
	"strings"

	"github.com/consensys/go-trail/pkg/util/collection/hash"
)

// Kind enumerates the expression variants.  There is deliberately no
// inheritance here: an expression is a tagged sum and every traversal is a
// single switch over this kind.
type Kind uint8

const (
	// Constant is a literal bit.
	Constant Kind = iota
	// Read is one bit of a register.
	Read
	// Lookup is one output bit of an S-box applied to a vector of input
	// bits.
	Lookup
	// Not complements its operand.
	Not
	// And conjoins two operands.
	And
	// Or disjoins two operands.
	Or
	// Xor sums two operands in GF(2).
	Xor
)

// Expr is a node of the bit-expression DAG.  Expressions are immutable and
// hash-consed: within one Store, structurally equal expressions are the same
// node, so equality is pointer equality and sharing is maximal.  The payload
// fields in use depend on the kind; accessors panic when invoked on the wrong
// kind, since that is always a programming error.
type Expr struct {
	// id is the interning sequence number, used as a stable address-like key
	// for hashing and for the commutative normalisation of binary nodes.
	id   uint64
	kind Kind
	// Constant payload
	value bool
	// Read payload
	target *ReadTarget
	// Read bit offset, or Lookup output offset.
	offset uint
	// Lookup payload
	table  *LookupTable
	inputs []*Expr
	// Not (left only) and binary payloads
	left  *Expr
	right *Expr
}

// Kind returns the variant tag of this expression.
func (p *Expr) Kind() Kind {
	return p.kind
}

// Id returns the interning sequence number of this expression.
func (p *Expr) Id() uint64 {
	return p.id
}

// Value returns the literal of a Constant expression.
func (p *Expr) Value() bool {
	p.require(Constant)
	return p.value
}

// Target returns the register read by a Read expression.
func (p *Expr) Target() *ReadTarget {
	p.require(Read)
	return p.target
}

// Offset returns the bit offset of a Read expression.
func (p *Expr) Offset() uint {
	p.require(Read)
	return p.offset
}

// Ref returns the target/offset pair of a Read expression.
func (p *Expr) Ref() ReadRef {
	p.require(Read)
	return ReadRef{p.target, p.offset}
}

// Table returns the S-box of a Lookup expression.
func (p *Expr) Table() *LookupTable {
	p.require(Lookup)
	return p.table
}

// Inputs returns the input vector of a Lookup expression.  The slice must not
// be mutated.
func (p *Expr) Inputs() []*Expr {
	p.require(Lookup)
	return p.inputs
}

// OutputOffset returns the selected output coordinate of a Lookup expression.
// Offsets at or beyond the table's output width are legal and read as
// constant false.
func (p *Expr) OutputOffset() uint {
	p.require(Lookup)
	return p.offset
}

// Operand returns the child of a Not expression.
func (p *Expr) Operand() *Expr {
	p.require(Not)
	return p.left
}

// Left returns the first operand of a binary expression.
func (p *Expr) Left() *Expr {
	p.requireBinary()
	return p.left
}

// Right returns the second operand of a binary expression.
func (p *Expr) Right() *Expr {
	p.requireBinary()
	return p.right
}

func (p *Expr) require(kind Kind) {
	if p.kind != kind {
		panic(fmt.Sprintf("expression kind %d accessed as %d", p.kind, kind))
	}
}

func (p *Expr) requireBinary() {
	if p.kind != And && p.kind != Or && p.kind != Xor {
		panic(fmt.Sprintf("expression kind %d accessed as binary", p.kind))
	}
}

// Equals implements structural equality against another expression.  Children
// are compared by identity, which coincides with structural equality once
// they are interned.
func (p *Expr) Equals(other *Expr) bool {
	if p.kind != other.kind {
		return false
	}
	//
	switch p.kind {
	case Constant:
		return p.value == other.value
	case Read:
		return p.target == other.target && p.offset == other.offset
	case Lookup:
		if p.table != other.table || p.offset != other.offset ||
			len(p.inputs) != len(other.inputs) {
			return false
		}
		//
		for i := range p.inputs {
			if p.inputs[i] != other.inputs[i] {
				return false
			}
		}
		//
		return true
	case Not:
		return p.left == other.left
	default:
		return p.left == other.left && p.right == other.right
	}
}

// Hash implements structural hashing, consistent with Equals.
func (p *Expr) Hash() uint64 {
	code := hash.Mix(hash.Seed(), uint64(p.kind))
	//
	switch p.kind {
	case Constant:
		if p.value {
			code = hash.Mix(code, 1)
		}
	case Read:
		code = hash.Mix(code, p.target.id)
		code = hash.Mix(code, uint64(p.offset))
	case Lookup:
		code = hash.Mix(code, p.table.id)
		//
		for _, input := range p.inputs {
			code = hash.Mix(code, input.id)
		}
		//
		code = hash.Mix(code, uint64(p.offset))
	case Not:
		code = hash.Mix(code, p.left.id)
	default:
		code = hash.Mix(code, p.left.id)
		code = hash.Mix(code, p.right.id)
	}
	//
	return code
}

func (p *Expr) String() string {
	switch p.kind {
	case Constant:
		if p.value {
			return "1"
		}
		//
		return "0"
	case Read:
		return fmt.Sprintf("%s[%d]", p.target.name, p.offset)
	case Lookup:
		var builder strings.Builder
		//
		builder.WriteString(p.table.name)
		builder.WriteString("(")
		//
		for i, input := range p.inputs {
			if i != 0 {
				builder.WriteString(",")
			}

			builder.WriteString(input.String())
		}
		//
		fmt.Fprintf(&builder, ")[%d]", p.offset)
		//
		return builder.String()
	case Not:
		return "!" + p.left.String()
	default:
		var op string
		//
		switch p.kind {
		case And:
			op = " & "
		case Or:
			op = " | "
		default:
			op = " ^ "
		}
		//
		return "(" + p.left.String() + op + p.right.String() + ")"
	}
}
