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
package sat

import (
	"bytes"
	"math/bits"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Model_Basics(t *testing.T) {
	model := NewModel()
	//
	a := model.CreateVariable("a")
	b := model.CreateVariable("b")
	//
	require.Equal(t, Variable(1), a)
	require.Equal(t, Variable(2), b)
	require.Equal(t, uint(2), model.NumVariables())
	require.Equal(t, Literal(-1), a.Neg())
	require.Equal(t, a, a.Neg().Variable())
	//
	vars := model.CreateVariables(3, "x")
	require.Equal(t, "x_0", model.VariableName(vars[0]))
	require.Equal(t, "x_2", model.VariableName(vars[2]))
}

func Test_Model_XorClause(t *testing.T) {
	for n := 1; n <= 4; n++ {
		model := NewModel()
		inputs := model.CreateVariables(uint(n), "x")
		result := model.CreateVariable("r")
		model.AddXorClause(inputs, result)
		// The CNF is satisfied exactly when the XOR of the inputs equals the
		// result.
		for assignment := uint(0); assignment < 1<<(n+1); assignment++ {
			expected := bits.OnesCount(assignment&((1<<n)-1))%2 == int(assignment>>n&1)
			require.Equal(t, expected, evaluateClauses(model, assignment),
				"n=%d assignment=%b", n, assignment)
		}
	}
}

func Test_Model_AndOrClauses(t *testing.T) {
	for n := 2; n <= 4; n++ {
		and := NewModel()
		andResult := and.CreateVariables(uint(n), "x")
		r := and.CreateVariable("r")
		and.AddAndClause(andResult, r)
		//
		or := NewModel()
		orInputs := or.CreateVariables(uint(n), "x")
		s := or.CreateVariable("r")
		or.AddOrClause(orInputs, s)
		//
		for assignment := uint(0); assignment < 1<<(n+1); assignment++ {
			inputs := assignment & ((1 << n) - 1)
			result := assignment>>n&1 == 1
			//
			allSet := inputs == (1<<n)-1
			require.Equal(t, allSet == result, evaluateClauses(and, assignment))
			//
			anySet := inputs != 0
			require.Equal(t, anySet == result, evaluateClauses(or, assignment))
		}
	}
}

func Test_Model_EquivalentClause(t *testing.T) {
	model := NewModel()
	vars := model.CreateVariables(3, "x")
	model.AddEquivalentClause(vars)
	//
	for assignment := uint(0); assignment < 8; assignment++ {
		expected := assignment == 0 || assignment == 7
		require.Equal(t, expected, evaluateClauses(model, assignment))
	}
}

func Test_Model_SequentialCounter(t *testing.T) {
	// The Sinz clauses accept exactly the assignments of Hamming weight at
	// most k, for some assignment of the auxiliary counter variables.
	for _, k := range []int{1, 2, 3} {
		model := NewModel()
		xs := model.CreateVariables(4, "x")
		require.NoError(t, model.AddSequentialCounterLessEqual(xs, k))
		//
		accepted := 0
		//
		for assignment := uint(0); assignment < 16; assignment++ {
			fixed := map[Variable]bool{}
			for i, x := range xs {
				fixed[x] = assignment&(1<<i) != 0
			}
			//
			ok := satisfiable(model, fixed)
			require.Equal(t, bits.OnesCount(assignment) <= k, ok,
				"k=%d assignment=%b", k, assignment)
			//
			if ok {
				accepted++
			}
		}
		// For k=2 this is the 11 of the 16 assignments with weight <= 2.
		if k == 2 {
			require.Equal(t, 11, accepted)
		}
	}
}

func Test_Model_SequentialCounterRejects(t *testing.T) {
	model := NewModel()
	xs := model.CreateVariables(4, "x")
	//
	require.Error(t, model.AddSequentialCounterLessEqual(xs, 0))
	require.Error(t, model.AddSequentialCounterLessEqual(xs[:1], 2))
}

func Test_Model_DIMACS(t *testing.T) {
	model := NewModel()
	a := model.CreateVariable("a")
	b := model.CreateVariable("b")
	model.AddClause(a.Pos(), b.Neg())
	model.AddClause(b.Pos())
	//
	var buffer bytes.Buffer
	require.NoError(t, model.WriteDIMACS(&buffer))
	//
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Equal(t, "p cnf 2 2", lines[0])
	require.Equal(t, "1 -2 0", lines[1])
	require.Equal(t, "2 0", lines[2])
}

// ===================================================================
// Test Helpers
// ===================================================================

// evaluateClauses checks every clause under a dense assignment where bit i-1
// gives variable i.
func evaluateClauses(model *Model, assignment uint) bool {
	for _, clause := range model.Clauses() {
		satisfied := false
		//
		for _, lit := range clause {
			value := assignment&(1<<(uint(lit.Variable())-1)) != 0
			//
			if value == (lit > 0) {
				satisfied = true
				break
			}
		}
		//
		if !satisfied {
			return false
		}
	}
	//
	return true
}

// satisfiable reports whether some assignment extending the fixed one
// satisfies the model, enumerating the free variables exhaustively.
func satisfiable(model *Model, fixed map[Variable]bool) bool {
	var free []Variable
	//
	for v := Variable(1); v <= Variable(model.NumVariables()); v++ {
		if _, ok := fixed[v]; !ok {
			free = append(free, v)
		}
	}
	//
	for candidate := uint(0); candidate < 1<<len(free); candidate++ {
		assignment := uint(0)
		//
		for v, value := range fixed {
			if value {
				assignment |= 1 << (uint(v) - 1)
			}
		}
		//
		for i, v := range free {
			if candidate&(1<<i) != 0 {
				assignment |= 1 << (uint(v) - 1)
			}
		}
		//
		if evaluateClauses(model, assignment) {
			return true
		}
	}
	//
	return false
}
