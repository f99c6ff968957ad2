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

// Package dp implements the bit-based division property backend: trail
// enumeration over S-boxes, reduction of cutting inequalities, and the MILP
// model with copy-propagating deferred variables.
package dp

import (
	"fmt"

	"github.com/consensys/go-trail/pkg/logic"
)

// Vertex is an integer-coordinate point of a polyhedron.  Division-property
// trails are 0/1 vertices in n+m dimensions.
type Vertex []int

// VertexFromBits decodes the low bitCount bits of a value into a 0/1 vertex,
// least significant bit first.
func VertexFromBits(value uint64, bitCount uint) Vertex {
	vertex := make(Vertex, bitCount)
	//
	for i := uint(0); i < bitCount; i++ {
		vertex[i] = int((value >> i) & 1)
	}
	//
	return vertex
}

// Dimension returns the coordinate count.
func (p Vertex) Dimension() uint {
	return uint(len(p))
}

// bitKey packs a 0/1 vertex into a bitmask, failing on other coordinates.
func (p Vertex) bitKey() (uint64, error) {
	if len(p) > 64 {
		return 0, fmt.Errorf("vertex dimension %d exceeds 64", len(p))
	}
	//
	var key uint64
	//
	for i, coordinate := range p {
		switch coordinate {
		case 0:
		case 1:
			key |= 1 << uint(i)
		default:
			return 0, fmt.Errorf("vertex coordinate %d is not binary", coordinate)
		}
	}
	//
	return key, nil
}

// Inequality is a closed halfspace c.x + c0 >= 0 with integer coefficients.
type Inequality struct {
	Coefficients []int
	Constant     int
}

// Dimension returns the coefficient count.
func (p Inequality) Dimension() uint {
	return uint(len(p.Coefficients))
}

// Eval computes c.x + c0 at the given point.
func (p Inequality) Eval(point Vertex) (int, error) {
	if point.Dimension() != p.Dimension() {
		return 0, fmt.Errorf("point dimension %d does not match inequality dimension %d",
			point.Dimension(), p.Dimension())
	}
	//
	sum := p.Constant
	//
	for i, coefficient := range p.Coefficients {
		sum += coefficient * point[i]
	}
	//
	return sum, nil
}

func (p Inequality) String() string {
	s := ""
	//
	for i, c := range p.Coefficients {
		if i != 0 {
			s += " + "
		}
		//
		s += fmt.Sprintf("%d*x%d", c, i)
	}
	//
	return fmt.Sprintf("%s + %d >= 0", s, p.Constant)
}

// InequalitySource produces, for a set of binary points, integer
// inequalities whose feasible region restricted to {0,1}^d is exactly that
// set.  An exact convex-hull (vertex-to-halfspace) converter satisfies this
// contract; so does the built-in CutComplement.
type InequalitySource func(points []Vertex) ([]Inequality, error)

// CutComplement is the built-in inequality source.  It covers the complement
// of the point set with cubes via two-level minimisation, and cuts each cube
// with one inequality: for a cube binding positions F to bits b, the
// inequality
//
//	sum_{i in F, b_i = 0} x_i  +  sum_{i in F, b_i = 1} (1 - x_i)  >=  1
//
// is violated exactly by the binary points inside the cube.  Over binary
// points this is equivalent to the convex hull's facet description, if
// generally weaker geometrically.
func CutComplement(points []Vertex) ([]Inequality, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("at least one point is required")
	}
	//
	dimension := points[0].Dimension()
	//
	on, err := logic.NewCover(dimension)
	if err != nil {
		return nil, err
	}
	//
	for _, point := range points {
		key, err := point.bitKey()
		if err != nil {
			return nil, err
		}

		if point.Dimension() != dimension {
			return nil, fmt.Errorf("points of mixed dimension %d and %d",
				dimension, point.Dimension())
		}
		//
		on.Add(logic.Minterm(key, dimension))
	}
	//
	cover, err := logic.MinimiseComplement(on)
	if err != nil {
		return nil, err
	}
	//
	inequalities := make([]Inequality, len(cover.Cubes))
	//
	for i, cube := range cover.Cubes {
		inequality := Inequality{Coefficients: make([]int, dimension), Constant: -1}
		//
		for j := uint(0); j < dimension; j++ {
			value, bound := cube.Bound(j)
			//
			switch {
			case !bound:
			case value == 1:
				inequality.Coefficients[j] = -1
				inequality.Constant++
			default:
				inequality.Coefficients[j] = 1
			}
		}
		//
		inequalities[i] = inequality
	}
	//
	return inequalities, nil
}
