/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "fmt"

// Brace dimensions in pixels.
const (
	BraceSize    = 40.0
	braceDash    = BraceSize / 6
	braceBody    = 2 * BraceSize / 3
	braceStretch = 0.5
)

// BraceGeometry holds the construction points of a curly brace spanning two
// endpoints and bulging towards a side. Path already contains the two curve
// halves, the stem from C to Tip and, if given, the leg to the connector.
type BraceGeometry struct {
	Start, End Vec // canonicalized endpoints
	S, E       Vec // end of the short dash at Start / End
	Q1, Q2     Vec // first half: control and end of the quadratic curve
	Q3, Q4     Vec // second half
	C          Vec // apex where both halves meet
	Tip        Vec
	Path       Path
}

// BuildBrace computes the brace between a and b pointing towards o.
// The result does not depend on the order of a and b.
func BuildBrace(a, b Vec, connector *Vec, o Orientation) (BraceGeometry, error) {
	start, end, err := braceEnds(a, b, o)
	if err != nil {
		return BraceGeometry{}, err
	}
	axis := Sub(start, end)
	d, err := Normalize(axis)
	if err != nil {
		return BraceGeometry{}, fmt.Errorf("brace endpoints %v and %v coincide: %w", a, b, err)
	}
	length := Length(axis)
	// normal towards the label side; the canonical winding guarantees the sign
	n := Vec{X: d.Y, Y: -d.X}

	along := func(f float64) Vec { return Sub(start, d.Scale(f*length)) }

	g := BraceGeometry{Start: start, End: end}
	// hooks and middle dash point towards the label, not back at the endpoints
	g.S = Add(start, n.Scale(braceDash))
	g.E = Add(end, n.Scale(braceDash))
	g.C = Add(along(0.5), n.Scale(braceBody))
	g.Tip = Add(g.C, n.Scale(braceDash))
	g.Q1 = Add(start, n.Scale(braceStretch*braceBody))
	g.Q2 = Add(along(0.25), n.Scale((1-braceStretch)*braceBody))
	g.Q3 = Add(end, n.Scale(braceStretch*braceBody))
	g.Q4 = Add(along(0.75), n.Scale((1-braceStretch)*braceBody))

	p := &g.Path
	p.MoveTo(start)
	p.LineTo(g.S)
	p.QuadTo(g.Q1, g.Q2)
	p.SmoothQuadTo(g.C)
	p.MoveTo(end)
	p.LineTo(g.E)
	p.QuadTo(g.Q3, g.Q4)
	p.SmoothQuadTo(g.C)
	p.MoveTo(g.C)
	p.LineTo(g.Tip)
	if connector != nil {
		p.LineTo(*connector)
	}
	return g, nil
}

// ToLabel returns the full brace path ending at the label anchor.
func (g BraceGeometry) ToLabel(label Vec) Path {
	out := Path{Segments: make([]Segment, len(g.Path.Segments), len(g.Path.Segments)+1)}
	copy(out.Segments, g.Path.Segments)
	out.LineTo(label)
	return out
}

// braceEnds orders the endpoints so the winding does not depend on argument order.
func braceEnds(a, b Vec, o Orientation) (start, end Vec, err error) {
	switch o {
	case Top:
		if a.X > b.X {
			return a, b, nil
		}
		return b, a, nil
	case Right:
		if a.Y < b.Y {
			return b, a, nil
		}
		return a, b, nil
	case Bottom:
		if a.X > b.X {
			return b, a, nil
		}
		return a, b, nil
	case Left:
		if a.Y < b.Y {
			return a, b, nil
		}
		return b, a, nil
	}
	return Vec{}, Vec{}, invalid(o)
}
