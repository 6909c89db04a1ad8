/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"strconv"
	"strings"
)

// Path commands. Only the subset needed by connectors is supported.

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	QuadTo       // quadratic bezier through Ctrl to To
	SmoothQuadTo // quadratic bezier whose control mirrors the previous one
)

func (op PathOp) String() string {
	switch op {
	case MoveTo:
		return "M"
	case LineTo:
		return "L"
	case QuadTo:
		return "Q"
	case SmoothQuadTo:
		return "T"
	}
	return "?"
}

type Segment struct {
	Op   PathOp
	Ctrl Vec // QuadTo only
	To   Vec
}

type Path struct{ Segments []Segment }

func (p *Path) MoveTo(to Vec) { p.Segments = append(p.Segments, Segment{Op: MoveTo, To: to}) }
func (p *Path) LineTo(to Vec) { p.Segments = append(p.Segments, Segment{Op: LineTo, To: to}) }
func (p *Path) QuadTo(ctrl, to Vec) {
	p.Segments = append(p.Segments, Segment{Op: QuadTo, Ctrl: ctrl, To: to})
}
func (p *Path) SmoothQuadTo(to Vec) {
	p.Segments = append(p.Segments, Segment{Op: SmoothQuadTo, To: to})
}

// Resolved returns a copy of the path where every SmoothQuadTo is replaced by an
// explicit QuadTo. The implicit control point is the reflection of the previous
// quadratic control about the current point, or the current point itself when the
// previous segment was not quadratic. Backends without a "T" command use this.
func (p Path) Resolved() Path {
	out := Path{Segments: make([]Segment, 0, len(p.Segments))}
	var cur, lastCtrl Vec
	prevQuad := false
	for _, s := range p.Segments {
		switch s.Op {
		case MoveTo, LineTo:
			out.Segments = append(out.Segments, s)
			prevQuad = false
		case QuadTo:
			out.Segments = append(out.Segments, s)
			lastCtrl = s.Ctrl
			prevQuad = true
		case SmoothQuadTo:
			ctrl := cur
			if prevQuad {
				ctrl = Vec{X: 2*cur.X - lastCtrl.X, Y: 2*cur.Y - lastCtrl.Y}
			}
			out.Segments = append(out.Segments, Segment{Op: QuadTo, Ctrl: ctrl, To: s.To})
			lastCtrl = ctrl
			prevQuad = true
		}
		cur = s.To
	}
	return out
}

// SVGData renders the path as the value of an SVG "d" attribute.
func (p Path) SVGData() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Op.String())
		b.WriteByte(' ')
		switch s.Op {
		case MoveTo, LineTo:
			b.WriteString(Num(s.To.X) + " " + Num(s.To.Y))
		case QuadTo:
			b.WriteString(Num(s.Ctrl.X) + "," + Num(s.Ctrl.Y) + " " + Num(s.To.X) + "," + Num(s.To.Y))
		case SmoothQuadTo:
			b.WriteString(Num(s.To.X) + "," + Num(s.To.Y))
		}
	}
	return b.String()
}

// Num formats a coordinate with at most three decimals for markup output.
func Num(v float64) string {
	v = FloatRound(v, 3)
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
