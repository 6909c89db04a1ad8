/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"

	"annotator/internal/vector"
)

// Align is the horizontal text alignment relative to the block origin, named
// after the SVG text-anchor values.
type Align string

const (
	AlignStart  Align = "start"
	AlignMiddle Align = "middle"
	AlignEnd    Align = "end"
)

// Baseline is the vertical alignment of each line, named after the SVG
// dominant-baseline values.
type Baseline string

const (
	BaselineAlphabetic Baseline = "alphabetic"
	BaselineMiddle     Baseline = "middle"
	BaselineHanging    Baseline = "hanging"
)

// LabelLayout positions a wrapped label. Line i is drawn at
// Origin + (0, i*LineHeight).
type LabelLayout struct {
	Origin     vector.Vec
	Align      Align
	Baseline   Baseline
	LineHeight float64
	FontSize   float64
	Lines      []string
}

// LayoutLabel places lines next to anchor so the block grows away from the image
// edge o. Empty lines are kept as a single space so they still take up height.
func LayoutLabel(lines []string, anchor vector.Vec, o vector.Orientation, fontSize float64) (LabelLayout, error) {
	pad := Padding(fontSize)
	n := float64(len(lines))
	if n == 0 {
		n = 1
	}
	span := (n - 1) * fontSize

	l := LabelLayout{LineHeight: fontSize, FontSize: fontSize}
	switch o {
	case vector.Top:
		l.Origin = vector.Vec{X: anchor.X, Y: anchor.Y - span - pad}
		l.Align, l.Baseline = AlignMiddle, BaselineAlphabetic
	case vector.Right:
		l.Origin = vector.Vec{X: anchor.X + pad, Y: anchor.Y - span/2}
		l.Align, l.Baseline = AlignStart, BaselineMiddle
	case vector.Bottom:
		l.Origin = vector.Vec{X: anchor.X, Y: anchor.Y + pad}
		l.Align, l.Baseline = AlignMiddle, BaselineHanging
	case vector.Left:
		l.Origin = vector.Vec{X: anchor.X - pad, Y: anchor.Y - span/2}
		l.Align, l.Baseline = AlignEnd, BaselineMiddle
	default:
		return LabelLayout{}, fmt.Errorf("%w: %q", vector.ErrInvalidOrientation, string(o))
	}

	l.Lines = make([]string, len(lines))
	for i, s := range lines {
		if s == "" {
			s = " "
		}
		l.Lines[i] = s
	}
	if len(l.Lines) == 0 {
		l.Lines = []string{" "}
	}
	return l, nil
}

// LinePos returns the origin of line i.
func (l LabelLayout) LinePos(i int) vector.Vec {
	return vector.Vec{X: l.Origin.X, Y: l.Origin.Y + float64(i)*l.LineHeight}
}
