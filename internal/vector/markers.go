/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

type MarkerShape uint8

const (
	MarkerCircle MarkerShape = iota
	MarkerArrow
	MarkerTriangle
)

// Marker is a filled glyph placed at a point. Rotation is in degrees, with 0
// meaning the glyph points up.
type Marker struct {
	Shape    MarkerShape
	At       Vec
	Size     float64
	Rotation float64
}

// Radius of a circle marker. Size is the diameter.
func (m Marker) Radius() float64 { return m.Size / 2 }

// Points returns the polygon outline of arrow and triangle markers.
// Circles have no polygon and return nil.
func (m Marker) Points() []Vec {
	switch m.Shape {
	case MarkerArrow:
		return ArrowPoints(m.At, m.Size, m.Rotation)
	case MarkerTriangle:
		return TrianglePoints(m.At, m.Size, m.Rotation)
	}
	return nil
}

// ArrowPoints is a notched arrow head whose tip sits exactly on at.
func ArrowPoints(at Vec, size, rotation float64) []Vec {
	pts := []Vec{
		{X: at.X - size/2, Y: at.Y + size},
		{X: at.X, Y: at.Y + 0.75*size},
		{X: at.X + size/2, Y: at.Y + size},
		at,
	}
	return rotateAll(pts, at, rotation)
}

// TrianglePoints is an equilateral triangle centred on at, circumradius size/2.
func TrianglePoints(at Vec, size, rotation float64) []Vec {
	pts := make([]Vec, 3)
	for i := range pts {
		rad := (-90 + 120*float64(i)) * math.Pi / 180
		pts[i] = Vec{X: at.X + size/2*math.Cos(rad), Y: at.Y + size/2*math.Sin(rad)}
	}
	return rotateAll(pts, at, rotation)
}

func rotateAll(pts []Vec, center Vec, deg float64) []Vec {
	if deg == 0 {
		return pts
	}
	for i, p := range pts {
		pts[i] = Rotate(p, center, deg)
	}
	return pts
}

// Outline is the halo thickness added on each side of a stroke of width w.
func Outline(w float64) float64 { return w / 2 }

// HaloWidth is the width of the background pass drawn under a stroke of width w.
func HaloWidth(w float64) float64 { return w + 2*Outline(w) }
