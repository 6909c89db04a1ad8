/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry in image pixel space (y grows downwards).
// All functions return fresh values and never mutate their inputs.

import (
	"errors"
	"math"
)

var (
	// ErrDegenerateVector is returned when a zero-length vector has to be normalized,
	// which happens when two anchors coincide.
	ErrDegenerateVector = errors.New("degenerate zero-length vector")

	// ErrEmptyPointSet is returned by Centroid for an empty input.
	ErrEmptyPointSet = errors.New("empty point set")
)

// Vec is a point or displacement.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Sub returns a-b.
func Sub(a, b Vec) Vec { return Vec{X: a.X - b.X, Y: a.Y - b.Y} }

// Add returns a+b.
func Add(a, b Vec) Vec { return Vec{X: a.X + b.X, Y: a.Y + b.Y} }

// Scale returns v*s.
func (v Vec) Scale(s float64) Vec { return Vec{X: v.X * s, Y: v.Y * s} }

// Length is the euclidean norm of v.
func Length(v Vec) float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Normalize returns v scaled to unit length.
func Normalize(v Vec) (Vec, error) {
	l := Length(v)
	if l == 0 || math.IsNaN(l) {
		return Vec{}, ErrDegenerateVector
	}
	return Vec{X: v.X / l, Y: v.Y / l}, nil
}

// Orthogonal rotates v by 90° counter-clockwise.
func Orthogonal(v Vec) Vec { return Vec{X: -v.Y, Y: v.X} }

// Centroid returns the mean of vs with both coordinates rounded half up.
func Centroid(vs []Vec) (Vec, error) {
	if len(vs) == 0 {
		return Vec{}, ErrEmptyPointSet
	}
	var sx, sy float64
	for _, v := range vs {
		sx += v.X
		sy += v.Y
	}
	n := float64(len(vs))
	return Vec{X: roundHalfUp(sx / n), Y: roundHalfUp(sy / n)}, nil
}

// Rotate turns p about center by deg degrees, clockwise on screen.
func Rotate(p, center Vec, deg float64) Vec {
	m := Translate(center.X, center.Y).Mul(RotateRad(deg * math.Pi / 180)).Mul(Translate(-center.X, -center.Y))
	return m.Apply(p)
}

// AngleBetween returns the direction from a to b in degrees within [0,360).
// 0° points up (towards negative y), so a shape pointing up rotated by the
// result points from a towards b.
func AngleBetween(a, b Vec) float64 {
	d := Sub(b, a)
	deg := math.Atan2(d.Y, d.X)*180/math.Pi + 90
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func roundHalfUp(v float64) float64 { return math.Floor(v + 0.5) }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Vec) Vec {
	return Vec{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func RotateRad(rad float64) Affine2D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
