/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"math"
	"testing"
)

func almostEq(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func vecEq(a, b Vec) bool { return almostEq(a.X, b.X, 1e-9) && almostEq(a.Y, b.Y, 1e-9) }

func TestCentroid_SquareAndRounding(t *testing.T) {
	c, err := Centroid([]Vec{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	if err != nil || c != (Vec{5, 5}) {
		t.Fatalf("expected (5,5), got %+v err=%v", c, err)
	}
	// half rounds up, also for negative means
	c, _ = Centroid([]Vec{{0, 0}, {1, 0}})
	if c.X != 1 {
		t.Fatalf("expected 0.5 to round to 1, got %v", c.X)
	}
	c, _ = Centroid([]Vec{{-1, 0}, {0, 0}})
	if c.X != 0 {
		t.Fatalf("expected -0.5 to round to 0, got %v", c.X)
	}
	if _, err := Centroid(nil); !errors.Is(err, ErrEmptyPointSet) {
		t.Fatalf("expected ErrEmptyPointSet, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	n, err := Normalize(Vec{3, 4})
	if err != nil || !vecEq(n, Vec{0.6, 0.8}) {
		t.Fatalf("unexpected %+v err=%v", n, err)
	}
	if _, err := Normalize(Vec{}); !errors.Is(err, ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestSubLengthOrthogonal(t *testing.T) {
	d := Sub(Vec{5, 7}, Vec{2, 3})
	if d != (Vec{3, 4}) || Length(d) != 5 {
		t.Fatalf("unexpected sub/length: %+v %v", d, Length(d))
	}
	if o := Orthogonal(Vec{1, 0}); o != (Vec{0, 1}) {
		t.Fatalf("orthogonal of (1,0) should be (0,1), got %+v", o)
	}
}

func TestRotate_ClockwiseOnScreen(t *testing.T) {
	p := Rotate(Vec{10, 0}, Vec{}, 90)
	if !almostEq(p.X, 0, 1e-9) || !almostEq(p.Y, 10, 1e-9) {
		t.Fatalf("expected (0,10), got %+v", p)
	}
	p = Rotate(Vec{12, 5}, Vec{2, 5}, 180)
	if !almostEq(p.X, -8, 1e-9) || !almostEq(p.Y, 5, 1e-9) {
		t.Fatalf("expected (-8,5), got %+v", p)
	}
}

func TestAngleBetween(t *testing.T) {
	cases := []struct {
		to   Vec
		want float64
	}{
		{Vec{0, -1}, 0},
		{Vec{1, 0}, 90},
		{Vec{0, 1}, 180},
		{Vec{-1, 0}, 270},
	}
	for _, c := range cases {
		got := AngleBetween(Vec{}, c.to)
		if !almostEq(got, c.want, 1e-9) {
			t.Fatalf("angle to %+v: want %v got %v", c.to, c.want, got)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("angle out of range: %v", got)
		}
	}
}

func TestAffine_TranslateThenRotate(t *testing.T) {
	m := Translate(10, 0).Mul(RotateRad(math.Pi / 2))
	got := m.Apply(Vec{1, 0})
	if math.Abs(got.X-10) > 1e-9 || math.Abs(got.Y-1) > 1e-9 {
		t.Fatalf("apply mismatch: %+v", got)
	}
	if FloatRound(1.23456, 3) != 1.235 || FloatRound(2.5, -1) != 2.5 {
		t.Fatalf("float round mismatch")
	}
}
