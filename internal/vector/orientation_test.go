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
	"testing"
)

func TestOrientation_InvertTwiceIsIdentity(t *testing.T) {
	for _, o := range Orientations {
		inv, err := o.Invert()
		if err != nil {
			t.Fatalf("invert %s: %v", o, err)
		}
		if inv == o {
			t.Fatalf("invert %s returned itself", o)
		}
		back, _ := inv.Invert()
		if back != o {
			t.Fatalf("invert(invert(%s)) = %s", o, back)
		}
	}
}

func TestOrientation_AngleMatchesInwardDirection(t *testing.T) {
	// a label on side o points into the image
	inward := map[Orientation]Vec{Top: {0, 1}, Right: {-1, 0}, Bottom: {0, -1}, Left: {1, 0}}
	for o, dir := range inward {
		a, err := o.Angle()
		if err != nil {
			t.Fatalf("angle %s: %v", o, err)
		}
		if want := AngleBetween(Vec{}, dir); !almostEq(a, want, 1e-9) {
			t.Fatalf("%s: angle %v, direction angle %v", o, a, want)
		}
	}
}

func TestOrientation_InvalidValuesFailFast(t *testing.T) {
	bad := Orientation("diagonal")
	if _, err := bad.Invert(); !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation from Invert, got %v", err)
	}
	if _, err := bad.Angle(); !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation from Angle, got %v", err)
	}
	if _, err := bad.Rank(); !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation from Rank, got %v", err)
	}
	if _, err := ParseOrientation("Top"); !errors.Is(err, ErrInvalidOrientation) {
		t.Fatalf("parse must be case-sensitive, got %v", err)
	}
	if o, err := ParseOrientation("left"); err != nil || o != Left {
		t.Fatalf("parse left: %v %v", o, err)
	}
}
