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
	"fmt"
)

// ErrInvalidOrientation is wrapped by every operation that receives a side outside
// the closed set below.
var ErrInvalidOrientation = errors.New("invalid orientation")

// Orientation names a side of the image (or of a brace) that a label points towards.
type Orientation string

const (
	Top    Orientation = "top"
	Right  Orientation = "right"
	Bottom Orientation = "bottom"
	Left   Orientation = "left"
)

// Orientations lists all sides in clockwise order starting at the top.
// The order doubles as the primary sort key of annotations.
var Orientations = []Orientation{Top, Right, Bottom, Left}

// ParseOrientation accepts exactly the four lower-case side names.
func ParseOrientation(s string) (Orientation, error) {
	o := Orientation(s)
	if !o.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
	}
	return o, nil
}

func (o Orientation) Valid() bool {
	switch o {
	case Top, Right, Bottom, Left:
		return true
	}
	return false
}

func (o Orientation) String() string { return string(o) }

func invalid(o Orientation) error { return fmt.Errorf("%w: %q", ErrInvalidOrientation, string(o)) }

// Invert returns the opposite side.
func (o Orientation) Invert() (Orientation, error) {
	switch o {
	case Top:
		return Bottom, nil
	case Bottom:
		return Top, nil
	case Left:
		return Right, nil
	case Right:
		return Left, nil
	}
	return "", invalid(o)
}

// Angle is the default marker rotation for a label on side o, in degrees.
// It matches AngleBetween for a direction pointing from that edge into the image.
func (o Orientation) Angle() (float64, error) {
	switch o {
	case Top:
		return 180, nil
	case Right:
		return 270, nil
	case Bottom:
		return 0, nil
	case Left:
		return 90, nil
	}
	return 0, invalid(o)
}

// Rank is the position of o in Orientations.
func (o Orientation) Rank() (int, error) {
	for i, c := range Orientations {
		if c == o {
			return i, nil
		}
	}
	return 0, invalid(o)
}
