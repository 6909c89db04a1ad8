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
	"math"
)

// ErrInvalidTipStyle is wrapped when a tip style outside {circle, arrow} is used.
var ErrInvalidTipStyle = errors.New("invalid tip style")

// TipStyle is the glyph drawn where a line connector meets an endpoint.
type TipStyle string

const (
	TipCircle TipStyle = "circle"
	TipArrow  TipStyle = "arrow"
)

func ParseTipStyle(s string) (TipStyle, error) {
	t := TipStyle(s)
	if _, err := t.Size(1); err != nil {
		return "", err
	}
	return t, nil
}

func (t TipStyle) String() string { return string(t) }

// Size is the visual length of the tip glyph for a stroke width.
func (t TipStyle) Size(strokeWidth float64) (float64, error) {
	switch t {
	case TipCircle:
		return 2 * strokeWidth, nil
	case TipArrow:
		return 3 * strokeWidth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTipStyle, string(t))
}

// LineGeometry is a star of straight legs fanning out from Hub to every endpoint.
type LineGeometry struct {
	Hub  Vec // connector if present, otherwise the label anchor
	Path Path
	Tips []Marker // one per endpoint, same order
}

// BuildLine connects label (through connector, if any) to every endpoint.
// Arrow legs stop half an arrow short of the endpoint so the stroke does not
// poke through the arrow glyph drawn there, but never past the hub.
func BuildLine(endpoints []Vec, connector *Vec, label Vec, tip TipStyle, strokeWidth float64) (LineGeometry, error) {
	if len(endpoints) == 0 {
		return LineGeometry{}, fmt.Errorf("line connector: %w", ErrEmptyPointSet)
	}
	size, err := tip.Size(strokeWidth)
	if err != nil {
		return LineGeometry{}, err
	}

	g := LineGeometry{Hub: label, Tips: make([]Marker, 0, len(endpoints))}
	p := &g.Path
	p.MoveTo(label)
	if connector != nil {
		g.Hub = *connector
		p.LineTo(g.Hub)
		p.MoveTo(g.Hub)
	}

	for i, node := range endpoints {
		switch tip {
		case TipCircle:
			p.LineTo(node)
			g.Tips = append(g.Tips, Marker{Shape: MarkerCircle, At: node, Size: size})
		case TipArrow:
			back, err := Normalize(Sub(g.Hub, node))
			if err != nil {
				return LineGeometry{}, fmt.Errorf("endpoint %d coincides with its anchor: %w", i, err)
			}
			p.LineTo(Add(node, back.Scale(math.Min(size/2, Length(Sub(g.Hub, node))))))
			g.Tips = append(g.Tips, Marker{Shape: MarkerArrow, At: node, Size: size, Rotation: AngleBetween(g.Hub, node)})
		}
		if i != len(endpoints)-1 {
			p.MoveTo(g.Hub)
		}
	}
	return g, nil
}

// EndMarker is the triangle drawn at the label anchor. It points at the
// connector when there is one, otherwise into the image from side o.
func EndMarker(label Vec, connector *Vec, o Orientation, size float64) (Marker, error) {
	m := Marker{Shape: MarkerTriangle, At: label, Size: size}
	if connector != nil {
		m.Rotation = AngleBetween(label, *connector)
		return m, nil
	}
	deg, err := o.Angle()
	if err != nil {
		return Marker{}, err
	}
	m.Rotation = deg
	return m, nil
}
