/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout places annotation labels on the image border and orders
// annotations around it.
package layout

import (
	"fmt"

	"annotator/internal/domain"
	"annotator/internal/vector"
)

// Reference returns the point an annotation's label logically attaches to: the
// connector if present, otherwise the centroid of a line's endpoints or the tip
// of a brace.
func Reference(a domain.Annotation) (vector.Vec, error) {
	m := a.Base()
	if m.Connector != nil {
		return m.Connector.Vec(), nil
	}
	switch v := a.(type) {
	case domain.Line:
		if len(v.Endpoints) == 0 {
			return vector.Vec{}, fmt.Errorf("annotation %d: %w", m.ID, domain.ErrNoEndpoints)
		}
		pts := make([]vector.Vec, len(v.Endpoints))
		for i, n := range v.Endpoints {
			pts[i] = n.Vec()
		}
		return vector.Centroid(pts)
	case domain.Brace:
		g, err := vector.BuildBrace(v.A.Vec(), v.B.Vec(), nil, m.Side)
		if err != nil {
			return vector.Vec{}, fmt.Errorf("annotation %d: %w", m.ID, err)
		}
		return g.Tip, nil
	}
	return vector.Vec{}, fmt.Errorf("%w: %T", domain.ErrInvalidKind, a)
}

// Project moves p onto the image border on side o.
func Project(p vector.Vec, o vector.Orientation, width, height float64) (vector.Vec, error) {
	switch o {
	case vector.Top:
		return vector.Vec{X: p.X, Y: 0}, nil
	case vector.Bottom:
		return vector.Vec{X: p.X, Y: height}, nil
	case vector.Left:
		return vector.Vec{X: 0, Y: p.Y}, nil
	case vector.Right:
		return vector.Vec{X: width, Y: p.Y}, nil
	}
	return vector.Vec{}, fmt.Errorf("%w: %q", vector.ErrInvalidOrientation, string(o))
}

// ResolveLabelAnchor returns where the label of a sits on the image border.
func ResolveLabelAnchor(a domain.Annotation, width, height float64) (vector.Vec, error) {
	ref, err := Reference(a)
	if err != nil {
		return vector.Vec{}, err
	}
	return Project(ref, a.Base().Side, width, height)
}
