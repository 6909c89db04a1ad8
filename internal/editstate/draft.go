/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editstate

import (
	"fmt"
	"math"

	"annotator/internal/domain"
	"annotator/internal/vector"
)

// Draft collects points placed on an image before they become an annotation.
// Points are rounded to whole pixels like clicks on the canvas.
type Draft struct {
	Points    []vector.Vec
	Connector *vector.Vec
}

// Place adds an endpoint.
func (d Draft) Place(p vector.Vec) Draft {
	d.Points = append(append([]vector.Vec(nil), d.Points...), round(p))
	return d
}

// PlaceConnector sets the connector. A previous connector becomes an endpoint.
func (d Draft) PlaceConnector(p vector.Vec) Draft {
	if d.Connector != nil {
		d = d.Place(*d.Connector)
	}
	c := round(p)
	d.Connector = &c
	return d
}

func (d Draft) Empty() bool { return len(d.Points) == 0 }

// Commit turns the draft into a new line annotation labelled on side o. Node and
// annotation ids are left zero for the store to assign.
func (d Draft) Commit(o vector.Orientation, tip vector.TipStyle) (domain.Line, error) {
	if d.Empty() {
		return domain.Line{}, fmt.Errorf("draft: %w", domain.ErrNoEndpoints)
	}
	if !o.Valid() {
		return domain.Line{}, fmt.Errorf("draft: %w: %q", vector.ErrInvalidOrientation, string(o))
	}
	if tip == "" {
		tip = vector.TipCircle
	}
	l := domain.Line{Meta: domain.Meta{Side: o, Tip: tip}}
	for _, p := range d.Points {
		l.Endpoints = append(l.Endpoints, domain.Node{X: p.X, Y: p.Y})
	}
	if d.Connector != nil {
		l.Connector = &domain.Node{X: d.Connector.X, Y: d.Connector.Y}
	}
	return l, domain.Validate(l)
}

func round(p vector.Vec) vector.Vec { return vector.Vec{X: math.Round(p.X), Y: math.Round(p.Y)} }
