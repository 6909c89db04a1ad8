/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Annotation data model. An annotation is either a Line (one or more endpoints
// fanning out from the label) or a Brace (exactly two endpoints spanned by a
// curly bracket). Both carry the same Meta.

import (
	"fmt"
	"strconv"

	"annotator/internal/vector"
)

// Node is a user-placed anchor point in image pixel space.
type Node struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (n Node) Vec() vector.Vec { return vector.Vec{X: n.X, Y: n.Y} }

type Kind string

const (
	KindLine  Kind = "line"
	KindBrace Kind = "brace"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLine, KindBrace:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Meta holds the fields shared by every annotation variant.
type Meta struct {
	ID        int64              `json:"id"`
	UID       string             `json:"uid"`
	Label     string             `json:"label"`
	Side      vector.Orientation `json:"labelPosition"`
	Connector *Node              `json:"connectionNode,omitempty"`
	Permanent bool               `json:"permanent"`
	Tip       vector.TipStyle    `json:"tip"`
}

// DisplayLabel is the label text, or a placeholder derived from the id.
func (m Meta) DisplayLabel() string {
	if m.Label != "" {
		return m.Label
	}
	return "unnamed-" + strconv.FormatInt(m.ID, 10)
}

func (m Meta) clone() Meta {
	if m.Connector != nil {
		c := *m.Connector
		m.Connector = &c
	}
	return m
}

// Annotation is implemented by Line and Brace only.
type Annotation interface {
	Kind() Kind
	Base() Meta
	sealed()
}

type Line struct {
	Meta
	Endpoints []Node `json:"endNodes"`
}

type Brace struct {
	Meta
	A Node `json:"nodeA"`
	B Node `json:"nodeB"`
}

func (Line) Kind() Kind    { return KindLine }
func (l Line) Base() Meta  { return l.Meta }
func (Line) sealed()       {}
func (Brace) Kind() Kind   { return KindBrace }
func (b Brace) Base() Meta { return b.Meta }
func (Brace) sealed()      {}

// NewBrace builds a brace from an endpoint list, which must have length two.
func NewBrace(m Meta, endpoints []Node) (Brace, error) {
	if len(endpoints) != 2 {
		return Brace{}, fmt.Errorf("%w: got %d", ErrMalformedBrace, len(endpoints))
	}
	return Brace{Meta: m, A: endpoints[0], B: endpoints[1]}, nil
}

// Endpoints returns a fresh slice with the endpoints of a in order.
func Endpoints(a Annotation) []Node {
	switch v := a.(type) {
	case Line:
		return append([]Node(nil), v.Endpoints...)
	case Brace:
		return []Node{v.A, v.B}
	}
	panic(fmt.Sprintf("domain: unknown annotation %T", a))
}

// Nodes returns the endpoints followed by the connector, if any.
func Nodes(a Annotation) []Node {
	out := Endpoints(a)
	if c := a.Base().Connector; c != nil {
		out = append(out, *c)
	}
	return out
}

// Clone returns a deep copy so the result can be edited without aliasing a.
func Clone(a Annotation) Annotation {
	switch v := a.(type) {
	case Line:
		v.Meta = v.Meta.clone()
		v.Endpoints = append([]Node(nil), v.Endpoints...)
		return v
	case Brace:
		v.Meta = v.Meta.clone()
		return v
	}
	panic(fmt.Sprintf("domain: unknown annotation %T", a))
}

// WithMeta replaces the shared fields of a and keeps its geometry.
func WithMeta(a Annotation, m Meta) Annotation {
	m = m.clone()
	switch v := Clone(a).(type) {
	case Line:
		v.Meta = m
		return v
	case Brace:
		v.Meta = m
		return v
	}
	panic(fmt.Sprintf("domain: unknown annotation %T", a))
}

// Validate checks the invariants of a: known side and tip style, one or more
// endpoints for a line.
func Validate(a Annotation) error {
	m := a.Base()
	if !m.Side.Valid() {
		return fmt.Errorf("annotation %d: %w: %q", m.ID, vector.ErrInvalidOrientation, string(m.Side))
	}
	if _, err := m.Tip.Size(1); err != nil {
		return fmt.Errorf("annotation %d: %w", m.ID, err)
	}
	switch v := a.(type) {
	case Line:
		if len(v.Endpoints) == 0 {
			return fmt.Errorf("annotation %d: %w", m.ID, ErrNoEndpoints)
		}
	case Brace:
	default:
		return fmt.Errorf("%w: %T", ErrInvalidKind, a)
	}
	return nil
}

// ToBrace converts a line with exactly two endpoints into a brace. A brace is
// returned unchanged.
func ToBrace(a Annotation) (Brace, error) {
	switch v := a.(type) {
	case Line:
		return NewBrace(v.Meta.clone(), v.Endpoints)
	case Brace:
		return Clone(v).(Brace), nil
	}
	return Brace{}, fmt.Errorf("%w: %T", ErrInvalidKind, a)
}

// ToLine converts a into a line keeping its endpoints and connector.
func ToLine(a Annotation) Line {
	switch v := a.(type) {
	case Line:
		return Clone(v).(Line)
	case Brace:
		return Line{Meta: v.Meta.clone(), Endpoints: []Node{v.A, v.B}}
	}
	panic(fmt.Sprintf("domain: unknown annotation %T", a))
}

// Convert switches a to kind k.
func Convert(a Annotation, k Kind) (Annotation, error) {
	switch k {
	case KindLine:
		return ToLine(a), nil
	case KindBrace:
		return ToBrace(a)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
}

// UpdateNode replaces the node with n.ID, wherever it sits in a.
func UpdateNode(a Annotation, n Node) (Annotation, error) {
	out := Clone(a)
	m := out.Base()
	if m.Connector != nil && m.Connector.ID == n.ID {
		c := n
		m.Connector = &c
		return WithMeta(out, m), nil
	}
	switch v := out.(type) {
	case Line:
		for i := range v.Endpoints {
			if v.Endpoints[i].ID == n.ID {
				v.Endpoints[i] = n
				return v, nil
			}
		}
	case Brace:
		if v.A.ID == n.ID {
			v.A = n
			return v, nil
		}
		if v.B.ID == n.ID {
			v.B = n
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %d in annotation %d", ErrNodeNotFound, n.ID, m.ID)
}

// RemoveNode deletes node id from a. Removing the connector clears it; removing
// a brace endpoint turns the brace into a line with the other endpoint. A line
// never loses its last endpoint: that returns ErrNoEndpoints and a is unchanged.
func RemoveNode(a Annotation, id int64) (Annotation, error) {
	m := a.Base()
	if m.Connector != nil && m.Connector.ID == id {
		m.Connector = nil
		return WithMeta(a, m), nil
	}
	switch v := a.(type) {
	case Line:
		kept := make([]Node, 0, len(v.Endpoints))
		for _, n := range v.Endpoints {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(v.Endpoints) {
			break
		}
		if len(kept) == 0 {
			return nil, fmt.Errorf("annotation %d: removing node %d: %w", m.ID, id, ErrNoEndpoints)
		}
		return Line{Meta: m.clone(), Endpoints: kept}, nil
	case Brace:
		switch id {
		case v.A.ID:
			return Line{Meta: m.clone(), Endpoints: []Node{v.B}}, nil
		case v.B.ID:
			return Line{Meta: m.clone(), Endpoints: []Node{v.A}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %d in annotation %d", ErrNodeNotFound, id, m.ID)
}
