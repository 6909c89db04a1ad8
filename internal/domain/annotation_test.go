/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"sort"
	"testing"

	"annotator/internal/vector"
)

func testMeta() Meta {
	return Meta{ID: 7, UID: "abcdefgh", Side: vector.Top, Tip: vector.TipCircle}
}

func TestToBraceAndBackPreservesEndpoints(t *testing.T) {
	l := Line{Meta: testMeta(), Endpoints: []Node{{ID: 1, X: 10, Y: 10}, {ID: 2, X: 90, Y: 20}}}
	b, err := ToBrace(l)
	if err != nil {
		t.Fatalf("to brace: %v", err)
	}
	back := ToLine(b)
	got := back.Endpoints
	sort.Slice(got, func(i, j int) bool { return got[i].ID < got[j].ID })
	if len(got) != 2 || got[0] != l.Endpoints[0] || got[1] != l.Endpoints[1] {
		t.Fatalf("endpoint set changed: %+v", got)
	}
	if back.Meta.ID != 7 || back.Kind() != KindLine {
		t.Fatalf("meta lost in round trip: %+v", back.Meta)
	}
}

func TestToBraceRejectsWrongEndpointCount(t *testing.T) {
	l := Line{Meta: testMeta(), Endpoints: []Node{{ID: 1}, {ID: 2}, {ID: 3}}}
	if _, err := ToBrace(l); !errors.Is(err, ErrMalformedBrace) {
		t.Fatalf("expected ErrMalformedBrace, got %v", err)
	}
	if _, err := Convert(l, Kind("circle")); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestRemoveNode_BraceDegradesToLine(t *testing.T) {
	b := Brace{Meta: testMeta(), A: Node{ID: 1}, B: Node{ID: 2, X: 5}}
	a, err := RemoveNode(b, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	l, ok := a.(Line)
	if !ok || len(l.Endpoints) != 1 || l.Endpoints[0].ID != 2 {
		t.Fatalf("expected line with node 2, got %#v", a)
	}
	// the remaining endpoint is guarded
	if _, err := RemoveNode(l, 2); !errors.Is(err, ErrNoEndpoints) {
		t.Fatalf("expected ErrNoEndpoints, got %v", err)
	}
}

func TestRemoveNode_ConnectorAndUnknown(t *testing.T) {
	m := testMeta()
	m.Connector = &Node{ID: 9, X: 1, Y: 1}
	l := Line{Meta: m, Endpoints: []Node{{ID: 1}, {ID: 2}}}
	a, err := RemoveNode(l, 9)
	if err != nil || a.Base().Connector != nil {
		t.Fatalf("connector should be cleared: %+v err=%v", a, err)
	}
	if l.Meta.Connector == nil {
		t.Fatalf("input must not be modified")
	}
	if _, err := RemoveNode(l, 42); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	a, _ = RemoveNode(l, 1)
	if got := Endpoints(a); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("unexpected endpoints %+v", got)
	}
}

func TestUpdateNode_DoesNotAlias(t *testing.T) {
	m := testMeta()
	m.Connector = &Node{ID: 9}
	l := Line{Meta: m, Endpoints: []Node{{ID: 1}}}
	a, err := UpdateNode(l, Node{ID: 9, X: 50, Y: 60})
	if err != nil {
		t.Fatal(err)
	}
	if c := a.Base().Connector; c == nil || c.X != 50 {
		t.Fatalf("connector not updated: %+v", c)
	}
	if l.Connector.X != 0 {
		t.Fatalf("original connector was modified")
	}
	a, _ = UpdateNode(l, Node{ID: 1, X: 3})
	if a.(Line).Endpoints[0].X != 3 || l.Endpoints[0].X != 0 {
		t.Fatalf("endpoint update aliased the input")
	}
	if _, err := UpdateNode(Brace{Meta: m, A: Node{ID: 1}, B: Node{ID: 2}}, Node{ID: 5}); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Line{Meta: testMeta()}); !errors.Is(err, ErrNoEndpoints) {
		t.Fatalf("expected ErrNoEndpoints, got %v", err)
	}
	m := testMeta()
	m.Side = "middle"
	if err := Validate(Brace{Meta: m}); !errors.Is(err, vector.ErrInvalidOrientation) {
		t.Fatalf("expected ErrInvalidOrientation, got %v", err)
	}
	m = testMeta()
	m.Tip = "square"
	if err := Validate(Brace{Meta: m}); !errors.Is(err, vector.ErrInvalidTipStyle) {
		t.Fatalf("expected ErrInvalidTipStyle, got %v", err)
	}
}

func TestDisplayLabelAndNodes(t *testing.T) {
	m := testMeta()
	if m.DisplayLabel() != "unnamed-7" {
		t.Fatalf("unexpected placeholder %q", m.DisplayLabel())
	}
	m.Label = "Femur"
	m.Connector = &Node{ID: 3}
	b := Brace{Meta: m, A: Node{ID: 1}, B: Node{ID: 2}}
	if b.DisplayLabel() != "Femur" {
		t.Fatalf("label not used")
	}
	if ns := Nodes(b); len(ns) != 3 || ns[2].ID != 3 {
		t.Fatalf("nodes must end with connector: %+v", ns)
	}
}
