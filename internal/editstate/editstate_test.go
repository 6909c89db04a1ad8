/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editstate

import (
	"errors"
	"testing"

	"annotator/internal/domain"
	"annotator/internal/vector"
)

func seed() State {
	m := domain.Meta{ID: 10, Side: vector.Top, Tip: vector.TipCircle}
	brace := domain.Brace{Meta: m, A: domain.Node{ID: 1, X: 10}, B: domain.Node{ID: 2, X: 90}}
	return State{
		Images: []domain.Image{
			{ID: 1, Name: "skull", Width: 100, Height: 100, Size: domain.SizeSmall, Annotations: []domain.Annotation{brace}},
			{ID: 2, Name: "hand", Width: 50, Height: 50, Size: domain.SizeLarge},
		},
		Changes: map[int64]Change{},
	}
}

func mustReduce(t *testing.T, s State, a Action) State {
	t.Helper()
	out, err := Reduce(s, a)
	if err != nil {
		t.Fatalf("reduce %T: %v", a, err)
	}
	return out
}

func TestReduce_SelectionFlow(t *testing.T) {
	s := mustReduce(t, seed(), SetImage{ID: 1})
	s = mustReduce(t, s, SetAnnotation{ID: 10})
	s = mustReduce(t, s, SetNode{ID: 2})
	if s.SelectedNodeID != 2 {
		t.Fatalf("node not selected")
	}
	s = mustReduce(t, s, SetImage{ID: 2})
	if s.SelectedAnnotationID != 0 || s.SelectedNodeID != 0 {
		t.Fatalf("changing the image must clear annotation and node selection")
	}
	if _, err := Reduce(s, SetImage{ID: 99}); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
	if _, err := Reduce(State{}, SetAnnotation{ID: 1}); !errors.Is(err, ErrNoImageSelected) {
		t.Fatalf("expected ErrNoImageSelected, got %v", err)
	}
	if _, err := Reduce(s, SetNode{ID: 1}); !errors.Is(err, ErrNoAnnotationSelected) {
		t.Fatalf("expected ErrNoAnnotationSelected, got %v", err)
	}
}

func TestReduce_RemoveNodeDegradesBraceAndGuardsLastEndpoint(t *testing.T) {
	s := mustReduce(t, seed(), SetImage{ID: 1})
	s = mustReduce(t, s, SetAnnotation{ID: 10})
	s = mustReduce(t, s, SetNode{ID: 1})
	before := s

	s = mustReduce(t, s, RemoveNode{ID: 1})
	an, _ := s.SelectedAnnotation()
	if an.Kind() != domain.KindLine || len(domain.Endpoints(an)) != 1 {
		t.Fatalf("expected a line with one endpoint, got %#v", an)
	}
	if s.SelectedNodeID != 0 || s.Changes[1] != ChangeUpdated {
		t.Fatalf("unexpected bookkeeping: node=%d changes=%v", s.SelectedNodeID, s.Changes)
	}
	if _, err := Reduce(s, RemoveNode{ID: 2}); !errors.Is(err, domain.ErrNoEndpoints) {
		t.Fatalf("expected ErrNoEndpoints, got %v", err)
	}

	// the earlier state is unaffected
	orig, _ := before.SelectedAnnotation()
	if orig.Kind() != domain.KindBrace || len(before.Changes) != 0 {
		t.Fatalf("reducer modified its input")
	}
}

func TestReduce_AnnotationLifecycle(t *testing.T) {
	s := mustReduce(t, seed(), SetImage{ID: 2})
	l := domain.Line{Meta: domain.Meta{ID: 20, Side: vector.Left, Tip: vector.TipArrow}, Endpoints: []domain.Node{{ID: 5, X: 1, Y: 2}}}
	s = mustReduce(t, s, AddAnnotation{Annotation: l})
	if _, ok := s.Changes[2]; ok {
		t.Fatalf("adding a stored annotation does not mark the image")
	}
	l.Label = "radius"
	s = mustReduce(t, s, UpdateAnnotation{Annotation: l})
	img, _ := s.SelectedImage()
	if got, _ := img.Annotation(20); got.Base().Label != "radius" {
		t.Fatalf("label not updated")
	}
	s = mustReduce(t, s, SetAnnotation{ID: 20})
	s = mustReduce(t, s, UpdateNode{Node: domain.Node{ID: 5, X: 7, Y: 8}})
	an, _ := s.SelectedAnnotation()
	if domain.Endpoints(an)[0].X != 7 {
		t.Fatalf("node not moved")
	}
	s = mustReduce(t, s, RemoveAnnotation{ID: 20})
	if s.SelectedAnnotationID != 0 {
		t.Fatalf("removed annotation still selected")
	}
	if _, err := Reduce(s, UpdateAnnotation{Annotation: l}); !errors.Is(err, ErrAnnotationNotFound) {
		t.Fatalf("expected ErrAnnotationNotFound, got %v", err)
	}
}

func TestReduce_ImagesAndChanges(t *testing.T) {
	s := mustReduce(t, seed(), SetImage{ID: 1})
	s = mustReduce(t, s, RemoveImage{ID: 1})
	if len(s.Images) != 1 || s.SelectedImageID != 0 || s.Changes[1] != ChangeDeleted {
		t.Fatalf("unexpected state after remove: %+v", s)
	}
	s = mustReduce(t, s, SetChanges{ImageID: 1})
	if _, ok := s.Changes[1]; ok {
		t.Fatalf("empty change must clear the entry")
	}
	s = mustReduce(t, s, AddImage{Image: domain.Image{ID: 3}})
	s = mustReduce(t, s, UpdateImage{Image: domain.Image{ID: 3, Name: "pelvis"}})
	if img, _ := s.Image(3); img.Name != "pelvis" || s.Changes[3] != ChangeUpdated {
		t.Fatalf("image not updated")
	}
	s = mustReduce(t, s, SetShowAnnotatedImage{Show: true})
	if !s.ShowAnnotatedImage {
		t.Fatalf("flag not set")
	}
	replaced := mustReduce(t, s, SetState{State: seed()})
	if len(replaced.Images) != 2 || replaced.ShowAnnotatedImage {
		t.Fatalf("SetState must replace the whole state")
	}
}

func TestDraft_ConnectorPushesPreviousIntoEndpoints(t *testing.T) {
	var d Draft
	d = d.Place(vector.Vec{X: 10.4, Y: 20.6})
	d = d.PlaceConnector(vector.Vec{X: 50, Y: 50})
	d2 := d.PlaceConnector(vector.Vec{X: 60, Y: 60})
	if len(d.Points) != 1 {
		t.Fatalf("draft values must not share state")
	}
	if len(d2.Points) != 2 || d2.Points[1] != (vector.Vec{X: 50, Y: 50}) || *d2.Connector != (vector.Vec{X: 60, Y: 60}) {
		t.Fatalf("unexpected draft %+v", d2)
	}
	l, err := d2.Commit(vector.Bottom, "")
	if err != nil {
		t.Fatal(err)
	}
	if l.Endpoints[0].X != 10 || l.Endpoints[0].Y != 21 || l.Connector == nil || l.Tip != vector.TipCircle {
		t.Fatalf("unexpected line %+v", l)
	}
	if _, err := (Draft{}).Commit(vector.Top, vector.TipArrow); !errors.Is(err, domain.ErrNoEndpoints) {
		t.Fatalf("expected ErrNoEndpoints, got %v", err)
	}
}
