/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interchange

import (
	"errors"
	"strings"
	"testing"

	"annotator/internal/domain"
	"annotator/internal/vector"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	conn := domain.Node{ID: 9, X: 5, Y: 6}
	img := domain.Image{
		UID: "img00001", Name: "foot.jpg", Width: 100, Height: 50, Size: domain.SizeLarge,
		Annotations: []domain.Annotation{
			domain.Line{
				Meta:      domain.Meta{ID: 1, UID: "aaaaaaaa", Label: "toe", Side: vector.Bottom, Connector: &conn, Tip: vector.TipArrow},
				Endpoints: []domain.Node{{ID: 1, X: 1, Y: 2}, {ID: 2, X: 3, Y: 4}},
			},
			domain.Brace{
				Meta: domain.Meta{ID: 2, Label: "heel", Side: vector.Left, Permanent: true, Tip: vector.TipCircle},
				A:    domain.Node{ID: 3, X: 10, Y: 10},
				B:    domain.Node{ID: 4, X: 10, Y: 40},
			},
		},
	}
	data, err := Encode(FromImage(img))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(data), `"type": "brace"`) || !strings.Contains(string(data), `"endNodes"`) {
		t.Fatalf("unexpected encoding:\n%s", data)
	}
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Image == nil || doc.Image.AnnotationSize != domain.SizeLarge || doc.Image.Name != "foot.jpg" {
		t.Fatalf("image info = %+v", doc.Image)
	}
	if len(doc.Annotations) != 2 {
		t.Fatalf("annotations = %d", len(doc.Annotations))
	}
	l, ok := doc.Annotations[0].(domain.Line)
	if !ok || l.Connector == nil || l.Connector.X != 5 || len(l.Endpoints) != 2 || l.Tip != vector.TipArrow {
		t.Fatalf("line = %#v", doc.Annotations[0])
	}
	b, ok := doc.Annotations[1].(domain.Brace)
	if !ok || !b.Permanent || b.B.Y != 40 {
		t.Fatalf("brace = %#v", doc.Annotations[1])
	}
}

func TestDecodeDefaultsTip(t *testing.T) {
	data := []byte(`{"version":1,"annotations":[{"type":"line","label":"x","labelPosition":"top","endNodes":[{"x":1,"y":1}]}]}`)
	doc, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if doc.Annotations[0].Base().Tip != vector.TipCircle {
		t.Fatalf("tip = %q", doc.Annotations[0].Base().Tip)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad side":        `{"version":1,"annotations":[{"type":"line","label":"x","labelPosition":"middle","endNodes":[{"x":1,"y":1}]}]}`,
		"no endpoints":    `{"version":1,"annotations":[{"type":"line","label":"x","labelPosition":"top","endNodes":[]}]}`,
		"brace missing B": `{"version":1,"annotations":[{"type":"brace","label":"x","labelPosition":"top","nodeA":{"x":1,"y":1}}]}`,
		"unknown type":    `{"version":1,"annotations":[{"type":"circle","label":"x","labelPosition":"top"}]}`,
		"bad tip":         `{"version":1,"annotations":[{"type":"line","label":"x","labelPosition":"top","tip":"star","endNodes":[{"x":1,"y":1}]}]}`,
		"wrong version":   `{"version":2,"annotations":[]}`,
		"not json":        `{`,
	}
	for name, body := range cases {
		if _, err := Decode([]byte(body)); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%s: expected ErrInvalidDocument, got %v", name, err)
		}
	}
}
