/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"testing"

	"annotator/internal/domain"
	"annotator/internal/vector"
)

func testImage() domain.Image {
	return domain.Image{
		ID: 1, Width: 400, Height: 200, Size: domain.SizeSmall,
		CleanContent: "CLEAN", AnnotatedContent: "OLD",
		Annotations: []domain.Annotation{
			domain.Line{
				Meta:      domain.Meta{ID: 10, Label: "left one", Side: vector.Left, Tip: vector.TipArrow},
				Endpoints: []domain.Node{{ID: 1, X: 100, Y: 50}},
			},
			domain.Line{
				Meta:      domain.Meta{ID: 11, Side: vector.Top, Tip: vector.TipCircle, Permanent: true},
				Endpoints: []domain.Node{{ID: 2, X: 300, Y: 80}, {ID: 3, X: 320, Y: 100}},
			},
			domain.Brace{
				Meta: domain.Meta{ID: 12, Label: "span", Side: vector.Top, Tip: vector.TipCircle},
				A:    domain.Node{ID: 4, X: 20, Y: 20},
				B:    domain.Node{ID: 5, X: 120, Y: 20},
			},
		},
	}
}

func TestViewBoxAndBorder(t *testing.T) {
	vb := ViewBox(400, 200, 15)
	if vb.X != -210 || vb.Y != -60 || vb.W != 820 || vb.H != 320 {
		t.Fatalf("view box = %+v", vb)
	}
	if got := MaxLabelWidth(vector.Left, 400, 15); got != 210 {
		t.Fatalf("left max width = %v", got)
	}
	if got := MaxLabelWidth(vector.Bottom, 400, 15); got != 820 {
		t.Fatalf("bottom max width = %v", got)
	}
}

func TestBuildSceneOrderAndNumbers(t *testing.T) {
	sc, err := BuildScene(testImage(), Options{})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if len(sc.Groups) != 3 {
		t.Fatalf("groups = %d", len(sc.Groups))
	}
	// top labels first, left to right; then left
	want := []int64{12, 11, 10}
	for i, g := range sc.Groups {
		if g.AnnotationID != want[i] || g.Number != i+1 {
			t.Fatalf("group %d = id %d number %d", i, g.AnnotationID, g.Number)
		}
	}
	if sc.ImageContent != "CLEAN" {
		t.Fatalf("content = %q", sc.ImageContent)
	}
	if sc.Groups[1].Label.Layout.Lines[0] != "unnamed-11" {
		t.Fatalf("placeholder label = %q", sc.Groups[1].Label.Layout.Lines[0])
	}
	// arrow line body: one stroke plus one arrow tip
	body := sc.Groups[2].Body
	if len(body.Strokes) != 1 || len(body.Shapes) != 1 || body.Shapes[0].Marker.Shape != vector.MarkerArrow {
		t.Fatalf("line body = %+v", body)
	}
	halo := sc.Groups[2].Halo
	if halo.Strokes[0].Width != 4 || halo.Shapes[0].Outline != 1 {
		t.Fatalf("halo widths = %v / %v", halo.Strokes[0].Width, halo.Shapes[0].Outline)
	}
	if len(sc.Groups[0].Body.Shapes) != 0 {
		t.Fatalf("brace body should have no shapes")
	}
}

func TestColoursAndMarkers(t *testing.T) {
	pal := DefaultPalette()
	sc, err := BuildScene(testImage(), Options{SelectedID: 10, Markers: true, ShowAnnotated: true})
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if sc.ImageContent != "OLD" {
		t.Fatalf("expected annotated content while editing")
	}
	byID := map[int64]Group{}
	for _, g := range sc.Groups {
		byID[g.AnnotationID] = g
	}
	if byID[10].Label.Color != pal.Selected {
		t.Fatalf("selected colour not applied")
	}
	if byID[11].Label.Color != pal.Permanent || byID[11].Markers != nil {
		t.Fatalf("permanent annotation: colour %v markers %v", byID[11].Label.Color, byID[11].Markers)
	}
	if byID[12].Label.Color != pal.Normal {
		t.Fatalf("normal colour not applied")
	}
	mk := byID[10].Markers
	if mk == nil || len(mk.Strokes) != 2 || len(mk.Shapes) != 4 {
		t.Fatalf("line markers = %+v", mk)
	}
	if last := mk.Shapes[3]; last.Marker.Shape != vector.MarkerTriangle || last.Color != pal.Marker {
		t.Fatalf("end marker = %+v", last)
	}

	rendered, err := BuildScene(testImage(), Options{SelectedID: 10, Rendering: true, ShowAnnotated: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range rendered.Groups {
		if g.AnnotationID == 10 && g.Label.Color != pal.Normal {
			t.Fatalf("selection must not show when rendering")
		}
	}
	if rendered.ImageContent != "CLEAN" {
		t.Fatalf("rendering must use clean content")
	}
}

func TestParsePalette(t *testing.T) {
	if _, err := ParsePalette(HexColors{Normal: "#000", Permanent: "#808080", Selected: "#f00", Marker: "#f00", Halo: "#fff"}); err != nil {
		t.Fatalf("ParsePalette: %v", err)
	}
	if _, err := ParsePalette(HexColors{Normal: "black"}); err == nil {
		t.Fatalf("expected error for non-hex colour")
	}
	if r, g, b := RGB255(DefaultPalette().Permanent); r != 128 || g != 128 || b != 128 {
		t.Fatalf("gray = %d,%d,%d", r, g, b)
	}
}

func TestDraftNodes(t *testing.T) {
	c := vector.V(5, 5)
	sc, err := BuildScene(domain.Image{Width: 10, Height: 10, Size: domain.SizeLarge}, Options{
		DraftPoints: []vector.Vec{vector.V(1, 1)}, DraftConnector: &c,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Draft) != 2 || sc.Draft[0].Radius != 30 || !sc.Draft[1].Filled {
		t.Fatalf("draft = %+v", sc.Draft)
	}
}
