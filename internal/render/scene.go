/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns an image and its annotations into a backend-neutral
// scene: ordered groups of stroked paths, filled markers and text blocks in
// image pixel space. The exporters draw scenes as SVG or PDF.
package render

import (
	"fmt"

	"annotator/internal/domain"
	"annotator/internal/layout"
	"annotator/internal/textlayout"
	"annotator/internal/vector"

	"github.com/lucasb-eyer/go-colorful"
)

// Stroke is a path drawn with round caps and joins and no fill.
type Stroke struct {
	Path  vector.Path
	Color colorful.Color
	Width float64
}

// Shape is a filled marker, optionally outlined in its own colour.
type Shape struct {
	Marker  vector.Marker
	Color   colorful.Color
	Outline float64
}

// Text is a laid out label.
type Text struct {
	Layout textlayout.LabelLayout
	Color  colorful.Color
	Family string
}

// Layer is painted strokes first, then shapes.
type Layer struct {
	Strokes []Stroke
	Shapes  []Shape
}

func (l *Layer) add(o Layer) {
	l.Strokes = append(l.Strokes, o.Strokes...)
	l.Shapes = append(l.Shapes, o.Shapes...)
}

// Group is one annotation. Painting order: Markers (halo then colour), Label,
// Halo, Body.
type Group struct {
	Number       int // 1-based position in label order
	AnnotationID int64
	Permanent    bool
	Markers      *Layer
	Label        Text
	Halo         Layer
	Body         Layer
}

// DraftNode is a pending click of the placement tool.
type DraftNode struct {
	At     vector.Vec
	Radius float64
	Width  float64
	Filled bool
	Color  colorful.Color
}

// Scene is everything needed to paint an annotated image.
type Scene struct {
	Width, Height float64
	Border        vector.Vec
	ViewBox       vector.Rect
	ImageContent  string // base64 JPEG
	StrokeWidth   float64
	FontSize      float64
	FontFamily    string
	Groups        []Group
	Draft         []DraftNode
}

type Options struct {
	// SelectedID highlights one annotation unless Rendering is set.
	SelectedID int64
	// Rendering marks output for export: no selection colour, clean image.
	Rendering bool
	// ShowAnnotated prefers the previously annotated content as background.
	ShowAnnotated bool
	// Markers adds the red construction layer to non-permanent annotations.
	Markers bool

	Palette    *Palette
	Measurer   textlayout.Measurer
	FontFamily string

	DraftPoints    []vector.Vec
	DraftConnector *vector.Vec
}

// Border is the margin around the image reserved for labels.
func Border(fontSize float64) vector.Vec {
	return vector.Vec{X: 14 * fontSize, Y: 4 * fontSize}
}

// ViewBox is the image rectangle grown by the label border.
func ViewBox(width, height, fontSize float64) vector.Rect {
	b := Border(fontSize)
	return vector.Rect{X: -b.X, Y: -b.Y, W: width + 2*b.X, H: height + 2*b.Y}
}

// MaxLabelWidth is the wrap width for labels on side o.
func MaxLabelWidth(o vector.Orientation, width, fontSize float64) float64 {
	b := Border(fontSize)
	if o == vector.Top || o == vector.Bottom {
		return width + 2*b.X
	}
	return b.X
}

// ImageContent picks the background payload for an image.
func ImageContent(img domain.Image, showAnnotated, rendering bool) string {
	if rendering || !showAnnotated || img.AnnotatedContent == "" {
		return img.CleanContent
	}
	return img.AnnotatedContent
}

// BuildScene runs the annotation pipeline for img: ordering, anchors, brace
// and line geometry, label wrapping and colours.
func BuildScene(img domain.Image, opts Options) (Scene, error) {
	w, err := img.Size.StrokeWidth()
	if err != nil {
		return Scene{}, err
	}
	fs, err := img.Size.FontSize()
	if err != nil {
		return Scene{}, err
	}
	pal := DefaultPalette()
	if opts.Palette != nil {
		pal = *opts.Palette
	}
	m := opts.Measurer
	if m == nil {
		m = textlayout.BasicMeasurer{}
	}
	family := opts.FontFamily
	if family == "" {
		family = textlayout.DefaultFamily
	}

	width, height := float64(img.Width), float64(img.Height)
	sc := Scene{
		Width:        width,
		Height:       height,
		Border:       Border(fs),
		ViewBox:      ViewBox(width, height, fs),
		ImageContent: ImageContent(img, opts.ShowAnnotated, opts.Rendering),
		StrokeWidth:  w,
		FontSize:     fs,
		FontFamily:   family,
	}

	sorted, err := layout.SortAnnotations(img.Annotations, width, height)
	if err != nil {
		return Scene{}, err
	}
	for i, a := range sorted {
		g, err := buildGroup(a, i+1, sc, pal, opts, m)
		if err != nil {
			return Scene{}, fmt.Errorf("annotation %d: %w", a.Base().ID, err)
		}
		sc.Groups = append(sc.Groups, g)
	}

	for _, p := range opts.DraftPoints {
		sc.Draft = append(sc.Draft, DraftNode{At: p, Radius: 5 * w, Width: w, Color: pal.Draft})
	}
	if opts.DraftConnector != nil {
		sc.Draft = append(sc.Draft, DraftNode{At: *opts.DraftConnector, Radius: 5 * w, Width: w, Filled: true, Color: pal.Draft})
	}
	return sc, nil
}

func annotationColor(m domain.Meta, pal Palette, opts Options) colorful.Color {
	if !opts.Rendering && opts.SelectedID != 0 && m.ID == opts.SelectedID {
		return pal.Selected
	}
	if m.Permanent {
		return pal.Permanent
	}
	return pal.Normal
}

func buildGroup(a domain.Annotation, number int, sc Scene, pal Palette, opts Options, mes textlayout.Measurer) (Group, error) {
	meta := a.Base()
	w, fs := sc.StrokeWidth, sc.FontSize
	color := annotationColor(meta, pal, opts)

	anchor, err := layout.ResolveLabelAnchor(a, sc.Width, sc.Height)
	if err != nil {
		return Group{}, err
	}
	lines := textlayout.WrapLabel(meta.DisplayLabel(), fs, MaxLabelWidth(meta.Side, sc.Width, fs), mes)
	lay, err := textlayout.LayoutLabel(lines, anchor, meta.Side, fs)
	if err != nil {
		return Group{}, err
	}

	var connector *vector.Vec
	if meta.Connector != nil {
		c := meta.Connector.Vec()
		connector = &c
	}
	end, err := vector.EndMarker(anchor, connector, meta.Side, fs)
	if err != nil {
		return Group{}, err
	}

	// path plus the shapes drawn on top of it in the final body
	var path vector.Path
	var tips []vector.Marker
	switch v := a.(type) {
	case domain.Brace:
		bg, err := vector.BuildBrace(v.A.Vec(), v.B.Vec(), connector, meta.Side)
		if err != nil {
			return Group{}, err
		}
		path = bg.ToLabel(anchor)
	case domain.Line:
		pts := make([]vector.Vec, len(v.Endpoints))
		for i, n := range v.Endpoints {
			pts[i] = n.Vec()
		}
		lg, err := vector.BuildLine(pts, connector, anchor, meta.Tip, w)
		if err != nil {
			return Group{}, err
		}
		path = lg.Path
		tips = lg.Tips
	default:
		return Group{}, fmt.Errorf("%w: %T", domain.ErrInvalidKind, a)
	}

	g := Group{
		Number:       number,
		AnnotationID: meta.ID,
		Permanent:    meta.Permanent,
		Label:        Text{Layout: lay, Color: color, Family: sc.FontFamily},
		Halo:         haloLayer(path, tips, w, pal.Halo),
		Body:         bodyLayer(path, tips, w, color),
	}
	if opts.Markers && !meta.Permanent {
		shapes := append(append([]vector.Marker(nil), tips...), end)
		ml := haloLayer(path, shapes, w, pal.Halo)
		ml.add(bodyLayer(path, shapes, w, pal.Marker))
		g.Markers = &ml
	}
	return g, nil
}

func haloLayer(p vector.Path, shapes []vector.Marker, w float64, c colorful.Color) Layer {
	l := Layer{Strokes: []Stroke{{Path: p, Color: c, Width: vector.HaloWidth(w)}}}
	for _, m := range shapes {
		l.Shapes = append(l.Shapes, Shape{Marker: m, Color: c, Outline: vector.Outline(w)})
	}
	return l
}

func bodyLayer(p vector.Path, shapes []vector.Marker, w float64, c colorful.Color) Layer {
	l := Layer{Strokes: []Stroke{{Path: p, Color: c, Width: w}}}
	for _, m := range shapes {
		l.Shapes = append(l.Shapes, Shape{Marker: m, Color: c})
	}
	return l
}
