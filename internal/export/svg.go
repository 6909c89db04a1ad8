/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes rendered scenes as SVG or PDF documents and builds
// the Anki import sheet for a set of images.
package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"annotator/internal/render"
	"annotator/internal/vector"

	"github.com/lucasb-eyer/go-colorful"
)

// SVG serialises a scene. The image is embedded as a data URL.
func SVG(sc render.Scene) ([]byte, error) {
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}
	n := vector.Num
	vb := sc.ViewBox

	wf("<svg viewBox=\"%s %s %s %s\" version=\"1.1\" xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" xml:space=\"preserve\">",
		n(vb.X), n(vb.Y), n(vb.W), n(vb.H))
	wf("<image x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" href=\"data:image/jpg;base64,%s\"/>", n(sc.Width), n(sc.Height), sc.ImageContent)

	for _, g := range sc.Groups {
		if g.Permanent {
			wf("<g id=\"%d\" class=\"permanent\">", g.Number)
		} else {
			wf("<g id=\"%d\">", g.Number)
		}
		if g.Markers != nil {
			wf("<g class=\"marker\">")
			writeLayer(wf, *g.Markers)
			wf("</g>")
		}
		wf("<g class=\"label\">")
		writeText(wf, g.Label)
		writeLayer(wf, g.Halo)
		writeLayer(wf, g.Body)
		wf("</g></g>")
	}
	for _, d := range sc.Draft {
		fill := "none"
		if d.Filled {
			fill = hex(d.Color)
		}
		wf("<circle cx=\"%s\" cy=\"%s\" r=\"%s\" stroke=\"%s\" stroke-width=\"%s\" fill=\"%s\"/>",
			n(d.At.X), n(d.At.Y), n(d.Radius), hex(d.Color), n(d.Width), fill)
	}
	wf("</svg>")
	if werr != nil {
		return nil, werr
	}
	return buf.Bytes(), nil
}

func writeLayer(wf func(string, ...any), l render.Layer) {
	n := vector.Num
	for _, s := range l.Strokes {
		wf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\" stroke-linecap=\"round\" stroke-linejoin=\"round\"/>",
			s.Path.SVGData(), hex(s.Color), n(s.Width))
	}
	for _, s := range l.Shapes {
		outline := ""
		if s.Outline > 0 {
			outline = fmt.Sprintf(" stroke=\"%s\" stroke-width=\"%s\"", hex(s.Color), n(s.Outline))
		}
		if s.Marker.Shape == vector.MarkerCircle {
			wf("<circle cx=\"%s\" cy=\"%s\" r=\"%s\" fill=\"%s\"%s/>",
				n(s.Marker.At.X), n(s.Marker.At.Y), n(s.Marker.Radius()), hex(s.Color), outline)
			continue
		}
		pts := s.Marker.Points()
		parts := make([]string, len(pts))
		for i, p := range pts {
			parts[i] = n(p.X) + "," + n(p.Y)
		}
		wf("<polygon points=\"%s\" fill=\"%s\"%s/>", strings.Join(parts, " "), hex(s.Color), outline)
	}
}

func writeText(wf func(string, ...any), t render.Text) {
	n := vector.Num
	l := t.Layout
	wf("<text text-anchor=\"%s\" transform=\"translate(%s, %s)\" font-family=\"%s\" fill=\"%s\" font-size=\"%s\">",
		l.Align, n(l.Origin.X), n(l.Origin.Y), escape(t.Family), hex(t.Color), n(l.FontSize))
	for i, line := range l.Lines {
		dy := "0"
		if i > 0 {
			dy = "1em"
		}
		wf("<tspan x=\"0\" dy=\"%s\" dominant-baseline=\"%s\">%s</tspan>", dy, l.Baseline, escape(line))
	}
	wf("</text>")
}

func hex(c colorful.Color) string { return c.Clamped().Hex() }

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
