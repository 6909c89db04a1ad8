/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"

	"annotator/internal/imaging"
	"annotator/internal/render"
	"annotator/internal/textlayout"
	"annotator/internal/vector"

	"github.com/jung-kurt/gofpdf"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"
)

// PDFOptions controls PDF export. Units are points; one image pixel maps to
// one point so the page is exactly the scene view box.
type PDFOptions struct {
	Title string
	// FontTTF replaces the bundled Go Regular face for labels.
	FontTTF []byte
}

const pdfFont = "label"

// PDF draws a scene onto a single page and writes the document to w.
func PDF(sc render.Scene, w io.Writer, opt PDFOptions) error {
	vb := sc.ViewBox
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: vb.W, Ht: vb.H},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetCreator("annotator", false)

	ttf := opt.FontTTF
	if len(ttf) == 0 {
		ttf = goregular.TTF
	}
	pdf.AddUTF8FontFromBytes(pdfFont, "", ttf)
	pdf.AddPage()

	// scene coordinates start at the view box origin
	ox, oy := -vb.X, -vb.Y
	pt := func(v vector.Vec) (float64, float64) { return v.X + ox, v.Y + oy }

	if sc.ImageContent != "" {
		data, err := imaging.Decode(sc.ImageContent)
		if err != nil {
			return err
		}
		imgOpt := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptionsReader("background", imgOpt, bytes.NewReader(data))
		pdf.ImageOptions("background", ox, oy, sc.Width, sc.Height, false, imgOpt, 0, "")
	}

	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, g := range sc.Groups {
		if g.Markers != nil {
			drawLayer(pdf, *g.Markers, pt)
		}
		drawText(pdf, g.Label, pt)
		drawLayer(pdf, g.Halo, pt)
		drawLayer(pdf, g.Body, pt)
	}
	for _, d := range sc.Draft {
		setDrawColor(pdf, d.Color)
		setFillColor(pdf, d.Color)
		pdf.SetLineWidth(d.Width)
		x, y := pt(d.At)
		style := "D"
		if d.Filled {
			style = "FD"
		}
		pdf.Circle(x, y, d.Radius, style)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawLayer(pdf *gofpdf.Fpdf, l render.Layer, pt func(vector.Vec) (float64, float64)) {
	for _, s := range l.Strokes {
		setDrawColor(pdf, s.Color)
		pdf.SetLineWidth(s.Width)
		for _, seg := range s.Path.Resolved().Segments {
			x, y := pt(seg.To)
			switch seg.Op {
			case vector.MoveTo:
				pdf.MoveTo(x, y)
			case vector.LineTo:
				pdf.LineTo(x, y)
			case vector.QuadTo:
				cx, cy := pt(seg.Ctrl)
				pdf.CurveTo(cx, cy, x, y)
			}
		}
		pdf.DrawPath("D")
	}
	for _, s := range l.Shapes {
		setFillColor(pdf, s.Color)
		setDrawColor(pdf, s.Color)
		style := "F"
		if s.Outline > 0 {
			pdf.SetLineWidth(s.Outline)
			style = "FD"
		}
		if s.Marker.Shape == vector.MarkerCircle {
			x, y := pt(s.Marker.At)
			pdf.Circle(x, y, s.Marker.Radius(), style)
			continue
		}
		var poly []gofpdf.PointType
		for _, p := range s.Marker.Points() {
			x, y := pt(p)
			poly = append(poly, gofpdf.PointType{X: x, Y: y})
		}
		pdf.Polygon(poly, style)
	}
}

func drawText(pdf *gofpdf.Fpdf, t render.Text, pt func(vector.Vec) (float64, float64)) {
	l := t.Layout
	pdf.SetFont(pdfFont, "", l.FontSize)
	r, g, b := render.RGB255(t.Color)
	pdf.SetTextColor(r, g, b)
	// gofpdf places text on the alphabetic baseline
	var shift float64
	switch l.Baseline {
	case textlayout.BaselineHanging:
		shift = 0.75 * l.FontSize
	case textlayout.BaselineMiddle:
		shift = 0.35 * l.FontSize
	}
	for i, line := range l.Lines {
		x, y := pt(l.LinePos(i))
		width := pdf.GetStringWidth(line)
		switch l.Align {
		case textlayout.AlignMiddle:
			x -= width / 2
		case textlayout.AlignEnd:
			x -= width
		}
		pdf.Text(x, y+shift, line)
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c colorful.Color) {
	pdf.SetDrawColor(render.RGB255(c))
}

func setFillColor(pdf *gofpdf.Fpdf, c colorful.Color) {
	pdf.SetFillColor(render.RGB255(c))
}
