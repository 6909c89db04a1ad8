/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Glyph measurement. Label wrapping only needs the pixel width of a string at a
// font size, so everything else stays behind the Measurer interface.

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer returns the advance width of text in pixels.
type Measurer interface {
	Measure(text string, fontSize float64) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string, fontSize float64) float64

func (f MeasureFunc) Measure(text string, fontSize float64) float64 { return f(text, fontSize) }

// DefaultFamily is registered in every library created by NewFontLibrary.
const DefaultFamily = "Go"

// FontLibrary stores parsed OpenType fonts by family name.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
}

// NewFontLibrary returns a library that already contains DefaultFamily.
func NewFontLibrary() *FontLibrary {
	fl := &FontLibrary{fonts: make(map[string]*opentype.Font)}
	// the embedded Go font always parses
	_ = fl.LoadBytes(DefaultFamily, goregular.TTF)
	return fl
}

// LoadFile parses a TTF/OTF file and registers it under family.
func (fl *FontLibrary) LoadFile(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.LoadBytes(family, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

func (fl *FontLibrary) LoadBytes(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[string]*opentype.Font)
	}
	fl.fonts[family] = f
	return nil
}

func (fl *FontLibrary) find(family string) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f, ok := fl.fonts[family]; ok {
		return f
	}
	return fl.fonts[DefaultFamily]
}

// FaceMeasurer measures with an OpenType face of the library. Faces are cached
// per size; opentype faces are not safe for concurrent use, so each measurement
// holds the cache lock. Without a usable font it falls back to BasicMeasurer.
type FaceMeasurer struct {
	Lib    *FontLibrary
	Family string
	DPI    float64 // default 72 so that points equal pixels

	mu    sync.Mutex
	faces map[float64]font.Face
}

func NewFaceMeasurer(lib *FontLibrary, family string) *FaceMeasurer {
	return &FaceMeasurer{Lib: lib, Family: family}
}

func (m *FaceMeasurer) Measure(text string, fontSize float64) float64 {
	if text == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	face := m.face(fontSize)
	if face == nil {
		return BasicMeasurer{}.Measure(text, fontSize)
	}
	return toPx(font.MeasureString(face, text))
}

func (m *FaceMeasurer) face(size float64) font.Face {
	if f, ok := m.faces[size]; ok {
		return f
	}
	otf := m.Lib.find(m.Family)
	if otf == nil || size <= 0 {
		return nil
	}
	dpi := m.DPI
	if dpi <= 0 {
		dpi = 72
	}
	face, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: dpi, Hinting: font.HintingNone})
	if err != nil {
		return nil
	}
	if m.faces == nil {
		m.faces = make(map[float64]font.Face)
	}
	m.faces[size] = face
	return face
}

// BasicMeasurer scales the fixed 7x13 bitmap face to the requested size. It is
// deterministic and needs no font files, which makes it handy in tests.
type BasicMeasurer struct{}

func (BasicMeasurer) Measure(text string, fontSize float64) float64 {
	f := basicfont.Face7x13
	return toPx(font.MeasureString(f, text)) * fontSize / float64(f.Height)
}

func toPx(v fixed.Int26_6) float64 { return float64(v) / 64 }
