/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func writeTestImage(t *testing.T, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	var err error
	switch filepath.Ext(name) {
	case ".bmp":
		err = bmp.Encode(&buf, img)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestImportKeepsSmallImages(t *testing.T) {
	path := writeTestImage(t, "small.png", 40, 20)
	got, err := Import(path, Options{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Downsized || got.Width != 40 || got.Height != 20 || got.Filename != "small.png" {
		t.Fatalf("unexpected result: %+v", got)
	}
	data, err := Decode(got.Content)
	if err != nil {
		t.Fatal(err)
	}
	// JPEG SOI marker
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Fatalf("content is not JPEG")
	}
}

func TestImportDownsizesToMaxEdge(t *testing.T) {
	path := writeTestImage(t, "wide.bmp", 300, 100)
	got, err := Import(path, Options{MaxEdge: 150, Quality: 90})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !got.Downsized || got.Width != 150 || got.Height != 50 {
		t.Fatalf("expected 150x50 downsized, got %+v", got)
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	if _, err := Import("notes.txt", Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
