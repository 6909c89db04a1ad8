/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package imaging turns image files into the base64 JPEG payload stored with
// every image record.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "annotator/internal/log"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// DefaultMaxEdge bounds width and height of imported images.
const DefaultMaxEdge = 2000

// ErrUnsupportedFormat is returned for files whose extension is not accepted.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Extensions accepted by Import, lower case without dot.
var Extensions = []string{"jpg", "jpeg", "png", "gif", "tiff", "tif", "bmp"}

type Options struct {
	MaxEdge int // <= 0 means DefaultMaxEdge
	Quality int // JPEG quality, <= 0 means 100
}

// Imported is the result of reading an image file.
type Imported struct {
	Path      string
	Filename  string
	Content   string // base64 JPEG
	Width     int
	Height    int
	Downsized bool
}

func supported(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Import decodes the file at path, shrinks it to fit within MaxEdge keeping
// the aspect ratio, and re-encodes it as JPEG.
func Import(path string, opts Options) (Imported, error) {
	l := applog.WithOperation(applog.WithComponent("imaging"), "import").With(slog.String("path", path))
	if !supported(path) {
		return Imported{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return Imported{}, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		l.Error("decode failed", slog.Any("err", err))
		return Imported{}, fmt.Errorf("decode image: %w", err)
	}
	out, err := Encode(img, opts)
	if err != nil {
		return Imported{}, err
	}
	out.Path = path
	out.Filename = filepath.Base(path)
	if out.Downsized {
		l.Info("image has been downsized", slog.Int("width", out.Width), slog.Int("height", out.Height))
	}
	return out, nil
}

// Encode fits img into the edge bound and returns the JPEG payload.
func Encode(img image.Image, opts Options) (Imported, error) {
	maxEdge := opts.MaxEdge
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	quality := opts.Quality
	if quality <= 0 {
		quality = 100
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return Imported{}, errors.New("image has no pixels")
	}
	downsized := false
	if b.Dx() > maxEdge || b.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
		downsized = true
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return Imported{}, fmt.Errorf("encode jpeg: %w", err)
	}
	nb := img.Bounds()
	return Imported{
		Content:   base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:     nb.Dx(),
		Height:    nb.Dy(),
		Downsized: downsized,
	}, nil
}

// Decode returns the raw JPEG bytes of a stored base64 payload.
func Decode(content string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return data, nil
}
