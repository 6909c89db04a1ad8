/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"math/rand/v2"
)

// AnnotationSize selects stroke width and font size for every annotation of an image.
type AnnotationSize string

const (
	SizeSmall  AnnotationSize = "small"
	SizeMedium AnnotationSize = "medium"
	SizeLarge  AnnotationSize = "large"
)

func ParseAnnotationSize(s string) (AnnotationSize, error) {
	a := AnnotationSize(s)
	if _, err := a.StrokeWidth(); err != nil {
		return "", err
	}
	return a, nil
}

// StrokeWidth in pixels.
func (s AnnotationSize) StrokeWidth() (float64, error) {
	switch s {
	case SizeSmall:
		return 2, nil
	case SizeMedium:
		return 4, nil
	case SizeLarge:
		return 6, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAnnotationSize, string(s))
}

// FontSize of labels in points.
func (s AnnotationSize) FontSize() (float64, error) {
	switch s {
	case SizeSmall:
		return 15, nil
	case SizeMedium:
		return 25, nil
	case SizeLarge:
		return 35, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAnnotationSize, string(s))
}

// Image is a raster picture together with its annotations.
// CleanContent and AnnotatedContent hold base64 encoded JPEG data.
type Image struct {
	ID               int64
	UID              string
	Name             string
	Group            string
	CleanContent     string
	AnnotatedContent string
	Width            int
	Height           int
	Size             AnnotationSize
	Annotations      []Annotation
}

// Annotation looks up an annotation by id.
func (img Image) Annotation(id int64) (Annotation, bool) {
	for _, a := range img.Annotations {
		if a.Base().ID == id {
			return a, true
		}
	}
	return nil, false
}

// Clone deep-copies the image including its annotations.
func (img Image) Clone() Image {
	out := img
	out.Annotations = make([]Annotation, len(img.Annotations))
	for i, a := range img.Annotations {
		out.Annotations[i] = Clone(a)
	}
	return out
}

const uidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// UIDLength is the length of generated annotation and image uids.
const UIDLength = 8

// NewUID returns a random lower-case base-36 identifier. Uniqueness is checked
// by the store, which retries on collision.
func NewUID() string {
	b := make([]byte, UIDLength)
	for i := range b {
		b[i] = uidAlphabet[rand.IntN(len(uidAlphabet))]
	}
	return string(b)
}
