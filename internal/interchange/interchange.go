/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interchange reads and writes annotations as JSON documents. Each
// annotation is a tagged object ("type": "line" or "brace"); documents are
// validated against an embedded JSON schema before decoding.
package interchange

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"annotator/internal/domain"
	"annotator/internal/vector"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed annotations.schema.json
var schemaJSON []byte

// ErrInvalidDocument wraps schema violations.
var ErrInvalidDocument = errors.New("invalid annotation document")

const Version = 1

// ImageInfo describes the image the annotations were placed on.
type ImageInfo struct {
	UID            string                `json:"uid,omitempty"`
	Name           string                `json:"name"`
	Group          string                `json:"group,omitempty"`
	Width          int                   `json:"width"`
	Height         int                   `json:"height"`
	AnnotationSize domain.AnnotationSize `json:"annotationSize"`
}

// Document is the decoded form of a JSON file.
type Document struct {
	Image       *ImageInfo
	Annotations []domain.Annotation
}

type wireDoc struct {
	Version     int               `json:"version"`
	Image       *ImageInfo        `json:"image,omitempty"`
	Annotations []json.RawMessage `json:"annotations"`
}

type wireLine struct {
	Type domain.Kind `json:"type"`
	domain.Line
}

type wireBrace struct {
	Type domain.Kind `json:"type"`
	domain.Brace
}

// FromImage builds a document carrying img's metadata and annotations.
func FromImage(img domain.Image) Document {
	return Document{
		Image: &ImageInfo{
			UID: img.UID, Name: img.Name, Group: img.Group,
			Width: img.Width, Height: img.Height, AnnotationSize: img.Size,
		},
		Annotations: img.Annotations,
	}
}

// Encode writes doc as indented JSON.
func Encode(doc Document) ([]byte, error) {
	w := wireDoc{Version: Version, Image: doc.Image, Annotations: make([]json.RawMessage, 0, len(doc.Annotations))}
	for _, a := range doc.Annotations {
		var v any
		switch x := a.(type) {
		case domain.Line:
			v = wireLine{Type: domain.KindLine, Line: x}
		case domain.Brace:
			v = wireBrace{Type: domain.KindBrace, Brace: x}
		default:
			return nil, fmt.Errorf("%w: %T", domain.ErrInvalidKind, a)
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		w.Annotations = append(w.Annotations, raw)
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// Validate checks data against the embedded schema.
func Validate(data []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}

// Decode validates and decodes a document. A missing tip defaults to circle.
func Decode(data []byte) (Document, error) {
	if err := Validate(data); err != nil {
		return Document{}, err
	}
	var w wireDoc
	if err := json.Unmarshal(data, &w); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	doc := Document{Image: w.Image}
	for i, raw := range w.Annotations {
		var head struct {
			Type domain.Kind `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return Document{}, fmt.Errorf("annotation %d: %w", i, err)
		}
		var a domain.Annotation
		switch head.Type {
		case domain.KindLine:
			var l wireLine
			if err := json.Unmarshal(raw, &l); err != nil {
				return Document{}, fmt.Errorf("annotation %d: %w", i, err)
			}
			a = l.Line
		case domain.KindBrace:
			var b wireBrace
			if err := json.Unmarshal(raw, &b); err != nil {
				return Document{}, fmt.Errorf("annotation %d: %w", i, err)
			}
			a = b.Brace
		default:
			return Document{}, fmt.Errorf("annotation %d: %w: %q", i, domain.ErrInvalidKind, string(head.Type))
		}
		m := a.Base()
		if m.Tip == "" {
			m.Tip = vector.TipCircle
			a = domain.WithMeta(a, m)
		}
		if err := domain.Validate(a); err != nil {
			return Document{}, fmt.Errorf("annotation %d: %w", i, err)
		}
		doc.Annotations = append(doc.Annotations, a)
	}
	return doc, nil
}
