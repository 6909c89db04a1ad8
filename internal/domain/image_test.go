/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"testing"
)

func TestAnnotationSizeLookup(t *testing.T) {
	want := map[AnnotationSize][2]float64{SizeSmall: {2, 15}, SizeMedium: {4, 25}, SizeLarge: {6, 35}}
	for s, w := range want {
		sw, err1 := s.StrokeWidth()
		fs, err2 := s.FontSize()
		if err1 != nil || err2 != nil || sw != w[0] || fs != w[1] {
			t.Fatalf("%s: got %v/%v", s, sw, fs)
		}
	}
	if _, err := ParseAnnotationSize("huge"); !errors.Is(err, ErrInvalidAnnotationSize) {
		t.Fatalf("expected ErrInvalidAnnotationSize, got %v", err)
	}
}

func TestNewUID(t *testing.T) {
	u := NewUID()
	if len(u) != UIDLength {
		t.Fatalf("unexpected length %d", len(u))
	}
	for _, r := range u {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			t.Fatalf("non base-36 rune %q in %s", r, u)
		}
	}
}

func TestImageCloneIsDeep(t *testing.T) {
	img := Image{ID: 1, Annotations: []Annotation{Line{Meta: testMeta(), Endpoints: []Node{{ID: 1}}}}}
	c := img.Clone()
	c.Annotations[0] = Line{Meta: testMeta(), Endpoints: []Node{{ID: 2}}}
	if Endpoints(img.Annotations[0])[0].ID != 1 {
		t.Fatalf("clone shares the annotation slice")
	}
	if _, ok := img.Annotation(7); !ok {
		t.Fatalf("lookup by id failed")
	}
}
