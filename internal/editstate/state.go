/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editstate holds the interactive editing state (images, selection,
// pending changes) and a pure reducer that derives the next state from an action.
package editstate

import (
	"errors"

	"annotator/internal/domain"
)

var (
	ErrNoImageSelected      = errors.New("no image selected")
	ErrNoAnnotationSelected = errors.New("no annotation selected")
	ErrImageNotFound        = errors.New("image not found")
	ErrAnnotationNotFound   = errors.New("annotation not found")
	ErrUnknownAction        = errors.New("unknown action")
)

// Change marks an image that differs from its stored version.
type Change string

const (
	ChangeUpdated Change = "updated"
	ChangeDeleted Change = "deleted"
)

// State is treated as immutable: Reduce never modifies its input and the
// returned state shares no mutable data with it.
type State struct {
	Images               []domain.Image
	SelectedImageID      int64 // 0 means none
	SelectedAnnotationID int64
	SelectedNodeID       int64
	Changes              map[int64]Change
	ShowAnnotatedImage   bool
}

func (s State) clone() State {
	out := s
	out.Images = make([]domain.Image, len(s.Images))
	for i, img := range s.Images {
		out.Images[i] = img.Clone()
	}
	out.Changes = make(map[int64]Change, len(s.Changes))
	for k, v := range s.Changes {
		out.Changes[k] = v
	}
	return out
}

// Image returns the image with id.
func (s State) Image(id int64) (domain.Image, bool) {
	for _, img := range s.Images {
		if img.ID == id {
			return img, true
		}
	}
	return domain.Image{}, false
}

// SelectedImage returns the currently selected image.
func (s State) SelectedImage() (domain.Image, bool) {
	if s.SelectedImageID == 0 {
		return domain.Image{}, false
	}
	return s.Image(s.SelectedImageID)
}

// SelectedAnnotation returns the selected annotation of the selected image.
func (s State) SelectedAnnotation() (domain.Annotation, bool) {
	img, ok := s.SelectedImage()
	if !ok || s.SelectedAnnotationID == 0 {
		return nil, false
	}
	return img.Annotation(s.SelectedAnnotationID)
}
