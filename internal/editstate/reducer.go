/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editstate

import (
	"fmt"

	"annotator/internal/domain"
)

// Reduce applies a to s and returns the new state. s is left untouched. An
// action that needs a selection fails when nothing is selected.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case SetImage:
		return setImage(s, a)
	case AddImage:
		out := s.clone()
		out.Images = append(out.Images, a.Image.Clone())
		return out, nil
	case UpdateImage:
		return updateImage(s, a)
	case RemoveImage:
		return removeImage(s, a)
	case SetAnnotation:
		return setAnnotation(s, a)
	case AddAnnotation:
		return editSelectedImage(s, false, func(img *domain.Image) error {
			img.Annotations = append(img.Annotations, domain.Clone(a.Annotation))
			return nil
		})
	case UpdateAnnotation:
		return updateAnnotation(s, a)
	case RemoveAnnotation:
		return removeAnnotation(s, a)
	case SetNode:
		return setNode(s, a)
	case UpdateNode:
		return editSelectedAnnotation(s, func(an domain.Annotation) (domain.Annotation, error) {
			return domain.UpdateNode(an, a.Node)
		})
	case RemoveNode:
		out, err := editSelectedAnnotation(s, func(an domain.Annotation) (domain.Annotation, error) {
			return domain.RemoveNode(an, a.ID)
		})
		if err == nil && out.SelectedNodeID == a.ID {
			out.SelectedNodeID = 0
		}
		return out, err
	case SetChanges:
		out := s.clone()
		if a.Change == "" {
			delete(out.Changes, a.ImageID)
		} else {
			out.Changes[a.ImageID] = a.Change
		}
		return out, nil
	case SetShowAnnotatedImage:
		out := s.clone()
		out.ShowAnnotatedImage = a.Show
		return out, nil
	case SetState:
		return a.State.clone(), nil
	}
	return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

func setImage(s State, a SetImage) (State, error) {
	if a.ID != 0 {
		if _, ok := s.Image(a.ID); !ok {
			return s, fmt.Errorf("select image %d: %w", a.ID, ErrImageNotFound)
		}
	}
	out := s.clone()
	out.SelectedImageID = a.ID
	out.SelectedAnnotationID = 0
	out.SelectedNodeID = 0
	return out, nil
}

func updateImage(s State, a UpdateImage) (State, error) {
	out := s.clone()
	found := false
	for i := range out.Images {
		if out.Images[i].ID == a.Image.ID {
			out.Images[i] = a.Image.Clone()
			found = true
		}
	}
	if !found {
		return s, fmt.Errorf("update image %d: %w", a.Image.ID, ErrImageNotFound)
	}
	out.Changes[a.Image.ID] = ChangeUpdated
	return out, nil
}

func removeImage(s State, a RemoveImage) (State, error) {
	out := s.clone()
	kept := out.Images[:0]
	for _, img := range out.Images {
		if img.ID != a.ID {
			kept = append(kept, img)
		}
	}
	out.Images = kept
	if out.SelectedImageID == a.ID {
		out.SelectedImageID, out.SelectedAnnotationID, out.SelectedNodeID = 0, 0, 0
	}
	out.Changes[a.ID] = ChangeDeleted
	return out, nil
}

func setAnnotation(s State, a SetAnnotation) (State, error) {
	img, ok := s.SelectedImage()
	if !ok {
		return s, ErrNoImageSelected
	}
	if a.ID != 0 {
		if _, ok := img.Annotation(a.ID); !ok {
			return s, fmt.Errorf("select annotation %d: %w", a.ID, ErrAnnotationNotFound)
		}
	}
	out := s.clone()
	out.SelectedAnnotationID = a.ID
	out.SelectedNodeID = 0
	return out, nil
}

func updateAnnotation(s State, a UpdateAnnotation) (State, error) {
	id := a.Annotation.Base().ID
	return editSelectedImage(s, true, func(img *domain.Image) error {
		for i, an := range img.Annotations {
			if an.Base().ID == id {
				img.Annotations[i] = domain.Clone(a.Annotation)
				return nil
			}
		}
		return fmt.Errorf("update annotation %d: %w", id, ErrAnnotationNotFound)
	})
}

func removeAnnotation(s State, a RemoveAnnotation) (State, error) {
	out, err := editSelectedImage(s, true, func(img *domain.Image) error {
		kept := img.Annotations[:0]
		for _, an := range img.Annotations {
			if an.Base().ID != a.ID {
				kept = append(kept, an)
			}
		}
		img.Annotations = kept
		return nil
	})
	if err == nil && out.SelectedAnnotationID == a.ID {
		out.SelectedAnnotationID, out.SelectedNodeID = 0, 0
	}
	return out, err
}

func setNode(s State, a SetNode) (State, error) {
	if _, ok := s.SelectedImage(); !ok {
		return s, ErrNoImageSelected
	}
	if s.SelectedAnnotationID == 0 {
		return s, ErrNoAnnotationSelected
	}
	out := s.clone()
	out.SelectedNodeID = a.ID
	return out, nil
}

// editSelectedImage runs fn on a copy of the selected image and, if markChanged,
// flags the image as updated.
func editSelectedImage(s State, markChanged bool, fn func(*domain.Image) error) (State, error) {
	if _, ok := s.SelectedImage(); !ok {
		return s, ErrNoImageSelected
	}
	out := s.clone()
	for i := range out.Images {
		if out.Images[i].ID != out.SelectedImageID {
			continue
		}
		if err := fn(&out.Images[i]); err != nil {
			return s, err
		}
	}
	if markChanged {
		out.Changes[out.SelectedImageID] = ChangeUpdated
	}
	return out, nil
}

func editSelectedAnnotation(s State, fn func(domain.Annotation) (domain.Annotation, error)) (State, error) {
	if s.SelectedAnnotationID == 0 {
		return s, ErrNoAnnotationSelected
	}
	return editSelectedImage(s, true, func(img *domain.Image) error {
		for i, an := range img.Annotations {
			if an.Base().ID != s.SelectedAnnotationID {
				continue
			}
			next, err := fn(an)
			if err != nil {
				return err
			}
			img.Annotations[i] = next
			return nil
		}
		return fmt.Errorf("annotation %d: %w", s.SelectedAnnotationID, ErrAnnotationNotFound)
	})
}
