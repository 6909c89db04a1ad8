/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editstate

import "annotator/internal/domain"

// Action is a state transition request. The set is closed.
type Action interface{ action() }

type (
	// SetImage selects an image; a zero ID clears the selection.
	SetImage    struct{ ID int64 }
	AddImage    struct{ Image domain.Image }
	UpdateImage struct{ Image domain.Image }
	RemoveImage struct{ ID int64 }

	// SetAnnotation selects an annotation of the selected image; zero clears it.
	SetAnnotation    struct{ ID int64 }
	AddAnnotation    struct{ Annotation domain.Annotation }
	UpdateAnnotation struct{ Annotation domain.Annotation }
	RemoveAnnotation struct{ ID int64 }

	SetNode    struct{ ID int64 }
	UpdateNode struct{ Node domain.Node }
	RemoveNode struct{ ID int64 }

	// SetChanges records a change for an image; an empty Change clears it.
	SetChanges struct {
		ImageID int64
		Change  Change
	}
	SetShowAnnotatedImage struct{ Show bool }
	SetState              struct{ State State }
)

func (SetImage) action()              {}
func (AddImage) action()              {}
func (UpdateImage) action()           {}
func (RemoveImage) action()           {}
func (SetAnnotation) action()         {}
func (AddAnnotation) action()         {}
func (UpdateAnnotation) action()      {}
func (RemoveAnnotation) action()      {}
func (SetNode) action()               {}
func (UpdateNode) action()            {}
func (RemoveNode) action()            {}
func (SetChanges) action()            {}
func (SetShowAnnotatedImage) action() {}
func (SetState) action()              {}
