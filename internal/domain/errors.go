/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "errors"

var (
	// ErrMalformedBrace means a brace was observed with other than two endpoints.
	ErrMalformedBrace = errors.New("brace must have exactly two endpoints")

	// ErrNoEndpoints means an operation would leave a line without endpoints.
	ErrNoEndpoints = errors.New("line needs at least one endpoint")

	// ErrInvalidAnnotationSize is wrapped for sizes outside small/medium/large.
	ErrInvalidAnnotationSize = errors.New("invalid annotation size")

	// ErrNodeNotFound is returned when a node id is not part of an annotation.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidKind is wrapped for annotation types other than line and brace.
	ErrInvalidKind = errors.New("invalid annotation type")
)
