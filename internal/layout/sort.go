/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"sort"

	"annotator/internal/domain"
	"annotator/internal/vector"
)

type sortKey struct {
	rank int
	pos  float64 // position along the side, already signed for the side's direction
}

// SortAnnotations returns a new slice ordered clockwise around the border:
// by side (top, right, bottom, left), then along each side from its
// clockwise start. Equal keys keep their input order. The input is not modified.
func SortAnnotations(as []domain.Annotation, width, height float64) ([]domain.Annotation, error) {
	keys := make([]sortKey, len(as))
	for i, a := range as {
		side := a.Base().Side
		rank, err := side.Rank()
		if err != nil {
			return nil, err
		}
		p, err := ResolveLabelAnchor(a, width, height)
		if err != nil {
			return nil, err
		}
		keys[i] = sortKey{rank: rank, pos: along(side, p)}
	}

	idx := make([]int, len(as))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := keys[idx[i]], keys[idx[j]]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.pos < b.pos
	})

	out := make([]domain.Annotation, len(as))
	for i, j := range idx {
		out[i] = as[j]
	}
	return out, nil
}

func along(o vector.Orientation, p vector.Vec) float64 {
	switch o {
	case vector.Top:
		return p.X
	case vector.Right:
		return p.Y
	case vector.Bottom:
		return -p.X
	default: // left; validated by the caller
		return -p.Y
	}
}
