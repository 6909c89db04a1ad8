/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestPath_ResolvedMirrorsControl(t *testing.T) {
	var p Path
	p.MoveTo(Vec{0, 0})
	p.QuadTo(Vec{10, 10}, Vec{20, 0})
	p.SmoothQuadTo(Vec{40, 0})
	r := p.Resolved()
	if r.Segments[2].Op != QuadTo || r.Segments[2].Ctrl != (Vec{30, -10}) {
		t.Fatalf("expected mirrored control (30,-10), got %+v", r.Segments[2])
	}
	if p.Segments[2].Op != SmoothQuadTo {
		t.Fatalf("Resolved must not modify the receiver")
	}
}

func TestPath_SmoothWithoutPreviousQuadUsesCurrentPoint(t *testing.T) {
	var p Path
	p.MoveTo(Vec{1, 2})
	p.SmoothQuadTo(Vec{5, 5})
	if c := p.Resolved().Segments[1].Ctrl; c != (Vec{1, 2}) {
		t.Fatalf("expected control at current point, got %+v", c)
	}
}

func TestPath_SVGData(t *testing.T) {
	var p Path
	p.MoveTo(Vec{0, 0})
	p.QuadTo(Vec{10, -10}, Vec{20, 0})
	p.LineTo(Vec{20, 5.5})
	if d := p.SVGData(); d != "M 0 0 Q 10,-10 20,0 L 20 5.5" {
		t.Fatalf("data mismatch: %s", d)
	}
	if (Path{}).SVGData() != "" {
		t.Fatalf("empty path must have empty data")
	}
}
