/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// HexColors mirrors the colour section of the user config.
type HexColors struct {
	Normal    string
	Permanent string
	Selected  string
	Marker    string
	Halo      string
}

// Palette holds the parsed stroke and fill colours of a scene.
type Palette struct {
	Normal    colorful.Color
	Permanent colorful.Color
	Selected  colorful.Color
	Marker    colorful.Color
	Halo      colorful.Color
	Draft     colorful.Color
}

var draftGreen = colorful.Color{R: 0x10 / 255.0, G: 0x7c / 255.0, B: 0x10 / 255.0}

func DefaultPalette() Palette {
	p, _ := ParsePalette(HexColors{
		Normal:    "#000000",
		Permanent: "#808080",
		Selected:  "#c50f1f",
		Marker:    "#ff0000",
		Halo:      "#ffffff",
	})
	return p
}

// ParsePalette parses hex colours such as "#808080" or "#fff".
func ParsePalette(h HexColors) (Palette, error) {
	p := Palette{Draft: draftGreen}
	for _, f := range []struct {
		name string
		hex  string
		dst  *colorful.Color
	}{
		{"normal", h.Normal, &p.Normal},
		{"permanent", h.Permanent, &p.Permanent},
		{"selected", h.Selected, &p.Selected},
		{"marker", h.Marker, &p.Marker},
		{"halo", h.Halo, &p.Halo},
	} {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("%s colour %q: %w", f.name, f.hex, err)
		}
		*f.dst = c
	}
	return p, nil
}

// RGB255 returns the 8-bit channels of c, clamped.
func RGB255(c colorful.Color) (r, g, b int) {
	r8, g8, b8 := c.Clamped().RGB255()
	return int(r8), int(g8), int(b8)
}
