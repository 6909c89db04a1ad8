/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "strings"

// Padding is the gap between a label and its anchor for a font size.
func Padding(fontSize float64) float64 { return fontSize / 2 }

// WrapLabel splits text into lines no wider than maxWidth minus the label
// padding. Explicit newlines always break. Words are packed greedily; a word
// that alone exceeds the budget gets a line of its own and is never split.
// An empty input line yields an empty output line.
func WrapLabel(text string, fontSize, maxWidth float64, m Measurer) []string {
	budget := maxWidth - Padding(fontSize)
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if m.Measure(next, fontSize) <= budget {
				cur = next
				continue
			}
			out = append(out, cur)
			cur = w
		}
		out = append(out, cur)
	}
	return out
}
