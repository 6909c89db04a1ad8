/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"annotator/internal/domain"
	"annotator/internal/layout"
	"annotator/internal/render"
)

// AnkiFileName is the name of the import sheet written next to the SVGs.
const AnkiFileName = "anki.csv"

// SVGFileName is the batch export name of an image, referenced by the sheet.
func SVGFileName(img domain.Image) string { return img.UID + ".svg" }

// AnkiCSV builds the Anki import sheet: one row per image with a cloze
// deletion for every non-permanent annotation, numbered by label order.
func AnkiCSV(images []domain.Image) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write([]string{"id", "title", "labels", "infos", "image"}); err != nil {
		return nil, err
	}
	for _, img := range images {
		sorted, err := layout.SortAnnotations(img.Annotations, float64(img.Width), float64(img.Height))
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", img.ID, err)
		}
		var labels strings.Builder
		for i, a := range sorted {
			if a.Base().Permanent {
				continue
			}
			n := strconv.Itoa(i + 1)
			labels.WriteString("{{c" + n + "::" + n + "}}")
		}
		row := []string{img.UID, img.Name, labels.String(), "", `<img src="` + SVGFileName(img) + `">`}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Batch renders every image as SVG with construction markers and adds the
// Anki sheet. The result maps file names to contents.
func Batch(images []domain.Image, opts render.Options) (map[string][]byte, error) {
	opts.Rendering = true
	opts.Markers = true
	files := make(map[string][]byte, len(images)+1)
	for _, img := range images {
		sc, err := render.BuildScene(img, opts)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", img.ID, err)
		}
		data, err := SVG(sc)
		if err != nil {
			return nil, err
		}
		files[SVGFileName(img)] = data
	}
	sheet, err := AnkiCSV(images)
	if err != nil {
		return nil, err
	}
	files[AnkiFileName] = sheet
	return files, nil
}
