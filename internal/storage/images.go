/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"annotator/internal/domain"
	applog "annotator/internal/log"
)

const imageColumns = `id, uid, name, group_name, clean_content, annotated_content, annotation_size, width, height`

func scanImage(sc interface{ Scan(...any) error }) (domain.Image, error) {
	var (
		img       domain.Image
		group     sql.NullString
		annotated sql.NullString
		size      string
	)
	if err := sc.Scan(&img.ID, &img.UID, &img.Name, &group, &img.CleanContent, &annotated, &size, &img.Width, &img.Height); err != nil {
		return img, err
	}
	img.Group = group.String
	img.AnnotatedContent = annotated.String
	sz, err := domain.ParseAnnotationSize(size)
	if err != nil {
		return img, fmt.Errorf("image %d: %w", img.ID, err)
	}
	img.Size = sz
	return img, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ImageSummary is an image row without its content.
type ImageSummary struct {
	ID          int64
	UID         string
	Name        string
	Group       string
	Width       int
	Height      int
	Size        domain.AnnotationSize
	Annotations int
}

// ListImages returns a lightweight listing ordered by id.
func (s *Store) ListImages(ctx context.Context) ([]ImageSummary, error) {
	rows, err := s.query(ctx, s.db, `SELECT i.id, i.uid, i.name, i.group_name, i.width, i.height, i.annotation_size,
		(SELECT COUNT(*) FROM annotations a WHERE a.image = i.id)
		FROM images i ORDER BY i.id`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()
	var out []ImageSummary
	for rows.Next() {
		var (
			r     ImageSummary
			group sql.NullString
			size  string
		)
		if err := rows.Scan(&r.ID, &r.UID, &r.Name, &group, &r.Width, &r.Height, &size, &r.Annotations); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		r.Group = group.String
		r.Size = domain.AnnotationSize(size)
		out = append(out, r)
	}
	return out, rows.Err()
}

// FetchImages loads every image with its annotations.
func (s *Store) FetchImages(ctx context.Context) ([]domain.Image, error) {
	rows, err := s.query(ctx, s.db, `SELECT `+imageColumns+` FROM images ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	var out []domain.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Annotations, err = s.fetchAnnotations(ctx, s.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FetchImage loads one image with its annotations.
func (s *Store) FetchImage(ctx context.Context, id int64) (domain.Image, error) {
	return s.fetchImage(ctx, s.db, id)
}

func (s *Store) fetchImage(ctx context.Context, q querier, id int64) (domain.Image, error) {
	img, err := scanImage(s.queryRow(ctx, q, `SELECT `+imageColumns+` FROM images WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Image{}, fmt.Errorf("image %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Image{}, fmt.Errorf("read image %d: %w", id, err)
	}
	if img.Annotations, err = s.fetchAnnotations(ctx, q, id); err != nil {
		return domain.Image{}, err
	}
	return img, nil
}

// CreateImage stores img and its annotations, assigning ids and uids.
func (s *Store) CreateImage(ctx context.Context, img domain.Image) (domain.Image, error) {
	l := applog.WithOperation(s.log, "create_image").With(slog.String("name", img.Name))
	if _, err := img.Size.StrokeWidth(); err != nil {
		return domain.Image{}, err
	}
	var out domain.Image
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		uid := img.UID
		if uid == "" {
			var err error
			if uid, err = s.uniqueUID(ctx, tx, "images"); err != nil {
				return err
			}
		}
		id, err := s.insertID(ctx, tx,
			`INSERT INTO images (uid, name, group_name, clean_content, annotated_content, annotation_size, width, height) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uid, img.Name, nullString(img.Group), img.CleanContent, nullString(img.AnnotatedContent), string(img.Size), img.Width, img.Height)
		if err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		for _, a := range img.Annotations {
			if _, err := s.createAnnotation(ctx, tx, id, a); err != nil {
				return err
			}
		}
		out, err = s.fetchImage(ctx, tx, id)
		return err
	})
	if err != nil {
		l.Error("create image failed", slog.Any("err", err))
		return domain.Image{}, err
	}
	l.Info("image created", slog.Int64("id", out.ID), slog.String("uid", out.UID))
	return out, nil
}

// UpdateImage writes the image fields and reconciles its annotations:
// annotations missing from img are deleted, unknown ones created and the
// rest updated.
func (s *Store) UpdateImage(ctx context.Context, img domain.Image) (domain.Image, error) {
	if _, err := img.Size.StrokeWidth(); err != nil {
		return domain.Image{}, err
	}
	var out domain.Image
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx,
			`UPDATE images SET name=?, group_name=?, clean_content=?, annotated_content=?, annotation_size=?, width=?, height=? WHERE id=?`,
			img.Name, nullString(img.Group), img.CleanContent, nullString(img.AnnotatedContent), string(img.Size), img.Width, img.Height, img.ID)
		if err != nil {
			return fmt.Errorf("update image %d: %w", img.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("image %d: %w", img.ID, ErrNotFound)
		}

		rows, err := s.query(ctx, tx, `SELECT id FROM annotations WHERE image=?`, img.ID)
		if err != nil {
			return fmt.Errorf("query annotations: %w", err)
		}
		known := map[int64]bool{}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return err
			}
			known[id] = true
		}
		if err := rows.Close(); err != nil {
			return err
		}

		keep := map[int64]bool{}
		for _, a := range img.Annotations {
			id := a.Base().ID
			if known[id] {
				keep[id] = true
				if err := s.updateAnnotation(ctx, tx, a); err != nil {
					return err
				}
				continue
			}
			if _, err := s.createAnnotation(ctx, tx, img.ID, a); err != nil {
				return err
			}
		}
		for id := range known {
			if !keep[id] {
				if err := s.deleteAnnotation(ctx, tx, id); err != nil {
					return err
				}
			}
		}
		out, err = s.fetchImage(ctx, tx, img.ID)
		return err
	})
	if err != nil {
		return domain.Image{}, err
	}
	applog.WithOperation(s.log, "update_image").Debug("image updated", slog.Int64("id", img.ID))
	return out, nil
}

// DeleteImage removes an image with all its annotations and nodes.
func (s *Store) DeleteImage(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, `DELETE FROM nodes WHERE annotation IN (SELECT id FROM annotations WHERE image=?)`, id); err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}
		if _, err := s.exec(ctx, tx, `DELETE FROM annotations WHERE image=?`, id); err != nil {
			return fmt.Errorf("delete annotations: %w", err)
		}
		res, err := s.exec(ctx, tx, `DELETE FROM images WHERE id=?`, id)
		if err != nil {
			return fmt.Errorf("delete image %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("image %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
