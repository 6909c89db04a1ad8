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
	"annotator/internal/vector"
)

const annotationColumns = `id, uid, type, label, label_position, special_node, permanent, tip`

type annotationRow struct {
	id        int64
	uid       string
	kind      string
	label     string
	side      string
	connector sql.NullInt64
	permanent bool
	tip       string
}

func scanAnnotationRow(sc interface{ Scan(...any) error }) (annotationRow, error) {
	var r annotationRow
	err := sc.Scan(&r.id, &r.uid, &r.kind, &r.label, &r.side, &r.connector, &r.permanent, &r.tip)
	return r, err
}

// build assembles an annotation from its row and nodes (ordered by id).
func (r annotationRow) build(nodes []domain.Node) (domain.Annotation, error) {
	kind, err := domain.ParseKind(r.kind)
	if err != nil {
		return nil, fmt.Errorf("annotation %d: %w", r.id, err)
	}
	side, err := vector.ParseOrientation(r.side)
	if err != nil {
		return nil, fmt.Errorf("annotation %d: %w", r.id, err)
	}
	tip, err := vector.ParseTipStyle(r.tip)
	if err != nil {
		return nil, fmt.Errorf("annotation %d: %w", r.id, err)
	}
	m := domain.Meta{ID: r.id, UID: r.uid, Label: r.label, Side: side, Permanent: r.permanent, Tip: tip}
	endpoints := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if r.connector.Valid && n.ID == r.connector.Int64 {
			c := n
			m.Connector = &c
			continue
		}
		endpoints = append(endpoints, n)
	}
	if kind == domain.KindBrace {
		b, err := domain.NewBrace(m, endpoints)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", r.id, err)
		}
		return b, nil
	}
	return domain.Line{Meta: m, Endpoints: endpoints}, nil
}

// FetchAnnotations returns the annotations of an image ordered by id.
func (s *Store) FetchAnnotations(ctx context.Context, imageID int64) ([]domain.Annotation, error) {
	return s.fetchAnnotations(ctx, s.db, imageID)
}

func (s *Store) fetchAnnotations(ctx context.Context, q querier, imageID int64) ([]domain.Annotation, error) {
	rows, err := s.query(ctx, q, `SELECT `+annotationColumns+` FROM annotations WHERE image=? ORDER BY id`, imageID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	var recs []annotationRow
	for rows.Next() {
		r, err := scanAnnotationRow(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	nodes, err := s.nodesByAnnotation(ctx, q,
		`SELECT n.id, n.annotation, n.x, n.y FROM nodes n JOIN annotations a ON a.id = n.annotation WHERE a.image=? ORDER BY n.id`, imageID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Annotation, 0, len(recs))
	for _, r := range recs {
		a, err := r.build(nodes[r.id])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) nodesByAnnotation(ctx context.Context, q querier, query string, args ...any) (map[int64][]domain.Node, error) {
	rows, err := s.query(ctx, q, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()
	out := map[int64][]domain.Node{}
	for rows.Next() {
		var n domain.Node
		var owner int64
		if err := rows.Scan(&n.ID, &owner, &n.X, &n.Y); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out[owner] = append(out[owner], n)
	}
	return out, rows.Err()
}

// FetchAnnotation loads one annotation with its nodes.
func (s *Store) FetchAnnotation(ctx context.Context, id int64) (domain.Annotation, error) {
	return s.fetchAnnotation(ctx, s.db, id)
}

func (s *Store) fetchAnnotation(ctx context.Context, q querier, id int64) (domain.Annotation, error) {
	r, err := scanAnnotationRow(s.queryRow(ctx, q, `SELECT `+annotationColumns+` FROM annotations WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("annotation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read annotation %d: %w", id, err)
	}
	nodes, err := s.nodesByAnnotation(ctx, q, `SELECT id, annotation, x, y FROM nodes WHERE annotation=? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	return r.build(nodes[id])
}

// AnnotationImage returns the id of the image owning an annotation.
func (s *Store) AnnotationImage(ctx context.Context, id int64) (int64, error) {
	var img int64
	err := s.queryRow(ctx, s.db, `SELECT image FROM annotations WHERE id=?`, id).Scan(&img)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("annotation %d: %w", id, ErrNotFound)
	}
	return img, err
}

// CreateAnnotation stores a new annotation under imageID together with its
// nodes. Node ids and the uid are assigned here; any ids on a are ignored.
func (s *Store) CreateAnnotation(ctx context.Context, imageID int64, a domain.Annotation) (domain.Annotation, error) {
	var out domain.Annotation
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := s.createAnnotation(ctx, tx, imageID, a)
		if err != nil {
			return err
		}
		out, err = s.fetchAnnotation(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	applog.WithOperation(s.log, "create_annotation").Debug("created",
		slog.Int64("image", imageID), slog.Int64("annotation", out.Base().ID))
	return out, nil
}

func (s *Store) createAnnotation(ctx context.Context, q querier, imageID int64, a domain.Annotation) (int64, error) {
	if err := domain.Validate(a); err != nil {
		return 0, err
	}
	m := a.Base()
	uid := m.UID
	if uid != "" {
		var n int
		if err := s.queryRow(ctx, q, `SELECT COUNT(*) FROM annotations WHERE uid=?`, uid).Scan(&n); err != nil {
			return 0, fmt.Errorf("check uid: %w", err)
		}
		if n > 0 {
			uid = ""
		}
	}
	if uid == "" {
		var err error
		if uid, err = s.uniqueUID(ctx, q, "annotations"); err != nil {
			return 0, err
		}
	}
	id, err := s.insertID(ctx, q,
		`INSERT INTO annotations (uid, type, label, label_position, image, permanent, tip) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uid, string(a.Kind()), m.Label, string(m.Side), imageID, m.Permanent, string(m.Tip))
	if err != nil {
		return 0, fmt.Errorf("insert annotation: %w", err)
	}
	for _, n := range domain.Endpoints(a) {
		if _, err := s.createNode(ctx, q, id, n.X, n.Y); err != nil {
			return 0, err
		}
	}
	if m.Connector != nil {
		cid, err := s.createNode(ctx, q, id, m.Connector.X, m.Connector.Y)
		if err != nil {
			return 0, err
		}
		if _, err := s.exec(ctx, q, `UPDATE annotations SET special_node=? WHERE id=?`, cid, id); err != nil {
			return 0, fmt.Errorf("set connector: %w", err)
		}
	}
	return id, nil
}

// UpdateAnnotation writes a's fields and reconciles its nodes: nodes with a
// known id are moved, new ones (id 0 or unknown) are inserted, and nodes no
// longer present are deleted.
func (s *Store) UpdateAnnotation(ctx context.Context, a domain.Annotation) (domain.Annotation, error) {
	var out domain.Annotation
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.updateAnnotation(ctx, tx, a); err != nil {
			return err
		}
		var err error
		out, err = s.fetchAnnotation(ctx, tx, a.Base().ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) updateAnnotation(ctx context.Context, q querier, a domain.Annotation) error {
	if err := domain.Validate(a); err != nil {
		return err
	}
	m := a.Base()
	res, err := s.exec(ctx, q,
		`UPDATE annotations SET type=?, label=?, label_position=?, permanent=?, tip=? WHERE id=?`,
		string(a.Kind()), m.Label, string(m.Side), m.Permanent, string(m.Tip), m.ID)
	if err != nil {
		return fmt.Errorf("update annotation %d: %w", m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("annotation %d: %w", m.ID, ErrNotFound)
	}

	existing, err := s.nodesByAnnotation(ctx, q, `SELECT id, annotation, x, y FROM nodes WHERE annotation=? ORDER BY id`, m.ID)
	if err != nil {
		return err
	}
	known := map[int64]bool{}
	for _, n := range existing[m.ID] {
		known[n.ID] = true
	}
	keep := map[int64]bool{}
	save := func(n domain.Node) (int64, error) {
		if known[n.ID] {
			keep[n.ID] = true
			_, err := s.exec(ctx, q, `UPDATE nodes SET x=?, y=? WHERE id=?`, n.X, n.Y, n.ID)
			return n.ID, err
		}
		id, err := s.createNode(ctx, q, m.ID, n.X, n.Y)
		keep[id] = true
		return id, err
	}
	for _, n := range domain.Endpoints(a) {
		if _, err := save(n); err != nil {
			return fmt.Errorf("save node: %w", err)
		}
	}
	var connector sql.NullInt64
	if m.Connector != nil {
		cid, err := save(*m.Connector)
		if err != nil {
			return fmt.Errorf("save connector: %w", err)
		}
		connector = sql.NullInt64{Int64: cid, Valid: true}
	}
	if _, err := s.exec(ctx, q, `UPDATE annotations SET special_node=? WHERE id=?`, connector, m.ID); err != nil {
		return fmt.Errorf("set connector: %w", err)
	}
	for id := range known {
		if !keep[id] {
			if _, err := s.exec(ctx, q, `DELETE FROM nodes WHERE id=?`, id); err != nil {
				return fmt.Errorf("delete node %d: %w", id, err)
			}
		}
	}
	return nil
}

// DeleteAnnotation removes an annotation and its nodes.
func (s *Store) DeleteAnnotation(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error { return s.deleteAnnotation(ctx, tx, id) })
}

func (s *Store) deleteAnnotation(ctx context.Context, q querier, id int64) error {
	if _, err := s.exec(ctx, q, `DELETE FROM nodes WHERE annotation=?`, id); err != nil {
		return fmt.Errorf("delete nodes: %w", err)
	}
	res, err := s.exec(ctx, q, `DELETE FROM annotations WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete annotation %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("annotation %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateNode appends a node to an annotation. On a line the node becomes the
// last endpoint; a brace refuses a third endpoint.
func (s *Store) CreateNode(ctx context.Context, annotationID int64, x, y float64) (domain.Node, error) {
	var n domain.Node
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		a, err := s.fetchAnnotation(ctx, tx, annotationID)
		if err != nil {
			return err
		}
		if a.Kind() == domain.KindBrace {
			return fmt.Errorf("annotation %d: %w: got 3", annotationID, domain.ErrMalformedBrace)
		}
		id, err := s.createNode(ctx, tx, annotationID, x, y)
		n = domain.Node{ID: id, X: x, Y: y}
		return err
	})
	return n, err
}

func (s *Store) createNode(ctx context.Context, q querier, annotationID int64, x, y float64) (int64, error) {
	id, err := s.insertID(ctx, q, `INSERT INTO nodes (annotation, x, y) VALUES (?, ?, ?)`, annotationID, x, y)
	if err != nil {
		return 0, fmt.Errorf("insert node: %w", err)
	}
	return id, nil
}

// UpdateNode moves a node.
func (s *Store) UpdateNode(ctx context.Context, n domain.Node) error {
	res, err := s.exec(ctx, s.db, `UPDATE nodes SET x=?, y=? WHERE id=?`, n.X, n.Y, n.ID)
	if err != nil {
		return fmt.Errorf("update node %d: %w", n.ID, err)
	}
	if c, _ := res.RowsAffected(); c == 0 {
		return fmt.Errorf("node %d: %w", n.ID, ErrNotFound)
	}
	return nil
}

// DeleteNode removes a node following domain.RemoveNode: the owning
// annotation is rewritten (brace to line, cleared connector) in the same
// transaction. Removing the last endpoint of a line fails with
// domain.ErrNoEndpoints.
func (s *Store) DeleteNode(ctx context.Context, id int64) (domain.Annotation, error) {
	var out domain.Annotation
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var owner int64
		err := s.queryRow(ctx, tx, `SELECT annotation FROM nodes WHERE id=?`, id).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("node %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		a, err := s.fetchAnnotation(ctx, tx, owner)
		if err != nil {
			return err
		}
		next, err := domain.RemoveNode(a, id)
		if err != nil {
			return err
		}
		if err := s.updateAnnotation(ctx, tx, next); err != nil {
			return err
		}
		out, err = s.fetchAnnotation(ctx, tx, owner)
		return err
	})
	return out, err
}

func (s *Store) uniqueUID(ctx context.Context, q querier, table string) (string, error) {
	for range 16 {
		uid := domain.NewUID()
		var n int
		if err := s.queryRow(ctx, q, `SELECT COUNT(*) FROM `+table+` WHERE uid=?`, uid).Scan(&n); err != nil {
			return "", fmt.Errorf("check uid: %w", err)
		}
		if n == 0 {
			return uid, nil
		}
	}
	return "", fmt.Errorf("no free uid in %s", table)
}
