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
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	applog "annotator/internal/log"
	"annotator/internal/version"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// schemaVersion 1 is the base schema; 2 adds images.group_name; 3 adds annotations.tip.
const schemaVersion = 3

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type Options struct {
	Driver   string
	Path     string // sqlite file
	DSN      string // pgx connection string
	Password string // applied to the pgx config when the DSN has none
}

// Store is the record store for images, annotations and nodes. Every method
// takes a context and is safe for concurrent use through database/sql.
type Store struct {
	db      *sql.DB
	driver  string
	pgxName string
	log     *slog.Logger
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the configured database, creates the schema if needed and
// runs pending migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("driver", opts.Driver),
	)
	s := &Store{driver: opts.Driver, log: applog.WithComponent("storage")}
	switch opts.Driver {
	case DriverSQLite, "":
		s.driver = DriverSQLite
		if strings.TrimSpace(opts.Path) == "" {
			return nil, errors.New("sqlite path is required")
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(opts.Path))
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			l.Error("sqlite open failed", slog.Any("err", err))
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			l.Error("enable WAL failed", slog.Any("err", err))
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		s.db = db
	case DriverPgx:
		cfg, err := pgx.ParseConfig(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse dsn: %w", err)
		}
		if cfg.Password == "" && opts.Password != "" {
			cfg.Password = opts.Password
		}
		s.pgxName = stdlib.RegisterConnConfig(cfg)
		db, err := sql.Open("pgx", s.pgxName)
		if err != nil {
			stdlib.UnregisterConnConfig(s.pgxName)
			return nil, fmt.Errorf("open pgx: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			stdlib.UnregisterConnConfig(s.pgxName)
			l.Error("ping failed", slog.Any("err", err))
			return nil, fmt.Errorf("connect: %w", err)
		}
		s.db = db
	default:
		return nil, fmt.Errorf("unknown driver %q", opts.Driver)
	}

	if err := s.ensureSchema(ctx); err != nil {
		_ = s.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := s.runMigrations(ctx); err != nil {
		_ = s.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("store ready")
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.pgxName != "" {
		stdlib.UnregisterConnConfig(s.pgxName)
	}
	return err
}

// rebind rewrites ? placeholders into $n for postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPgx {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, q querier, query string, args ...any) (*sql.Rows, error) {
	return q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, q querier, query string, args ...any) *sql.Row {
	return q.QueryRowContext(ctx, s.rebind(query), args...)
}

// insertID runs an INSERT ... RETURNING id statement.
func (s *Store) insertID(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	var id int64
	if err := s.queryRow(ctx, q, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) idColumn() string {
	if s.driver == DriverPgx {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (s *Store) ensureSchema(ctx context.Context) error {
	id := s.idColumn()
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS images (
			id                ` + id + `,
			uid               TEXT NOT NULL UNIQUE,
			name              TEXT NOT NULL,
			clean_content     TEXT NOT NULL,
			annotated_content TEXT,
			annotation_size   TEXT NOT NULL,
			width             INTEGER NOT NULL,
			height            INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			id             ` + id + `,
			uid            TEXT NOT NULL UNIQUE,
			type           TEXT NOT NULL,
			label          TEXT NOT NULL,
			label_position TEXT NOT NULL,
			image          BIGINT NOT NULL REFERENCES images(id) ON DELETE CASCADE,
			special_node   BIGINT,
			permanent      BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id         ` + id + `,
			annotation BIGINT NOT NULL REFERENCES annotations(id) ON DELETE CASCADE,
			x          DOUBLE PRECISION NOT NULL,
			y          DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_annotations_image ON annotations(image)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_annotation ON nodes(annotation)`,
	}
	for _, q := range ddl {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := s.queryRow(ctx, s.db, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh databases start at 1 so the column migrations run uniformly.
		if _, err := s.exec(ctx, s.db, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := s.exec(ctx, s.db, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// migrations add columns introduced after the base schema. Each step is
// guarded by hasColumn so databases altered by hand still upgrade cleanly.
var migrations = map[int]struct{ table, column, ddl string }{
	2: {"images", "group_name", `ALTER TABLE images ADD COLUMN group_name TEXT`},
	3: {"annotations", "tip", `ALTER TABLE annotations ADD COLUMN tip TEXT NOT NULL DEFAULT 'circle'`},
}

func (s *Store) runMigrations(ctx context.Context) error {
	var cur int
	if err := s.queryRow(ctx, s.db, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		m, ok := migrations[next]
		err := s.inTx(ctx, func(tx *sql.Tx) error {
			if ok {
				has, err := s.hasColumn(ctx, tx, m.table, m.column)
				if err != nil {
					return err
				}
				if !has {
					if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
						return fmt.Errorf("migration %d: %w", next, err)
					}
				}
			}
			_, err := s.exec(ctx, tx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339))
			return err
		})
		if err != nil {
			return err
		}
		s.log.Info("migrated", slog.Int("schema", next))
		cur = next
	}
	return nil
}

// SchemaVersion reports the schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.queryRow(ctx, s.db, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

func (s *Store) hasColumn(ctx context.Context, q querier, table, column string) (bool, error) {
	var query string
	if s.driver == DriverPgx {
		query = `SELECT COUNT(*) FROM information_schema.columns WHERE table_name=? AND column_name=?`
	} else {
		query = `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name=?`
	}
	var n int
	if err := s.queryRow(ctx, q, query, table, column).Scan(&n); err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}
