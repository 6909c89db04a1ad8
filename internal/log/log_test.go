/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitWritesJSONFileWithStaticAndContextAttrs(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "annotator.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: fpath, Console: &console})
	t.Cleanup(func() { _ = Close() })

	ctx := ContextWith(context.Background(), slog.Int64("image", 42))
	WithOperation(WithComponent("storage"), "open").InfoContext(ctx, "db ready", slog.String("driver", "sqlite"))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	if m["app"] != "annotator" || m["component"] != "storage" || m["op"] != "open" {
		t.Fatalf("missing static attrs: %v", m)
	}
	if m["image"] != float64(42) || m["driver"] != "sqlite" {
		t.Fatalf("missing record/context attrs: %v", m)
	}
	if !strings.Contains(console.String(), "INF db ready") || !strings.Contains(console.String(), "image=42") {
		t.Fatalf("console output mismatch: %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ANN_LOG_LEVEL", "warn")
	t.Setenv("ANN_LOG_FORMAT", "json")
	t.Setenv("ANN_LOG_SOURCE", "TRUE")
	t.Setenv("ANN_LOG_FILE", "")
	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("ANN_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestLineHandler(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = &lineHandler{level: slog.LevelWarn, w: &buf}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be filtered at warn level")
	}
	h = h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Any("err", errors.New("bad thing")), slog.String("s", "two words"))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ERR boom", " k=v", " grp.n=42", " grp.pi=3.14", ` grp.err="bad thing"`, ` grp.s="two words"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}
