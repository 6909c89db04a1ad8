/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"annotator/internal/config"
	"annotator/internal/crash"
	applog "annotator/internal/log"
	"annotator/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Annotator: label anatomy images with lines and braces")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  annotator version|-v|--version                       Show version")
	fmt.Fprintln(w, "  annotator import <file> [--size s] [--group g]         Import an image (jpg, png, gif, tiff, bmp)")
	fmt.Fprintln(w, "  annotator list                                         List images")
	fmt.Fprintln(w, "  annotator show <imageID>                               Show annotations in label order")
	fmt.Fprintln(w, "  annotator annotate <imageID> <side> x,y [x,y...]       Add a line annotation")
	fmt.Fprintln(w, "        [--connector x,y] [--label text] [--tip circle|arrow] [--brace] [--permanent]")
	fmt.Fprintln(w, "  annotator set <imageID> <annotationID> [--label t] [--side s] [--tip t] [--type line|brace] [--permanent=bool]")
	fmt.Fprintln(w, "  annotator remove <imageID> <annotationID>              Delete an annotation")
	fmt.Fprintln(w, "  annotator add-node <annotationID> x,y                  Append an endpoint")
	fmt.Fprintln(w, "  annotator move-node <imageID> <nodeID> x,y             Move a node")
	fmt.Fprintln(w, "  annotator delete-node <imageID> <nodeID>               Remove a node")
	fmt.Fprintln(w, "  annotator export <imageID> <out.svg|out.pdf> [--markers]")
	fmt.Fprintln(w, "  annotator export-all <dir>                             SVG per image plus anki.csv")
	fmt.Fprintln(w, "  annotator export-json <imageID> <file>                 Write annotations as JSON")
	fmt.Fprintln(w, "  annotator import-json <imageID> <file>                 Add annotations from JSON")
	fmt.Fprintln(w, "  annotator delete <imageID>                             Delete an image")
	fmt.Fprintln(w, "  annotator config [set-password <pw>|clear-password]    Show config or manage the database password")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	dir, _ := config.Dir()
	defer crash.Recover(dir, os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	_ = applog.Close()
	if code != 0 {
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code: 0 on success,
// 1 on failure, 2 on usage errors.
func run(ctx context.Context, args []string, out io.Writer) int {
	l := applog.WithComponent("cli")
	if len(args) == 0 {
		usage(out)
		return 2
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, version.String())
		return 0
	case "help", "-h", "--help":
		usage(out)
		return 0
	}

	cfg, password, err := config.Load()
	if err != nil {
		l.Error("load config failed", slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l = applog.WithComponent("cli")
	l.Debug("start", slog.String("cmd", args[0]), slog.Int("args", len(args)-1))

	a := &app{cfg: cfg, password: password, out: out, log: l}
	if err := a.dispatch(ctx, args[0], args[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(out, ue.Error())
			usage(out)
			return 2
		}
		l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	return 0
}
