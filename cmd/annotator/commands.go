/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"annotator/internal/config"
	"annotator/internal/domain"
	"annotator/internal/editstate"
	"annotator/internal/export"
	"annotator/internal/imaging"
	"annotator/internal/interchange"
	"annotator/internal/layout"
	"annotator/internal/render"
	"annotator/internal/storage"
	"annotator/internal/textlayout"
	"annotator/internal/vector"
)

type app struct {
	cfg      config.AppConfig
	password string
	out      io.Writer
	log      *slog.Logger
	store    *storage.Store
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	if cmd == "config" {
		return a.configCmd(args)
	}
	handlers := map[string]func(context.Context, []string) error{
		"import":      a.importImage,
		"list":        a.list,
		"show":        a.show,
		"annotate":    a.annotate,
		"set":         a.set,
		"remove":      a.remove,
		"add-node":    a.addNode,
		"move-node":   a.moveNode,
		"delete-node": a.deleteNode,
		"export":      a.export,
		"export-all":  a.exportAll,
		"export-json": a.exportJSON,
		"import-json": a.importJSON,
		"delete":      a.deleteImage,
	}
	h, ok := handlers[cmd]
	if !ok {
		return usagef("unknown command %q", cmd)
	}
	st, err := storage.Open(ctx, storage.Options{
		Driver:   a.cfg.Storage.Driver,
		Path:     a.cfg.Storage.Path,
		DSN:      a.cfg.Storage.DSN,
		Password: a.password,
	})
	if err != nil {
		return err
	}
	defer st.Close()
	a.store = st
	return h(ctx, args)
}

// session loads an image into a fresh edit state with it selected.
func (a *app) session(ctx context.Context, imageID int64) (editstate.State, error) {
	img, err := a.store.FetchImage(ctx, imageID)
	if err != nil {
		return editstate.State{}, err
	}
	s, err := editstate.Reduce(editstate.State{}, editstate.AddImage{Image: img})
	if err != nil {
		return s, err
	}
	return editstate.Reduce(s, editstate.SetImage{ID: imageID})
}

// apply runs actions on s and persists the selected image.
func (a *app) apply(ctx context.Context, s editstate.State, actions ...editstate.Action) (domain.Image, error) {
	var err error
	for _, act := range actions {
		if s, err = editstate.Reduce(s, act); err != nil {
			return domain.Image{}, err
		}
	}
	img, ok := s.SelectedImage()
	if !ok {
		return domain.Image{}, editstate.ErrNoImageSelected
	}
	return a.store.UpdateImage(ctx, img)
}

func (a *app) importImage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	size := fs.String("size", string(domain.SizeMedium), "annotation size: small|medium|large")
	group := fs.String("group", "", "group name")
	name := fs.String("name", "", "display name (defaults to the file name)")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return usagef("import requires <file>")
	}
	sz, err := domain.ParseAnnotationSize(*size)
	if err != nil {
		return usagef("%v", err)
	}
	im, err := imaging.Import(pos[0], imaging.Options{MaxEdge: a.cfg.Import.MaxEdge, Quality: a.cfg.Import.Quality})
	if err != nil {
		return err
	}
	if *name == "" {
		*name = im.Filename
	}
	img, err := a.store.CreateImage(ctx, domain.Image{
		Name:         *name,
		Group:        *group,
		CleanContent: im.Content,
		Width:        im.Width,
		Height:       im.Height,
		Size:         sz,
	})
	if err != nil {
		return err
	}
	if im.Downsized {
		fmt.Fprintln(a.out, "Image has been downsized!")
	}
	fmt.Fprintf(a.out, "Imported image %d (%s) %dx%d\n", img.ID, img.UID, img.Width, img.Height)
	return nil
}

func (a *app) list(ctx context.Context, _ []string) error {
	rows, err := a.store.ListImages(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUID\tNAME\tGROUP\tSIZE\tDIMENSIONS\tANNOTATIONS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%dx%d\t%d\n", r.ID, r.UID, r.Name, r.Group, r.Size, r.Width, r.Height, r.Annotations)
	}
	return tw.Flush()
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("show requires <imageID>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	img, err := a.store.FetchImage(ctx, id)
	if err != nil {
		return err
	}
	sorted, err := layout.SortAnnotations(img.Annotations, float64(img.Width), float64(img.Height))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s) %dx%d %s\n", img.Name, img.UID, img.Width, img.Height, img.Size)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTYPE\tSIDE\tTIP\tLABEL\tNODES")
	for i, an := range sorted {
		m := an.Base()
		label := m.DisplayLabel()
		if m.Permanent {
			label += " (permanent)"
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n", i+1, m.ID, an.Kind(), m.Side, m.Tip,
			strings.ReplaceAll(label, "\n", `\n`), formatNodes(an))
	}
	return tw.Flush()
}

func formatNodes(an domain.Annotation) string {
	var parts []string
	for _, n := range domain.Endpoints(an) {
		parts = append(parts, fmt.Sprintf("%d@%s,%s", n.ID, vector.Num(n.X), vector.Num(n.Y)))
	}
	if c := an.Base().Connector; c != nil {
		parts = append(parts, fmt.Sprintf("connector %d@%s,%s", c.ID, vector.Num(c.X), vector.Num(c.Y)))
	}
	return strings.Join(parts, " ")
}

func (a *app) annotate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	connector := fs.String("connector", "", "connector point x,y")
	label := fs.String("label", "", "label text (\\n breaks lines)")
	tip := fs.String("tip", string(vector.TipCircle), "endpoint tip: circle|arrow")
	brace := fs.Bool("brace", false, "draw a brace between exactly two points")
	permanent := fs.Bool("permanent", false, "mark as permanent (not quizzed)")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) < 3 {
		return usagef("annotate requires <imageID> <side> and at least one point")
	}
	id, err := parseID(pos[0])
	if err != nil {
		return err
	}
	side, err := vector.ParseOrientation(pos[1])
	if err != nil {
		return usagef("%v", err)
	}
	ts, err := vector.ParseTipStyle(*tip)
	if err != nil {
		return usagef("%v", err)
	}

	var d editstate.Draft
	for _, p := range pos[2:] {
		v, err := parsePoint(p)
		if err != nil {
			return err
		}
		d = d.Place(v)
	}
	if *connector != "" {
		v, err := parsePoint(*connector)
		if err != nil {
			return err
		}
		d = d.PlaceConnector(v)
	}
	line, err := d.Commit(side, ts)
	if err != nil {
		return err
	}
	line.Label = strings.ReplaceAll(*label, `\n`, "\n")
	line.Permanent = *permanent
	var an domain.Annotation = line
	if *brace {
		if an, err = domain.ToBrace(line); err != nil {
			return err
		}
	}

	s, err := a.session(ctx, id)
	if err != nil {
		return err
	}
	before := len(s.Images[0].Annotations)
	img, err := a.apply(ctx, s, editstate.AddAnnotation{Annotation: an})
	if err != nil {
		return err
	}
	if len(img.Annotations) > before {
		created := img.Annotations[len(img.Annotations)-1]
		fmt.Fprintf(a.out, "Created %s annotation %d (%s)\n", created.Kind(), created.Base().ID, created.Base().UID)
	}
	return nil
}

func (a *app) set(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	label := fs.String("label", "", "new label")
	side := fs.String("side", "", "new label side")
	tip := fs.String("tip", "", "new tip style")
	kind := fs.String("type", "", "convert to line|brace")
	var permanent optionalBool
	fs.Var(&permanent, "permanent", "permanent flag")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return usagef("set requires <imageID> <annotationID>")
	}
	imageID, err := parseID(pos[0])
	if err != nil {
		return err
	}
	annID, err := parseID(pos[1])
	if err != nil {
		return err
	}
	s, err := a.session(ctx, imageID)
	if err != nil {
		return err
	}
	if s, err = editstate.Reduce(s, editstate.SetAnnotation{ID: annID}); err != nil {
		return err
	}
	an, _ := s.SelectedAnnotation()
	m := an.Base()
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "label" {
			m.Label = strings.ReplaceAll(*label, `\n`, "\n")
		}
	})
	if *side != "" {
		if m.Side, err = vector.ParseOrientation(*side); err != nil {
			return usagef("%v", err)
		}
	}
	if *tip != "" {
		if m.Tip, err = vector.ParseTipStyle(*tip); err != nil {
			return usagef("%v", err)
		}
	}
	if permanent.set {
		m.Permanent = permanent.val
	}
	an = domain.WithMeta(an, m)
	if *kind != "" {
		k, err := domain.ParseKind(*kind)
		if err != nil {
			return usagef("%v", err)
		}
		if an, err = domain.Convert(an, k); err != nil {
			return err
		}
	}
	if _, err := a.apply(ctx, s, editstate.UpdateAnnotation{Annotation: an}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated annotation %d\n", annID)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usagef("remove requires <imageID> <annotationID>")
	}
	imageID, err := parseID(args[0])
	if err != nil {
		return err
	}
	annID, err := parseID(args[1])
	if err != nil {
		return err
	}
	s, err := a.session(ctx, imageID)
	if err != nil {
		return err
	}
	if _, err := a.apply(ctx, s, editstate.RemoveAnnotation{ID: annID}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed annotation %d\n", annID)
	return nil
}

func (a *app) addNode(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usagef("add-node requires <annotationID> x,y")
	}
	annID, err := parseID(args[0])
	if err != nil {
		return err
	}
	p, err := parsePoint(args[1])
	if err != nil {
		return err
	}
	n, err := a.store.CreateNode(ctx, annID, p.X, p.Y)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added node %d\n", n.ID)
	return nil
}

// owner finds the annotation holding node id.
func owner(img domain.Image, id int64) (int64, bool) {
	for _, an := range img.Annotations {
		for _, n := range domain.Nodes(an) {
			if n.ID == id {
				return an.Base().ID, true
			}
		}
	}
	return 0, false
}

func (a *app) nodeSession(ctx context.Context, imageArg, nodeArg string) (editstate.State, int64, error) {
	imageID, err := parseID(imageArg)
	if err != nil {
		return editstate.State{}, 0, err
	}
	nodeID, err := parseID(nodeArg)
	if err != nil {
		return editstate.State{}, 0, err
	}
	s, err := a.session(ctx, imageID)
	if err != nil {
		return s, 0, err
	}
	annID, ok := owner(s.Images[0], nodeID)
	if !ok {
		return s, 0, fmt.Errorf("node %d: %w", nodeID, domain.ErrNodeNotFound)
	}
	if s, err = editstate.Reduce(s, editstate.SetAnnotation{ID: annID}); err != nil {
		return s, 0, err
	}
	s, err = editstate.Reduce(s, editstate.SetNode{ID: nodeID})
	return s, nodeID, err
}

func (a *app) moveNode(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usagef("move-node requires <imageID> <nodeID> x,y")
	}
	p, err := parsePoint(args[2])
	if err != nil {
		return err
	}
	s, nodeID, err := a.nodeSession(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if _, err := a.apply(ctx, s, editstate.UpdateNode{Node: domain.Node{ID: nodeID, X: p.X, Y: p.Y}}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Moved node %d\n", nodeID)
	return nil
}

func (a *app) deleteNode(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usagef("delete-node requires <imageID> <nodeID>")
	}
	s, nodeID, err := a.nodeSession(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if _, err := a.apply(ctx, s, editstate.RemoveNode{ID: nodeID}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed node %d\n", nodeID)
	return nil
}

// renderOptions builds scene options from the config.
func (a *app) renderOptions() (render.Options, error) {
	pal, err := render.ParsePalette(render.HexColors(a.cfg.Render.Colors))
	if err != nil {
		return render.Options{}, err
	}
	lib := textlayout.NewFontLibrary()
	family := a.cfg.Render.FontFamily
	if f := a.cfg.Render.FontFile; f != "" {
		if err := lib.LoadFile(family, f); err != nil {
			return render.Options{}, fmt.Errorf("load font: %w", err)
		}
	}
	return render.Options{
		Rendering:  true,
		Palette:    &pal,
		Measurer:   textlayout.NewFaceMeasurer(lib, family),
		FontFamily: family,
	}, nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	markers := fs.Bool("markers", false, "include construction markers")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return usagef("export requires <imageID> <out.svg|out.pdf>")
	}
	id, err := parseID(pos[0])
	if err != nil {
		return err
	}
	img, err := a.store.FetchImage(ctx, id)
	if err != nil {
		return err
	}
	opts, err := a.renderOptions()
	if err != nil {
		return err
	}
	opts.Markers = *markers
	sc, err := render.BuildScene(img, opts)
	if err != nil {
		return err
	}

	outPath := pos[1]
	var data []byte
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".svg":
		if data, err = export.SVG(sc); err != nil {
			return err
		}
	case ".pdf":
		var pdfOpt export.PDFOptions
		pdfOpt.Title = img.Name
		if f := a.cfg.Render.FontFile; f != "" {
			if pdfOpt.FontTTF, err = os.ReadFile(f); err != nil {
				return fmt.Errorf("read font: %w", err)
			}
		}
		var buf bytes.Buffer
		if err := export.PDF(sc, &buf, pdfOpt); err != nil {
			return err
		}
		data = buf.Bytes()
	default:
		return usagef("unsupported export format %q", filepath.Ext(outPath))
	}
	if err := storage.SaveFile(outPath, data); err != nil {
		return err
	}
	a.log.Info("exported", slog.Int64("image", id), slog.String("path", outPath))
	fmt.Fprintf(a.out, "Exported %s\n", outPath)
	return nil
}

func (a *app) exportAll(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("export-all requires <dir>")
	}
	images, err := a.store.FetchImages(ctx)
	if err != nil {
		return err
	}
	opts, err := a.renderOptions()
	if err != nil {
		return err
	}
	files, err := export.Batch(images, opts)
	if err != nil {
		return err
	}
	if err := storage.SaveFiles(args[0], files); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d images to %s\n", len(images), args[0])
	return nil
}

func (a *app) exportJSON(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usagef("export-json requires <imageID> <file>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	img, err := a.store.FetchImage(ctx, id)
	if err != nil {
		return err
	}
	data, err := interchange.Encode(interchange.FromImage(img))
	if err != nil {
		return err
	}
	if err := storage.SaveFile(args[1], data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d annotations to %s\n", len(img.Annotations), args[1])
	return nil
}

func (a *app) importJSON(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usagef("import-json requires <imageID> <file>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	doc, err := interchange.Decode(data)
	if err != nil {
		return err
	}
	if _, err := a.store.FetchImage(ctx, id); err != nil {
		return err
	}
	for _, an := range doc.Annotations {
		if _, err := a.store.CreateAnnotation(ctx, id, an); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Imported %d annotations\n", len(doc.Annotations))
	return nil
}

func (a *app) deleteImage(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usagef("delete requires <imageID>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := a.store.DeleteImage(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted image %d\n", id)
	return nil
}

func (a *app) configCmd(args []string) error {
	if len(args) == 0 {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Config:", path)
		fmt.Fprintln(a.out, "Storage:", a.cfg.Storage.Driver, a.cfg.Storage.Path+a.cfg.Storage.DSN)
		for _, key := range []string{"storage.driver", "storage.path", "storage.dsn", "import.max_edge", "render.font_file", "logging.level"} {
			if env, ok := config.EnvOverrideFor(key); ok {
				fmt.Fprintf(a.out, "  %s overridden by %s\n", key, env)
			}
		}
		return nil
	}
	switch args[0] {
	case "set-password":
		if len(args) != 2 {
			return usagef("config set-password requires <pw>")
		}
		if err := config.Save(a.cfg, args[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Password stored in the system keychain")
		return nil
	case "clear-password":
		return config.ClearPassword()
	}
	return usagef("unknown config command %q", args[0])
}
