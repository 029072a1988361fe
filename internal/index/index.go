// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jeranaias/rigtags/internal/config"
	"github.com/jeranaias/rigtags/internal/extract"
	"github.com/jeranaias/rigtags/internal/logging"
	"github.com/jeranaias/rigtags/internal/parsers"
	"github.com/jeranaias/rigtags/internal/store"
	"github.com/jeranaias/rigtags/internal/tags"
	"github.com/jeranaias/rigtags/internal/util"
	"github.com/jeranaias/rigtags/internal/writer"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNoInput         = errors.New("no input files")
	ErrInvalidPath     = errors.New("invalid path")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrEncoding        = errors.New("unsupported input encoding")
)

// getwd resolves the root_path recorded for a database run.
var getwd = os.Getwd

// =============================================================================
// INDEXER
// =============================================================================

// Program identifies the tool in the TAG_PROGRAM_* header records.
type Program struct {
	Name    string
	URL     string
	Version string
}

// Indexer runs the extraction pipeline for one configuration. The registry
// is frozen when New returns and is shared read-only by engine and writer.
type Indexer struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *tags.Registry
	engine  *extract.Engine
	w       writer.Writer
	defs    []*parsers.Definition
	enabled map[string]bool
	decoder encoding.Encoding
	program Program
	stdout  io.Writer
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Indexer) { ix.log = l }
}

// WithStdout sets where output "-" is written.
func WithStdout(w io.Writer) Option {
	return func(ix *Indexer) { ix.stdout = w }
}

// WithProgram sets the program identity written in the header.
func WithProgram(p Program) Option {
	return func(ix *Indexer) { ix.program = p }
}

// New builds the registry, installs the selected languages, applies the
// field selection and picks the output dialect.
func New(cfg *config.Config, opts ...Option) (*Indexer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ix := &Indexer{
		cfg:     cfg,
		log:     logging.Discard(),
		stdout:  os.Stdout,
		enabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(ix)
	}

	defs, err := selectLanguages(cfg.Input.Languages)
	if err != nil {
		return nil, err
	}
	ix.defs = defs
	for _, d := range defs {
		ix.enabled[d.Name] = true
	}

	ix.reg = tags.NewRegistry()
	ix.reg.PatternLengthLimit = cfg.Locate.PatternLengthLimit
	ix.engine = extract.New(ix.reg)
	if err := parsers.InstallAll(ix.engine, ix.reg, defs...); err != nil {
		return nil, fmt.Errorf("failed to install parsers: %w", err)
	}
	if cfg.Fields.Spec != "" {
		if err := ix.reg.ApplySpec(cfg.Fields.Spec); err != nil {
			return nil, fmt.Errorf("invalid field selection %q: %w", cfg.Fields.Spec, err)
		}
	}
	ix.reg.Freeze()

	ix.w, err = writer.New(cfg.Output.Format, ix.reg)
	if err != nil {
		return nil, err
	}

	if cfg.Input.Encoding != "" {
		enc, err := htmlindex.Get(cfg.Input.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrEncoding, cfg.Input.Encoding)
		}
		ix.decoder = enc
	}
	return ix, nil
}

func selectLanguages(names []string) ([]*parsers.Definition, error) {
	if len(names) == 0 {
		return parsers.All(), nil
	}
	var defs []*parsers.Definition
	seen := make(map[*parsers.Definition]bool)
	for _, name := range names {
		d := parsers.ForName(name)
		if d == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, name)
		}
		if !seen[d] {
			seen[d] = true
			defs = append(defs, d)
		}
	}
	return defs, nil
}

// Registry returns the frozen field registry of the run.
func (ix *Indexer) Registry() *tags.Registry {
	return ix.reg
}

// Writer returns the output dialect.
func (ix *Indexer) Writer() writer.Writer {
	return ix.w
}

// Languages returns the installed languages.
func (ix *Indexer) Languages() []*parsers.Definition {
	return ix.defs
}

// WriterOptions derives the stream options from the configuration.
func (ix *Indexer) WriterOptions() writer.Options {
	opts := writer.Options{
		ExtensionFields: ix.cfg.Fields.Extension,
		LineDirectives:  ix.cfg.Locate.LineDirectives,
		Backward:        ix.cfg.Locate.Backward,
	}
	if ix.cfg.Locate.Excmd == config.ExcmdCombine {
		opts.Locate = writer.LocateCombine
	}
	return opts
}

// Header returns the pseudo-tag header for the run.
func (ix *Indexer) Header() []writer.PseudoTag {
	h := writer.Header{
		ExtensionFields: ix.cfg.Fields.Extension,
		Sorted:          ix.cfg.Output.Sort,
		OutputMode:      ix.w.Name(),
		ProgramName:     ix.program.Name,
		ProgramURL:      ix.program.URL,
		ProgramVersion:  ix.program.Version,
	}
	if ix.decoder != nil {
		h.Encoding = "utf-8"
	}
	for _, d := range ix.defs {
		h.Languages = append(h.Languages, writer.LanguageKinds{Language: d.Name, Kinds: d.Kinds})
	}
	return writer.HeaderTags(h)
}

// =============================================================================
// RUN
// =============================================================================

// Result summarizes a run.
type Result struct {
	Files    int // files scanned
	Skipped  int // files without a usable language or over the size limit
	Entries  int // entries written
	Rejected int // entries the dialect refused
	Bytes    int64
	Output   string
	RunID    string // store run id, empty without a database
	Duration time.Duration
}

// scanned is one input file and its entries.
type scanned struct {
	path     string
	language string
	content  []byte
	fileID   int64
}

type item struct {
	entry tags.Entry
	file  int
}

// Run scans paths and writes the tag output. Entries rejected by the
// dialect are counted, logged once, and do not fail the run.
func (ix *Indexer) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	files, err := ix.collect(ctx, paths)
	if err != nil {
		return nil, err
	}

	res := &Result{Output: ix.cfg.Output.File}
	var inputs []scanned
	var items []item
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		in, entries, ok, err := ix.scanFile(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		for _, e := range entries {
			items = append(items, item{entry: e, file: len(inputs)})
		}
		inputs = append(inputs, in)
	}
	res.Files = len(inputs)

	if ix.cfg.Output.Sort {
		slices.SortStableFunc(items, func(a, b item) int {
			return cmp.Or(
				cmp.Compare(a.entry.Name, b.entry.Name),
				cmp.Compare(a.entry.InputFile, b.entry.InputFile),
				cmp.Compare(a.entry.Location.Line, b.entry.Location.Line),
			)
		})
	}

	var run *store.Run
	if ix.cfg.Database.Path != "" {
		st, err := store.Open(ix.cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		root, err := getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
		if run, err = st.BeginRun(ctx, root); err != nil {
			return nil, err
		}
		defer run.Rollback()
		for i := range inputs {
			if inputs[i].fileID, err = run.AddFile(ctx, inputs[i].path, inputs[i].language, inputs[i].content); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	sink := io.Writer(&buf)
	if ix.cfg.Output.File == "-" {
		sink = ix.stdout
	}

	stream := writer.NewStream(ix.w, sink, ix.WriterOptions())
	for _, p := range ix.Header() {
		if err := stream.WritePseudoTag(p); err != nil {
			return nil, err
		}
	}
	for i := range items {
		e := &items[i].entry
		accepted, err := stream.WriteEntry(e)
		if err != nil {
			return nil, err
		}
		if accepted && run != nil {
			if err := run.AddEntry(ctx, inputs[items[i].file].fileID, e); err != nil {
				return nil, err
			}
		}
	}
	hadRejections, err := stream.Close()
	if err != nil {
		return nil, err
	}

	stats := stream.Stats()
	res.Entries, res.Rejected, res.Bytes = stats.Written, stats.Rejected, stats.Bytes
	if hadRejections {
		ix.log.Warn("entries rejected by output format",
			"format", ix.w.Name(), "rejected", stats.Rejected, "written", stats.Written)
	}

	if ix.cfg.Output.File != "-" {
		if err := util.AtomicWriteFile(ix.cfg.Output.File, buf.Bytes(), 0644); err != nil {
			return nil, &writer.SinkError{Op: "write", Err: err}
		}
	}

	if run != nil {
		if err := run.Commit(); err != nil {
			return nil, err
		}
		res.RunID = run.ID()
	}

	res.Duration = time.Since(start)
	ix.log.Info("tag run complete",
		"files", res.Files, "skipped", res.Skipped, "entries", res.Entries, "output", res.Output, "elapsed", res.Duration)
	return res, nil
}

// scanFile reads, decodes and scans one file. ok is false when the file is
// skipped.
func (ix *Indexer) scanFile(path string) (in scanned, entries []tags.Entry, ok bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return in, nil, false, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if limit := ix.cfg.Input.MaxFileSize; limit > 0 && info.Size() > limit {
		ix.log.Debug("skipping large file", "path", path, "size", info.Size())
		return in, nil, false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return in, nil, false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content, err := ix.decode(raw)
	if err != nil {
		ix.log.Warn("skipping undecodable file", "path", path, "error", err)
		return in, nil, false, nil
	}

	def := ix.detect(path, content)
	if def == nil {
		ix.log.Debug("skipping file with no language", "path", path)
		return in, nil, false, nil
	}

	name := filepath.ToSlash(path)
	entries, err = ix.engine.Collect(def.Name, name, bytes.NewReader(content))
	if err != nil {
		ix.log.Warn("skipping unreadable file", "path", path, "error", err)
		return in, nil, false, nil
	}
	for i := range entries {
		ix.locate(&entries[i])
	}

	ix.log.Debug("scanned file", "path", path, "language", def.Name, "entries", len(entries))
	return scanned{path: name, language: def.Name, content: content}, entries, true, nil
}

// decode strips a byte-order mark and converts the configured input
// encoding to UTF-8.
func (ix *Indexer) decode(raw []byte) ([]byte, error) {
	fallback := transform.Transformer(transform.Nop)
	if ix.decoder != nil {
		fallback = ix.decoder.NewDecoder()
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), raw)
	return out, err
}

// detect picks the language of a file among the installed ones. Files with
// no extension fall back to content analysis, which covers "#!" scripts.
func (ix *Indexer) detect(path string, content []byte) *parsers.Definition {
	d := parsers.ForFile(path)
	if d == nil && filepath.Ext(path) == "" {
		head := content
		if len(head) > 4096 {
			head = head[:4096]
		}
		d = parsers.ForContent(string(head))
	}
	if d == nil || !ix.enabled[d.Name] {
		return nil
	}
	return d
}

// locate applies the excmd mode to an extracted entry.
func (ix *Indexer) locate(e *tags.Entry) {
	if ix.cfg.Locate.Excmd == config.ExcmdNumber {
		return
	}
	dir := tags.Forward
	if ix.cfg.Locate.Backward {
		dir = tags.Backward
	}
	e.Location = e.Location.Anchor(dir)
}
