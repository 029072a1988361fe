// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigtags/internal/store"
	"github.com/jeranaias/rigtags/internal/tagfile"
	"github.com/jeranaias/rigtags/internal/util"
)

// maxSignatureWidth bounds the signature column of the store table.
const maxSignatureWidth = 48

type lookupOptions struct {
	prefix bool
	search bool
	kinds  []string
	max    int
	json   bool
}

func (a *app) lookupCommand() *cobra.Command {
	var opts lookupOptions
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "Find a symbol in the tag file or the tag database",
		Long: `Find symbols by name. With --db (or database.path in the config) the
SQLite mirror written by the last run is queried; otherwise the tag file
named by --output is read and matching records are printed as written.`,
		Example: `  rigtags lookup NewServer
  rigtags lookup --prefix --kind f Serve
  rigtags --db .rigtags/tags.db lookup --search "http handler"`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Database.Path != "" {
				return a.lookupStore(cmd, args[0], opts)
			}
			if opts.search {
				return NewValidationErrorWithExample("--search", "", "full-text search needs a tag database",
					"rigtags --db tags.db lookup --search NAME")
			}
			return a.lookupTagFile(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.prefix, "prefix", false, "match names starting with NAME")
	f.BoolVar(&opts.search, "search", false, "full-text search over names and signatures (database only)")
	f.StringSliceVarP(&opts.kinds, "kind", "k", nil, "only these kinds, by letter or name")
	f.IntVar(&opts.max, "max", 0, "stop after this many matches, 0 for all")
	f.BoolVar(&opts.json, "json", false, "print matches as JSON")
	return cmd
}

// =============================================================================
// TAG FILE
// =============================================================================

func (a *app) lookupTagFile(cmd *cobra.Command, name string, opts lookupOptions) error {
	path := a.cfg.Output.File
	if path == "-" {
		return NewValidationError("--output", path, "lookup needs a tag file, not stdout")
	}
	tf, err := tagfile.Load(path)
	if err != nil {
		return NewCommandError("lookup", "could not read tag file", err)
	}
	if tf.Skipped > 0 {
		a.log.Warn("malformed tag file lines skipped", "file", path, "count", tf.Skipped)
	}

	var recs []tagfile.Record
	if opts.prefix {
		recs = tf.LookupPrefix(name)
	} else {
		recs = tf.Lookup(name)
	}
	recs = filterRecords(recs, opts.kinds)
	if opts.max > 0 && len(recs) > opts.max {
		recs = recs[:opts.max]
	}
	if len(recs) == 0 {
		return &NotFoundError{Resource: "symbol", ID: name}
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, recs)
	}
	for i := range recs {
		if _, err := io.WriteString(out, recs[i].String()); err != nil {
			return err
		}
	}
	return nil
}

// filterRecords keeps records whose kind, as a letter or a kind: field,
// is in kinds.
func filterRecords(recs []tagfile.Record, kinds []string) []tagfile.Record {
	if len(kinds) == 0 {
		return recs
	}
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []tagfile.Record
	for _, r := range recs {
		if want[r.Kind] {
			out = append(out, r)
			continue
		}
		if k, ok := r.Field("kind"); ok && want[k] {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// DATABASE
// =============================================================================

func (a *app) lookupStore(cmd *cobra.Command, name string, opts lookupOptions) error {
	st, err := store.Open(a.cfg.Database.Path)
	if err != nil {
		return NewCommandError("lookup", "could not open tag database", err)
	}
	defer st.Close()

	lo := &store.LookupOptions{
		Prefix:     opts.prefix,
		Kinds:      opts.kinds,
		Languages:  a.cfg.Input.Languages,
		MaxResults: opts.max,
	}
	var syms []store.Symbol
	if opts.search {
		syms, err = st.Search(cmd.Context(), name, lo)
	} else {
		syms, err = st.Lookup(cmd.Context(), name, lo)
	}
	if err != nil {
		return NewCommandError("lookup", "query failed", err)
	}
	if len(syms) == 0 {
		return &NotFoundError{Resource: "symbol", ID: name}
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, syms)
	}
	t := newTable("NAME", "KIND", "LOCATION", "SCOPE", "SIGNATURE")
	for _, s := range syms {
		kind := s.Kind
		if kind == "" {
			kind = s.KindLetter
		}
		loc := s.Path
		if s.Line > 0 {
			loc += ":" + strconv.FormatUint(s.Line, 10)
		}
		scope := s.Scope
		if scope != "" && s.ScopeKind != "" {
			scope = fmt.Sprintf("%s %s", s.ScopeKind, s.Scope)
		}
		t.add(s.Name, kind, loc, scope, util.TruncateWidth(s.Signature, maxSignatureWidth))
	}
	return t.render(out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
