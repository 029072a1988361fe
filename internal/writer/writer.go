// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jeranaias/rigtags/internal/tags"
)

// DefaultFileName is the tag database name used when the host gives none.
const DefaultFileName = "tags"

// ErrUnknownWriter is returned by New for an unregistered dialect name.
var ErrUnknownWriter = errors.New("unknown output format")

// =============================================================================
// OPTIONS AND STATE
// =============================================================================

// Locate selects how pattern-anchored locations are written.
type Locate int

const (
	// LocatePlain writes the search pattern alone.
	LocatePlain Locate = iota
	// LocateCombine writes "<line>;<pattern>".
	LocateCombine
)

// String returns the name used on the command line.
func (l Locate) String() string {
	if l == LocateCombine {
		return "combine"
	}
	return "plain"
}

// Options is the configuration surface read once at stream begin.
type Options struct {
	ExtensionFields bool // append the ;" extension block
	LineDirectives  bool // render line-only locations through the line field
	Backward        bool // combine-mode offsets assume backward search
	Locate          Locate
}

// State is the per-stream bookkeeping returned by Begin.
type State struct {
	opts     Options
	rejected bool
	entries  int
}

// Options returns the options captured at Begin.
func (s *State) Options() Options {
	return s.opts
}

// Rejected reports whether any entry has been rejected so far.
func (s *State) Rejected() bool {
	return s.rejected
}

// Entries returns the number of records written so far.
func (s *State) Entries() int {
	return s.entries
}

// =============================================================================
// WRITER INTERFACE
// =============================================================================

// Writer is one output dialect.
type Writer interface {
	// Name identifies the dialect ("strict", "extended").
	Name() string

	// DefaultFileName is the output file used when the host names none.
	DefaultFileName() string

	// Begin allocates per-stream state. opts is fixed for the stream.
	Begin(opts Options) *State

	// WriteEntry writes one record to out and returns the bytes written.
	// A rejected entry writes nothing and returns (0, nil). The only
	// error returned is a failure of out.
	WriteEntry(out io.Writer, st *State, e *tags.Entry) (int, error)

	// WritePseudoTag writes one header record.
	WritePseudoTag(out io.Writer, d PseudoTag) (int, error)

	// End closes the stream state and reports whether any entry was rejected.
	End(st *State) bool

	// TreatFieldAsFixed reports whether id is part of the fixed record prefix.
	TreatFieldAsFixed(id tags.FieldID) bool
}

// =============================================================================
// DIALECT REGISTRY
// =============================================================================

type constructor func(reg *tags.Registry) Writer

var dialects = map[string]constructor{
	"strict":   func(reg *tags.Registry) Writer { return newStrict(reg) },
	"extended": func(reg *tags.Registry) Writer { return newExtended(reg) },
}

// DefaultFormat is the dialect used when none is requested.
const DefaultFormat = "strict"

// New returns the dialect called name bound to reg. An empty name selects
// DefaultFormat.
func New(name string, reg *tags.Registry) (Writer, error) {
	if name == "" {
		name = DefaultFormat
	}
	ctor, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownWriter, name, strings.Join(Formats(), ", "))
	}
	return ctor(reg), nil
}

// Formats lists the dialect names in sorted order.
func Formats() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
