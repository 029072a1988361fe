// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tags

import (
	"errors"
	"strings"
)

var (
	ErrEmptyName  = errors.New("tag entry has an empty name")
	ErrEmptyInput = errors.New("tag entry has an empty input file")
)

// =============================================================================
// KIND
// =============================================================================

// KindNull marks a kind without a single-letter form.
const KindNull byte = 0

// Kind is the category of a symbol (function, class, anchor, ...).
type Kind struct {
	Letter      byte   // KindNull when the kind has no letter
	Name        string // long name, empty when absent
	Description string
}

// HasLetter reports whether the kind has a single-letter form.
func (k Kind) HasLetter() bool {
	return k.Letter != KindNull
}

// Renderable reports whether at least one of letter or long name is present.
func (k Kind) Renderable() bool {
	return k.Letter != KindNull || k.Name != ""
}

// String returns "l,name" the way kind definitions are listed.
func (k Kind) String() string {
	letter := "-"
	if k.HasLetter() {
		letter = string(k.Letter)
	}
	return letter + "," + k.Name
}

// =============================================================================
// LOCATION
// =============================================================================

// Direction is the search direction of a pattern-anchored location.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Location is either line-only or pattern-anchored. The line number is
// always available; Text is the raw source line captured at extraction time.
type Location struct {
	Line      uint64
	Text      string
	Direction Direction
	anchored  bool
}

// LineOnly returns a location addressed purely by line number.
func LineOnly(line uint64) Location {
	return Location{Line: line}
}

// PatternAnchored returns a location addressed by a search pattern built
// from text. line is kept for combine-mode output.
func PatternAnchored(text string, line uint64, dir Direction) Location {
	return Location{Line: line, Text: text, Direction: dir, anchored: true}
}

// IsLineOnly reports whether the location is addressed by line number.
func (l Location) IsLineOnly() bool {
	return !l.anchored
}

// Anchor converts the location into a pattern-anchored one using the
// captured source text.
func (l Location) Anchor(dir Direction) Location {
	return PatternAnchored(l.Text, l.Line, dir)
}

// =============================================================================
// SCOPE
// =============================================================================

// Scope is the enclosing symbol of an entry. Parent links outward.
type Scope struct {
	Kind   Kind
	Name   string
	Parent *Scope
}

// FullName joins the chain from the outermost scope inward with ".".
func (s *Scope) FullName() string {
	if s == nil {
		return ""
	}
	var parts []string
	for cur := s; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// =============================================================================
// EXTENSION VALUES
// =============================================================================

// Extensions maps field ids to values, keeping first-insertion order.
// The zero value is ready to use.
type Extensions struct {
	ids    []FieldID
	values map[FieldID]string
}

// Set stores v under id. Re-setting a key keeps its original position.
func (x *Extensions) Set(id FieldID, v string) {
	if x.values == nil {
		x.values = make(map[FieldID]string)
	}
	if _, ok := x.values[id]; !ok {
		x.ids = append(x.ids, id)
	}
	x.values[id] = v
}

// Get returns the value stored under id.
func (x *Extensions) Get(id FieldID) (string, bool) {
	v, ok := x.values[id]
	return v, ok
}

// Has reports whether id has been set.
func (x *Extensions) Has(id FieldID) bool {
	_, ok := x.values[id]
	return ok
}

// Len returns the number of stored values.
func (x *Extensions) Len() int {
	return len(x.ids)
}

// Each calls fn for every value in insertion order.
func (x *Extensions) Each(fn func(id FieldID, v string)) {
	for _, id := range x.ids {
		fn(id, x.values[id])
	}
}

// Clone returns an independent copy.
func (x *Extensions) Clone() Extensions {
	var c Extensions
	x.Each(c.Set)
	return c
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one extracted symbol.
type Entry struct {
	Name       string
	InputFile  string
	Language   string
	Kind       Kind
	Location   Location
	Scope      *Scope
	Extensions Extensions
}

// Validate checks the invariants every written entry must satisfy.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.InputFile == "" {
		return ErrEmptyInput
	}
	return nil
}

// Clone returns a deep copy of the entry's mutable parts.
func (e *Entry) Clone() Entry {
	c := *e
	c.Extensions = e.Extensions.Clone()
	return c
}
