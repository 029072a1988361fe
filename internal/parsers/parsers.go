// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/jeranaias/rigtags/internal/extract"
	"github.com/jeranaias/rigtags/internal/tags"
)

// ErrUnknownKind is returned when a rule names a kind letter its
// language does not declare.
var ErrUnknownKind = errors.New("rule references undeclared kind")

// =============================================================================
// DEFINITIONS
// =============================================================================

// FieldRef fills a field from a capture group. Name is a built-in field
// name or a field declared by the language.
type FieldRef struct {
	Name  string
	Group int
}

// Rule is one regex rule in declaration form.
type Rule struct {
	Pattern         string
	Name            int  // capture group holding the symbol name
	Kind            byte // letter of one of the language kinds
	CaseInsensitive bool
	Exclusive       bool

	ScopeGroup int  // 0 when the rule does not capture a scope
	ScopeKind  byte // kind letter of the captured scope
	Fields     []FieldRef
}

// Definition describes one language.
type Definition struct {
	Name       string
	Extensions []string // lowercase, without the dot
	Filenames  []string // exact base names such as "Makefile"
	Aliases    []string
	Kinds      []tags.Kind
	Fields     []tags.Definition
	Rules      []Rule

	// FirstMatchOnly stops at the first matching rule on each line.
	FirstMatchOnly bool
}

// Kind returns the kind declared with letter.
func (d *Definition) Kind(letter byte) (tags.Kind, bool) {
	for _, k := range d.Kinds {
		if k.Letter == letter {
			return k, true
		}
	}
	return tags.Kind{}, false
}

// Install registers the language fields in reg and its rules in en.
// reg must not be frozen.
func (d *Definition) Install(en *extract.Engine, reg *tags.Registry) error {
	for _, f := range d.Fields {
		f.Namespace = d.Name
		if _, err := reg.Register(f); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
	}

	for i, r := range d.Rules {
		spec, err := d.ruleSpec(reg, r)
		if err != nil {
			return fmt.Errorf("%s rule %d: %w", d.Name, i+1, err)
		}
		if err := en.RegisterRule(d.Name, spec); err != nil {
			return fmt.Errorf("%s rule %d: %w", d.Name, i+1, err)
		}
	}
	en.SetFirstMatchOnly(d.Name, d.FirstMatchOnly)
	return nil
}

func (d *Definition) ruleSpec(reg *tags.Registry, r Rule) (extract.RuleSpec, error) {
	kind, ok := d.Kind(r.Kind)
	if !ok {
		return extract.RuleSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	spec := extract.RuleSpec{
		Pattern:         r.Pattern,
		NameGroup:       r.Name,
		Kind:            kind,
		CaseInsensitive: r.CaseInsensitive,
		Exclusive:       r.Exclusive,
	}
	if r.ScopeGroup > 0 {
		sk, ok := d.Kind(r.ScopeKind)
		if !ok {
			return extract.RuleSpec{}, fmt.Errorf("%w: scope %q", ErrUnknownKind, r.ScopeKind)
		}
		spec.Scope = &extract.ScopeCapture{Group: r.ScopeGroup, Kind: sk}
	}
	for _, f := range r.Fields {
		id, ok := reg.ByName(d.Name, f.Name)
		if !ok {
			id, ok = reg.ByName("", f.Name)
		}
		if !ok {
			return extract.RuleSpec{}, fmt.Errorf("%w: %s", tags.ErrUnknownField, f.Name)
		}
		spec.Fields = append(spec.Fields, extract.FieldCapture{Field: id, Group: f.Group})
	}
	return spec, nil
}

// =============================================================================
// REGISTRY
// =============================================================================

var (
	byName     = map[string]*Definition{}
	byExt      = map[string]*Definition{}
	byFilename = map[string]*Definition{}
)

// Register adds a language. A later registration replaces an earlier one
// with the same name, extension, or file name.
func Register(d *Definition) {
	byName[strings.ToLower(d.Name)] = d
	for _, a := range d.Aliases {
		byName[strings.ToLower(a)] = d
	}
	for _, ext := range d.Extensions {
		byExt[strings.ToLower(ext)] = d
	}
	for _, fn := range d.Filenames {
		byFilename[fn] = d
	}
}

// ForName finds a language by name or alias, ignoring case.
func ForName(name string) *Definition {
	return byName[strings.ToLower(name)]
}

// ForExtension finds a language by file extension, with or without the dot.
func ForExtension(ext string) *Definition {
	return byExt[strings.ToLower(strings.TrimPrefix(ext, "."))]
}

// ForFile maps a path to a language: extension table, then exact file
// name, then the syntax highlighter's file name patterns.
func ForFile(path string) *Definition {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		if d := ForExtension(ext); d != nil {
			return d
		}
	}
	if d := byFilename[base]; d != nil {
		return d
	}
	return fromLexer(lexers.Match(base))
}

// ForContent guesses the language of text, typically from a "#!" line.
func ForContent(text string) *Definition {
	return fromLexer(lexers.Analyse(text))
}

func fromLexer(l chroma.Lexer) *Definition {
	if l == nil {
		return nil
	}
	cfg := l.Config()
	if d := ForName(cfg.Name); d != nil {
		return d
	}
	for _, a := range cfg.Aliases {
		if d := ForName(a); d != nil {
			return d
		}
	}
	return nil
}

// All returns every registered language sorted by name.
func All() []*Definition {
	seen := make(map[*Definition]bool)
	var out []*Definition
	for _, d := range byName {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// InstallAll installs defs, or every registered language when defs is empty.
func InstallAll(en *extract.Engine, reg *tags.Registry, defs ...*Definition) error {
	if len(defs) == 0 {
		defs = All()
	}
	for _, d := range defs {
		if err := d.Install(en, reg); err != nil {
			return err
		}
	}
	return nil
}
