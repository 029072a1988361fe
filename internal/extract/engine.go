// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/jeranaias/rigtags/internal/tags"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUnknownLanguage = errors.New("no rules registered for language")
	ErrBadGroup        = errors.New("capture group out of range")
	ErrBadPattern      = errors.New("invalid rule pattern")
)

// =============================================================================
// RULES
// =============================================================================

// ScopeCapture fills the entry scope from a capture group.
type ScopeCapture struct {
	Group int
	Kind  tags.Kind
}

// FieldCapture fills an extension field from a capture group.
type FieldCapture struct {
	Field tags.FieldID
	Group int
}

// RuleSpec declares one extraction rule.
type RuleSpec struct {
	Pattern         string
	NameGroup       int
	Kind            tags.Kind
	CaseInsensitive bool

	// Exclusive stops rule evaluation for the line when this rule matches.
	Exclusive bool

	Scope  *ScopeCapture
	Fields []FieldCapture
}

type rule struct {
	RuleSpec
	re *regexp.Regexp
}

type language struct {
	name           string
	rules          []rule
	firstMatchOnly bool
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine holds the rule tables for every language. Register all rules
// before scanning; scanning only reads the tables.
type Engine struct {
	reg   *tags.Registry
	langs map[string]*language
}

// New returns an empty engine. reg validates field captures.
func New(reg *tags.Registry) *Engine {
	return &Engine{
		reg:   reg,
		langs: make(map[string]*language),
	}
}

func (en *Engine) language(name string, create bool) *language {
	key := strings.ToLower(name)
	l, ok := en.langs[key]
	if !ok && create {
		l = &language{name: name}
		en.langs[key] = l
	}
	return l
}

// RegisterRule compiles spec and appends it to the rules of lang.
func (en *Engine) RegisterRule(lang string, spec RuleSpec) error {
	pattern := spec.Pattern
	if spec.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadPattern, lang, err)
	}

	groups := re.NumSubexp()
	checkGroup := func(what string, g int) error {
		if g < 1 || g > groups {
			return fmt.Errorf("%w: %s group %d, pattern %q has %d", ErrBadGroup, what, g, spec.Pattern, groups)
		}
		return nil
	}
	if err := checkGroup("name", spec.NameGroup); err != nil {
		return err
	}
	if spec.Scope != nil {
		if err := checkGroup("scope", spec.Scope.Group); err != nil {
			return err
		}
	}
	for _, fc := range spec.Fields {
		if err := checkGroup("field", fc.Group); err != nil {
			return err
		}
		if _, ok := en.reg.Lookup(fc.Field); !ok {
			return fmt.Errorf("%w: id %d in %s rule", tags.ErrUnknownField, fc.Field, lang)
		}
		if !en.reg.IsExtension(fc.Field) {
			return fmt.Errorf("%w: %s is not an extension field, in %s rule",
				tags.ErrUnknownField, en.reg.Name(fc.Field), lang)
		}
	}

	l := en.language(lang, true)
	l.rules = append(l.rules, rule{RuleSpec: spec, re: re})
	return nil
}

// SetFirstMatchOnly makes lang stop at the first matching rule per line.
func (en *Engine) SetFirstMatchOnly(lang string, on bool) {
	en.language(lang, true).firstMatchOnly = on
}

// Languages returns the registered language names, sorted.
func (en *Engine) Languages() []string {
	out := make([]string, 0, len(en.langs))
	for _, l := range en.langs {
		out = append(out, l.name)
	}
	sort.Strings(out)
	return out
}

// RuleCount returns the number of rules registered for lang.
func (en *Engine) RuleCount(lang string) int {
	if l := en.language(lang, false); l != nil {
		return len(l.rules)
	}
	return 0
}

// Scan returns a scanner over r. path becomes the input file of every
// entry. An unknown language yields a scanner whose Err is
// ErrUnknownLanguage.
func (en *Engine) Scan(lang, path string, r io.Reader) *Scanner {
	l := en.language(lang, false)
	if l == nil {
		return &Scanner{done: true, err: fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)}
	}
	return newScanner(l, path, r)
}

// Collect scans r to the end and returns every entry.
func (en *Engine) Collect(lang, path string, r io.Reader) ([]tags.Entry, error) {
	s := en.Scan(lang, path, r)
	var out []tags.Entry
	for e := range s.All() {
		out = append(out, e)
	}
	return out, s.Err()
}

// matchLine applies the rules of l to one line.
func (l *language) matchLine(path string, lineNo uint64, text string, out []tags.Entry) []tags.Entry {
	for i := range l.rules {
		r := &l.rules[i]
		m := r.re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}

		if name := group(text, m, r.NameGroup); name != "" {
			loc := tags.LineOnly(lineNo)
			loc.Text = text
			e := tags.Entry{
				Name:      name,
				InputFile: path,
				Language:  l.name,
				Kind:      r.Kind,
				Location:  loc,
			}
			if r.Scope != nil {
				if s := group(text, m, r.Scope.Group); s != "" {
					e.Scope = &tags.Scope{Kind: r.Scope.Kind, Name: s}
				}
			}
			for _, fc := range r.Fields {
				if v := group(text, m, fc.Group); v != "" {
					e.Extensions.Set(fc.Field, v)
				}
			}
			out = append(out, e)
		}

		if r.Exclusive || l.firstMatchOnly {
			break
		}
	}
	return out
}

// group returns the text of capture g, or "" when it did not participate.
func group(text string, m []int, g int) string {
	if 2*g+1 >= len(m) || m[2*g] < 0 {
		return ""
	}
	return text[m[2*g]:m[2*g+1]]
}
