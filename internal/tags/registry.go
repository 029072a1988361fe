// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tags

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDuplicateField = errors.New("duplicate field")
	ErrUnknownField   = errors.New("unknown field")
	ErrNoValue        = errors.New("field has no value")
	ErrFrozen         = errors.New("field registry is frozen")
)

// DefaultPatternLengthLimit is the number of characters of a source line kept
// in a search pattern.
const DefaultPatternLengthLimit = 96

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the catalog of fields for one run. It is not safe for
// concurrent mutation; once frozen it is read-only and may be shared.
type Registry struct {
	defs   []Definition
	byName map[string]FieldID
	frozen bool

	// PatternLengthLimit caps the characters of a source line used in a
	// search pattern. Zero means no limit.
	PatternLengthLimit int
}

// NewRegistry returns a registry holding the built-in catalog with the
// default enablement.
func NewRegistry() *Registry {
	r := &Registry{
		byName:             make(map[string]FieldID),
		PatternLengthLimit: DefaultPatternLengthLimit,
	}
	for _, def := range builtinCatalog() {
		r.defs = append(r.defs, def)
		// Kind/KindLong/KindKey share "kind"; the first one owns the name.
		if _, ok := r.byName[def.Name]; !ok {
			r.byName[def.Name] = def.ID
		}
	}
	return r
}

func nameKey(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return strings.ToLower(namespace) + "." + name
}

// Register adds a parser field and returns its id. The display name must be
// unique within the namespace.
func (r *Registry) Register(def Definition) (FieldID, error) {
	if r.frozen {
		return FieldUnknown, ErrFrozen
	}
	if def.Name == "" {
		return FieldUnknown, fmt.Errorf("%w: empty name", ErrUnknownField)
	}
	key := nameKey(def.Namespace, def.Name)
	if _, ok := r.byName[key]; ok {
		return FieldUnknown, fmt.Errorf("%w: %s", ErrDuplicateField, def.QualifiedName())
	}

	id := FieldID(len(r.defs))
	def.ID = id
	def.Fixed = false
	def.Letter = 0
	def.value = extensionValue(id)
	def.verbatim = false
	def.noTabScan = false
	def.flagOnly = false
	def.extension = true

	r.defs = append(r.defs, def)
	r.byName[key] = id
	return id, nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}

func (r *Registry) def(id FieldID) (*Definition, bool) {
	if id < 0 || int(id) >= len(r.defs) {
		return nil, false
	}
	return &r.defs[id], true
}

// IsExtension reports whether id takes its value from Entry.Extensions,
// the only fields a parser can fill by id.
func (r *Registry) IsExtension(id FieldID) bool {
	d, ok := r.def(id)
	return ok && d.extension
}

// Lookup returns a copy of the definition for id.
func (r *Registry) Lookup(id FieldID) (Definition, bool) {
	d, ok := r.def(id)
	if !ok {
		return Definition{}, false
	}
	return *d, true
}

// ByName finds a field by display name within a namespace. An empty
// namespace searches the built-ins.
func (r *Registry) ByName(namespace, name string) (FieldID, bool) {
	id, ok := r.byName[nameKey(namespace, name)]
	return id, ok
}

// ByLetter finds a built-in field by its one-letter selector.
func (r *Registry) ByLetter(letter byte) (FieldID, bool) {
	for _, d := range r.defs {
		if d.Letter != 0 && d.Letter == letter {
			return d.ID, true
		}
	}
	return FieldUnknown, false
}

// Fields returns copies of all definitions in id order.
func (r *Registry) Fields() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Name returns the display name of id, or "" when unknown.
func (r *Registry) Name(id FieldID) string {
	if d, ok := r.def(id); ok {
		return d.Name
	}
	return ""
}

// IsFixed reports whether id is always rendered.
func (r *Registry) IsFixed(id FieldID) bool {
	d, ok := r.def(id)
	return ok && d.Fixed
}

// IsEnabled reports whether id will be rendered. Fixed fields are always enabled.
func (r *Registry) IsEnabled(id FieldID) bool {
	d, ok := r.def(id)
	return ok && (d.Fixed || d.Enabled)
}

// SetEnabled toggles a field. Fixed fields ignore the request.
func (r *Registry) SetEnabled(id FieldID, on bool) error {
	if r.frozen {
		return ErrFrozen
	}
	d, ok := r.def(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownField, id)
	}
	if d.Fixed {
		return nil
	}
	d.Enabled = on
	return nil
}

// SetEnabledByName toggles a field by "name" or "Language.name".
func (r *Registry) SetEnabledByName(qualified string, on bool) error {
	ns, name := "", qualified
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		ns, name = qualified[:i], qualified[i+1:]
	}
	id, ok := r.ByName(ns, name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, qualified)
	}
	return r.SetEnabled(id, on)
}

// ApplySpec applies a field selection in the classic letter syntax.
// "+n-k" adjusts the current state; "nks" (no leading sign) first disables
// every optional field. Long names go in braces: "+{line}{Go.receiver}".
func (r *Registry) ApplySpec(spec string) error {
	if r.frozen {
		return ErrFrozen
	}
	if spec == "" {
		return nil
	}
	if spec[0] != '+' && spec[0] != '-' {
		for i := range r.defs {
			if !r.defs[i].Fixed {
				r.defs[i].Enabled = false
			}
		}
	}

	on := true
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		switch c {
		case '+':
			on = true
		case '-':
			on = false
		case '*':
			for j := range r.defs {
				if !r.defs[j].Fixed {
					r.defs[j].Enabled = on
				}
			}
		case '{':
			end := strings.IndexByte(spec[i:], '}')
			if end < 0 {
				return fmt.Errorf("%w: unterminated field name in %q", ErrUnknownField, spec)
			}
			if err := r.SetEnabledByName(spec[i+1:i+end], on); err != nil {
				return err
			}
			i += end
		default:
			id, ok := r.ByLetter(c)
			if !ok {
				return fmt.Errorf("%w: letter %q", ErrUnknownField, c)
			}
			if err := r.SetEnabled(id, on); err != nil {
				return err
			}
		}
	}
	return nil
}

// =============================================================================
// RENDERING
// =============================================================================

// HasValue reports whether id applies to e.
func (r *Registry) HasValue(id FieldID, e *Entry) bool {
	d, ok := r.def(id)
	if !ok || d.flagOnly || d.value == nil {
		return false
	}
	_, has := d.value(r, e)
	return has
}

// HasRawRenderer reports whether id declares an unescaped renderer.
func (r *Registry) HasRawRenderer(id FieldID) bool {
	d, ok := r.def(id)
	return ok && d.NoEscapeRenderer
}

// Render produces the textual value of id for e. It returns ErrNoValue when
// the field does not apply, and ErrUnknownField for an unknown id. Raw
// output is only produced for fields with a raw renderer.
func (r *Registry) Render(id FieldID, e *Entry, esc Escaping) (string, error) {
	d, ok := r.def(id)
	if !ok {
		return "", fmt.Errorf("%w: id %d", ErrUnknownField, id)
	}
	if d.flagOnly || d.value == nil {
		return "", ErrNoValue
	}
	v, has := d.value(r, e)
	if !has {
		return "", ErrNoValue
	}
	if d.verbatim || (esc == Raw && d.NoEscapeRenderer) {
		return v, nil
	}
	return escapeControl(v), nil
}

// HasTabOrControlChar reports whether the raw value of id would break a
// tab-delimited, newline-terminated record. Fields without a value, and the
// pattern field, report false.
func (r *Registry) HasTabOrControlChar(id FieldID, e *Entry) bool {
	d, ok := r.def(id)
	if !ok || d.noTabScan || d.flagOnly || d.value == nil {
		return false
	}
	v, has := d.value(r, e)
	return has && strings.ContainsAny(v, "\t\r\n")
}
