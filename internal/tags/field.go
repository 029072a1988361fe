// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tags

import "strconv"

// =============================================================================
// FIELD IDENTITIES
// =============================================================================

// FieldID identifies a field. Built-in ids are stable constants; parser
// fields are allocated by Registry.Register after them.
type FieldID int

// FieldUnknown is returned by lookups that find nothing.
const FieldUnknown FieldID = -1

const (
	FieldName FieldID = iota
	FieldInputFile
	FieldPattern
	FieldKind
	FieldKindLong
	FieldKindKey
	FieldLineNumber
	FieldLanguage
	FieldScope
	FieldScopeKey
	FieldScopeKindLong
	FieldTypeRef
	FieldFileScope
	FieldInheritance
	FieldAccess
	FieldImplementation
	FieldSignature
	FieldRoles
	FieldExtras
	FieldXPath
	FieldEndLine

	builtinFieldCount
)

// IsBuiltin reports whether id is one of the catalog fields.
func (id FieldID) IsBuiltin() bool {
	return id >= 0 && id < builtinFieldCount
}

// Escaping selects between the escaped and the raw renderer.
type Escaping int

const (
	Escaped Escaping = iota
	Raw
)

// =============================================================================
// FIELD DEFINITION
// =============================================================================

// valueFunc extracts the unescaped value of a field. ok is false when the
// field does not apply to the entry.
type valueFunc func(r *Registry, e *Entry) (v string, ok bool)

// Definition describes one field.
type Definition struct {
	ID          FieldID
	Letter      byte   // one-letter selector, 0 for parser fields
	Name        string // display name, used as the "name:" key in records
	Description string
	Namespace   string // language name for parser fields, empty for built-ins
	Enabled     bool
	Fixed       bool

	// NoEscapeRenderer marks fields whose value may be written raw by
	// dialects that allow it.
	NoEscapeRenderer bool

	value     valueFunc
	verbatim  bool // value is already in final form, never escaped
	noTabScan bool // HasTabOrControlChar always reports false
	flagOnly  bool // controls formatting, never has a value
	extension bool // value is read from Entry.Extensions
}

// QualifiedName returns "Namespace.Name" for parser fields and Name otherwise.
func (d Definition) QualifiedName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

func extensionValue(id FieldID) valueFunc {
	return func(_ *Registry, e *Entry) (string, bool) {
		return e.Extensions.Get(id)
	}
}

func builtinCatalog() []Definition {
	return []Definition{
		{ID: FieldName, Letter: 'N', Name: "name", Description: "tag name", Fixed: true, Enabled: true, NoEscapeRenderer: true,
			value: func(_ *Registry, e *Entry) (string, bool) { return e.Name, e.Name != "" }},
		{ID: FieldInputFile, Letter: 'F', Name: "input", Description: "input file", Fixed: true, Enabled: true, NoEscapeRenderer: true,
			value: func(_ *Registry, e *Entry) (string, bool) { return e.InputFile, e.InputFile != "" }},
		{ID: FieldPattern, Letter: 'P', Name: "pattern", Description: "pattern", Fixed: true, Enabled: true,
			value: (*Registry).searchPattern, verbatim: true, noTabScan: true},
		{ID: FieldKind, Letter: 'k', Name: "kind", Description: "kind of tag as one-letter", Enabled: true,
			value: func(_ *Registry, e *Entry) (string, bool) {
				if !e.Kind.HasLetter() {
					return "", false
				}
				return string(e.Kind.Letter), true
			}},
		{ID: FieldKindLong, Letter: 'K', Name: "kind", Description: "kind of tag as full name",
			value: func(_ *Registry, e *Entry) (string, bool) { return e.Kind.Name, e.Kind.Name != "" }},
		{ID: FieldKindKey, Letter: 'z', Name: "kind", Description: `include the "kind:" key in kind field`, flagOnly: true},
		{ID: FieldLineNumber, Letter: 'n', Name: "line", Description: "line number of tag definition", verbatim: true,
			value: func(_ *Registry, e *Entry) (string, bool) {
				if e.Location.Line == 0 {
					return "", false
				}
				return strconv.FormatUint(e.Location.Line, 10), true
			}},
		{ID: FieldLanguage, Letter: 'l', Name: "language", Description: "language of input file containing tag",
			value: func(_ *Registry, e *Entry) (string, bool) { return e.Language, e.Language != "" }},
		{ID: FieldScope, Letter: 's', Name: "scope", Description: "scope of tag definition", Enabled: true, NoEscapeRenderer: true,
			value: func(_ *Registry, e *Entry) (string, bool) {
				if e.Scope == nil || e.Scope.Name == "" {
					return "", false
				}
				return e.Scope.FullName(), true
			}},
		{ID: FieldScopeKey, Letter: 'Z', Name: "scope", Description: `include the "scope:" key in scope field`, flagOnly: true},
		{ID: FieldScopeKindLong, Letter: 'p', Name: "scopeKind", Description: "kind of scope as full name",
			value: func(_ *Registry, e *Entry) (string, bool) {
				if e.Scope == nil || e.Scope.Kind.Name == "" {
					return "", false
				}
				return e.Scope.Kind.Name, true
			}},
		{ID: FieldTypeRef, Letter: 't', Name: "typeref", Description: "type and name of a variable or typedef", Enabled: true, NoEscapeRenderer: true,
			value: extensionValue(FieldTypeRef), extension: true},
		{ID: FieldFileScope, Letter: 'f', Name: "file", Description: "file-restricted scoping", Enabled: true,
			value: extensionValue(FieldFileScope), extension: true},
		{ID: FieldInheritance, Letter: 'i', Name: "inherits", Description: "inheritance information",
			value: extensionValue(FieldInheritance), extension: true},
		{ID: FieldAccess, Letter: 'a', Name: "access", Description: "access (or export) of class members",
			value: extensionValue(FieldAccess), extension: true},
		{ID: FieldImplementation, Letter: 'm', Name: "implementation", Description: "implementation information",
			value: extensionValue(FieldImplementation), extension: true},
		{ID: FieldSignature, Letter: 'S', Name: "signature", Description: "signature of routine", NoEscapeRenderer: true,
			value: extensionValue(FieldSignature), extension: true},
		{ID: FieldRoles, Letter: 'r', Name: "roles", Description: "roles",
			value: extensionValue(FieldRoles), extension: true},
		{ID: FieldExtras, Letter: 'E', Name: "extras", Description: "extra tag type information",
			value: extensionValue(FieldExtras), extension: true},
		{ID: FieldXPath, Letter: 'x', Name: "xpath", Description: "xpath for the tag",
			value: extensionValue(FieldXPath), extension: true},
		{ID: FieldEndLine, Letter: 'e', Name: "end", Description: "end lines of various items", verbatim: true,
			value: extensionValue(FieldEndLine), extension: true},
	}
}
