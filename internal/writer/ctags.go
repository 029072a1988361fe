// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"io"
	"strconv"
	"strings"

	"github.com/jeranaias/rigtags/internal/tags"
)

// extensionOrder is the fixed order of built-in fields after kind, line,
// and language. Scope, typeref and file are handled specially.
var extensionOrder = []tags.FieldID{
	tags.FieldInheritance,
	tags.FieldAccess,
	tags.FieldImplementation,
	tags.FieldSignature,
	tags.FieldRoles,
	tags.FieldExtras,
	tags.FieldXPath,
	tags.FieldEndLine,
}

// ctags holds the record layout shared by both dialects.
type ctags struct {
	reg *tags.Registry
	esc tags.Escaping
}

func (c *ctags) DefaultFileName() string {
	return DefaultFileName
}

func (c *ctags) Begin(opts Options) *State {
	return &State{opts: opts}
}

func (c *ctags) End(st *State) bool {
	return st.rejected
}

func (c *ctags) TreatFieldAsFixed(id tags.FieldID) bool {
	switch id {
	case tags.FieldName, tags.FieldInputFile, tags.FieldPattern:
		return true
	default:
		return c.reg.IsFixed(id)
	}
}

func (c *ctags) WritePseudoTag(out io.Writer, d PseudoTag) (int, error) {
	return io.WriteString(out, d.String())
}

// render returns the value of id, or ok=false when it does not apply.
func (c *ctags) render(id tags.FieldID, e *tags.Entry) (string, bool) {
	v, err := c.reg.Render(id, e, c.esc)
	if err != nil {
		return "", false
	}
	return v, true
}

// emit writes one record and counts it.
func (c *ctags) emit(out io.Writer, st *State, e *tags.Entry) (int, error) {
	rec := c.record(st.opts, e)
	n, err := io.WriteString(out, rec)
	if err == nil {
		st.entries++
	}
	return n, err
}

// record builds the full line for e, including the trailing newline.
func (c *ctags) record(opts Options, e *tags.Entry) string {
	var b strings.Builder

	name, _ := c.render(tags.FieldName, e)
	input, _ := c.render(tags.FieldInputFile, e)
	b.WriteString(name)
	b.WriteByte('\t')
	b.WriteString(input)
	b.WriteByte('\t')

	c.writeLocation(&b, opts, e)

	if opts.ExtensionFields {
		x := extensionBlock{b: &b}
		c.addExtensionFields(&x, e)
		c.addParserFields(&x, e)
	}

	b.WriteByte('\n')
	return b.String()
}

func (c *ctags) writeLocation(b *strings.Builder, opts Options, e *tags.Entry) {
	loc := e.Location
	if loc.IsLineOnly() {
		if opts.LineDirectives {
			if v, ok := c.render(tags.FieldLineNumber, e); ok {
				b.WriteString(v)
				return
			}
		}
		b.WriteString(strconv.FormatUint(loc.Line, 10))
		return
	}

	if opts.Locate == LocateCombine {
		delta := int64(-1)
		if opts.Backward {
			delta = 1
		}
		b.WriteString(strconv.FormatInt(int64(loc.Line)+delta, 10))
		b.WriteByte(';')
	}
	pattern, _ := c.render(tags.FieldPattern, e)
	b.WriteString(pattern)
}

// kindText picks the kind representation. long reports whether the long
// name was chosen.
func (c *ctags) kindText(k tags.Kind) (text string, long bool) {
	kindOn := c.reg.IsEnabled(tags.FieldKind)
	longOn := c.reg.IsEnabled(tags.FieldKindLong)

	switch {
	case k.Name != "" && (longOn || (kindOn && !k.HasLetter())):
		return k.Name, true
	case k.HasLetter() && (kindOn || (longOn && k.Name == "")):
		return string(k.Letter), false
	default:
		return "", false
	}
}

func (c *ctags) addExtensionFields(x *extensionBlock, e *tags.Entry) {
	if text, long := c.kindText(e.Kind); text != "" {
		key := ""
		if long || c.reg.IsEnabled(tags.FieldKindKey) {
			key = c.reg.Name(tags.FieldKindKey)
		}
		x.add(key, escapeKind(text))
	}

	if c.reg.IsEnabled(tags.FieldLineNumber) {
		if v, ok := c.render(tags.FieldLineNumber, e); ok {
			x.add(c.reg.Name(tags.FieldLineNumber), v)
		}
	}

	c.addField(x, tags.FieldLanguage, e)

	if c.reg.IsEnabled(tags.FieldScope) {
		k, kok := c.render(tags.FieldScopeKindLong, e)
		v, vok := c.render(tags.FieldScope, e)
		if kok && vok {
			if c.reg.IsEnabled(tags.FieldScopeKey) {
				x.add(c.reg.Name(tags.FieldScopeKey), k+":"+v)
			} else {
				x.add(k, v)
			}
		}
	}

	c.addField(x, tags.FieldTypeRef, e)

	// file: is a marker; its value is never written.
	if c.reg.IsEnabled(tags.FieldFileScope) && c.reg.HasValue(tags.FieldFileScope, e) {
		x.add(c.reg.Name(tags.FieldFileScope), "")
	}

	for _, id := range extensionOrder {
		c.addField(x, id, e)
	}
}

func (c *ctags) addField(x *extensionBlock, id tags.FieldID, e *tags.Entry) {
	if !c.reg.IsEnabled(id) {
		return
	}
	v, ok := c.render(id, e)
	if !ok || v == "" {
		return
	}
	x.add(c.reg.Name(id), v)
}

func (c *ctags) addParserFields(x *extensionBlock, e *tags.Entry) {
	e.Extensions.Each(func(id tags.FieldID, _ string) {
		if id.IsBuiltin() {
			return
		}
		c.addField(x, id, e)
	})
}

// escapeKind guards against kind names supplied by rule authors.
func escapeKind(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.NewReplacer("\t", `\t`, "\r", `\r`, "\n", `\n`).Replace(s)
}

// =============================================================================
// EXTENSION BLOCK
// =============================================================================

// extensionBlock writes the ;" marker before the first field only.
type extensionBlock struct {
	b       *strings.Builder
	started bool
}

// add writes "\tkey:value", or "\tvalue" when key is empty.
func (x *extensionBlock) add(key, value string) {
	if !x.started {
		x.b.WriteString(`;"`)
		x.started = true
	}
	x.b.WriteByte('\t')
	if key != "" {
		x.b.WriteString(key)
		x.b.WriteByte(':')
	}
	x.b.WriteString(value)
}
