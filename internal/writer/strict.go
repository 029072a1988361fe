// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"io"

	"github.com/jeranaias/rigtags/internal/tags"
)

// strictWriter produces records a line editor can always locate. Entries
// whose output fields contain a tab, carriage return, or newline are
// dropped and the stream is marked.
type strictWriter struct {
	ctags
}

func newStrict(reg *tags.Registry) *strictWriter {
	return &strictWriter{ctags{reg: reg, esc: tags.Escaped}}
}

func (w *strictWriter) Name() string { return "strict" }

func (w *strictWriter) WriteEntry(out io.Writer, st *State, e *tags.Entry) (int, error) {
	if w.hasTabChar(st.opts, e) {
		st.rejected = true
		return 0, nil
	}
	return w.emit(out, st, e)
}

// hasTabChar checks every field the record would carry.
func (w *strictWriter) hasTabChar(opts Options, e *tags.Entry) bool {
	reg := w.reg
	if reg.HasTabOrControlChar(tags.FieldName, e) || reg.HasTabOrControlChar(tags.FieldInputFile, e) {
		return true
	}

	if e.Location.IsLineOnly() {
		if opts.LineDirectives && reg.HasTabOrControlChar(tags.FieldLineNumber, e) {
			return true
		}
	} else if reg.HasTabOrControlChar(tags.FieldPattern, e) {
		return true
	}

	if !opts.ExtensionFields {
		return false
	}

	if reg.IsEnabled(tags.FieldScope) && reg.HasValue(tags.FieldScope, e) &&
		(reg.HasTabOrControlChar(tags.FieldScopeKindLong, e) || reg.HasTabOrControlChar(tags.FieldScope, e)) {
		return true
	}

	scan := []tags.FieldID{tags.FieldLanguage, tags.FieldTypeRef, tags.FieldFileScope}
	scan = append(scan, extensionOrder...)
	for _, id := range scan {
		if reg.IsEnabled(id) && reg.HasTabOrControlChar(id, e) {
			return true
		}
	}

	rejected := false
	e.Extensions.Each(func(id tags.FieldID, _ string) {
		if !rejected && !id.IsBuiltin() && reg.IsEnabled(id) && reg.HasTabOrControlChar(id, e) {
			rejected = true
		}
	})
	return rejected
}
