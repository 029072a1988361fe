// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"io"

	"github.com/jeranaias/rigtags/internal/tags"
)

// extendedWriter never rejects. Fields with a raw renderer are written
// unescaped; the rest fall back to escaped rendering.
type extendedWriter struct {
	ctags
}

func newExtended(reg *tags.Registry) *extendedWriter {
	return &extendedWriter{ctags{reg: reg, esc: tags.Raw}}
}

func (w *extendedWriter) Name() string { return "extended" }

func (w *extendedWriter) WriteEntry(out io.Writer, st *State, e *tags.Entry) (int, error) {
	return w.emit(out, st, e)
}

// End always reports false; the extended dialect tracks no rejections.
func (w *extendedWriter) End(st *State) bool {
	return false
}
