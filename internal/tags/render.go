// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tags

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// escapeControl rewrites control characters as backslash escapes so that a
// value can never terminate a field or a record.
func escapeControl(s string) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\t':
			b.WriteString(`\t`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\n':
			b.WriteString(`\n`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\x%02X`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// searchPattern renders a pattern-anchored location as an ex search command:
// /^line$/ forward, ?^line$? backward. Backslashes and the delimiter are
// escaped, and an embedded CR or LF is written as \r or \n so the record
// stays on one line. A line cut at PatternLengthLimit loses its trailing "$".
func (r *Registry) searchPattern(e *Entry) (string, bool) {
	loc := e.Location
	if loc.IsLineOnly() {
		return "", false
	}

	delim := byte('/')
	if loc.Direction == Backward {
		delim = '?'
	}

	text := strings.TrimRight(loc.Text, "\r\n")
	truncated := false
	if r.PatternLengthLimit > 0 && utf8.RuneCountInString(text) > r.PatternLengthLimit {
		n := 0
		for i := range text {
			if n == r.PatternLengthLimit {
				text = text[:i]
				break
			}
			n++
		}
		truncated = true
	}

	var b strings.Builder
	b.Grow(len(text) + 6)
	b.WriteByte(delim)
	b.WriteByte('^')
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '\r':
			b.WriteString(`\r`)
			continue
		case '\n':
			b.WriteString(`\n`)
			continue
		}
		last := i == len(text)-1
		if c == '\\' || c == delim || (c == '$' && last && !truncated) {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	if !truncated {
		b.WriteByte('$')
	}
	b.WriteByte(delim)
	return b.String(), true
}
