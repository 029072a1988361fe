// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tagfile

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jeranaias/rigtags/internal/writer"
)

var (
	ErrTooFewFields = errors.New("invalid tag record: too few fields")
	ErrBadAddress   = errors.New("invalid tag record: malformed address")
	ErrNotPseudoTag = errors.New("not a pseudo-tag record")
)

const extensionMarker = `;"`

// Field is one extension field. Key is empty for a bare value such as a
// kind letter.
type Field struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Record is one symbol line of a tag file.
type Record struct {
	Name    string  `json:"name"`
	File    string  `json:"file"`
	Address string  `json:"address"`           // as written: "12", "/^x$/" or "11;/^x$/"
	Line    uint64  `json:"line,omitempty"`    // numeric part of the address, or the line: field
	Pattern string  `json:"pattern,omitempty"` // search pattern with delimiters, empty for line-only addresses
	Kind    string  `json:"kind,omitempty"`
	Fields  []Field `json:"fields,omitempty"`
}

// Field returns the value of the first field with the given key.
func (r *Record) Field(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// String renders the record in the form it was read, with a trailing newline.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	b.WriteByte('\t')
	b.WriteString(r.File)
	b.WriteByte('\t')
	b.WriteString(r.Address)
	if len(r.Fields) > 0 {
		b.WriteString(extensionMarker)
		for _, f := range r.Fields {
			b.WriteByte('\t')
			if f.Key != "" {
				b.WriteString(f.Key)
				b.WriteByte(':')
			}
			b.WriteString(f.Value)
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// ParseRecord parses one symbol line. The trailing newline is optional.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimSuffix(line, "\n")

	name, rest, ok := strings.Cut(line, "\t")
	if !ok || name == "" {
		return Record{}, ErrTooFewFields
	}
	file, rest, ok := strings.Cut(rest, "\t")
	if !ok || file == "" || rest == "" {
		return Record{}, ErrTooFewFields
	}

	rec := Record{Name: name, File: file}
	end, err := scanAddress(&rec, rest)
	if err != nil {
		return Record{}, err
	}
	rec.Address = rest[:end]
	rest = rest[end:]

	if rest == "" {
		return rec, nil
	}
	if !strings.HasPrefix(rest, extensionMarker) {
		return Record{}, ErrBadAddress
	}
	rest = strings.TrimPrefix(rest, extensionMarker)
	if rest == "" {
		return rec, nil
	}
	if rest[0] != '\t' {
		return Record{}, ErrBadAddress
	}

	for i, seg := range strings.Split(rest[1:], "\t") {
		key, value, ok := strings.Cut(seg, ":")
		if !ok {
			// A bare leading value is the kind letter.
			rec.Fields = append(rec.Fields, Field{Value: seg})
			if i == 0 {
				rec.Kind = seg
			}
			continue
		}
		rec.Fields = append(rec.Fields, Field{Key: key, Value: value})
		switch key {
		case "kind":
			rec.Kind = value
		case "line":
			if n, err := strconv.ParseUint(value, 10, 64); err == nil {
				rec.Line = n
			}
		}
	}
	return rec, nil
}

// scanAddress parses the address at the start of s and returns its length.
func scanAddress(rec *Record, s string) (int, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 {
		n, err := strconv.ParseUint(s[:i], 10, 64)
		if err != nil {
			return 0, ErrBadAddress
		}
		rec.Line = n
		// "N;/pattern/" combines both forms.
		if i+1 < len(s) && s[i] == ';' && (s[i+1] == '/' || s[i+1] == '?') {
			end, err := scanPattern(s[i+1:])
			if err != nil {
				return 0, err
			}
			rec.Pattern = s[i+1 : i+1+end]
			return i + 1 + end, nil
		}
		return i, nil
	}

	if s[0] != '/' && s[0] != '?' {
		return 0, ErrBadAddress
	}
	end, err := scanPattern(s)
	if err != nil {
		return 0, err
	}
	rec.Pattern = s[:end]
	return end, nil
}

// scanPattern finds the closing delimiter of the search pattern at the start
// of s, honoring backslash escapes.
func scanPattern(s string) (int, error) {
	delim := s[0]
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case delim:
			return i + 1, nil
		}
	}
	return 0, ErrBadAddress
}

// SourceLine returns the line text the pattern searches for, without
// anchors and escapes. truncated reports a pattern without the closing "$".
func (r *Record) SourceLine() (text string, truncated bool) {
	if len(r.Pattern) < 2 {
		return "", false
	}
	delim := r.Pattern[0]
	body := r.Pattern[1 : len(r.Pattern)-1]
	body = strings.TrimPrefix(body, "^")

	truncated = true
	if strings.HasSuffix(body, "$") {
		slashes := 0
		for i := len(body) - 2; i >= 0 && body[i] == '\\'; i-- {
			slashes++
		}
		if slashes%2 == 0 {
			body = body[:len(body)-1]
			truncated = false
		}
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) && (body[i+1] == '\\' || body[i+1] == delim || body[i+1] == '$') {
			i++
			c = body[i]
		}
		b.WriteByte(c)
	}
	return b.String(), truncated
}

// ParsePseudoTag parses one header record.
func ParsePseudoTag(line string) (writer.PseudoTag, error) {
	line = strings.TrimSuffix(line, "\n")
	if !writer.IsPseudoTagLine(line) {
		return writer.PseudoTag{}, ErrNotPseudoTag
	}
	parts := strings.SplitN(strings.TrimPrefix(line, writer.PseudoTagPrefix), "\t", 3)
	if len(parts) < 3 {
		return writer.PseudoTag{}, ErrTooFewFields
	}

	p := writer.PseudoTag{FileName: parts[1]}
	if name, parser, ok := strings.Cut(parts[0], writer.PseudoTagSeparator); ok {
		p.Name, p.ParserName, p.Pattern = name, parser, parts[2]
		return p, nil
	}
	p.Name = parts[0]
	pattern := parts[2]
	if len(pattern) >= 2 && pattern[0] == '/' && pattern[len(pattern)-1] == '/' {
		pattern = pattern[1 : len(pattern)-1]
	}
	p.Pattern = pattern
	return p, nil
}
