// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"strconv"
	"strings"

	"github.com/jeranaias/rigtags/internal/tags"
)

const (
	PseudoTagPrefix    = "!_"
	PseudoTagSeparator = "!"
)

// PseudoTag is a header record describing the tag file rather than a symbol.
type PseudoTag struct {
	Name       string
	FileName   string
	Pattern    string
	ParserName string
}

// String renders the record including its trailing newline. Without a
// parser name the pattern is wrapped in slashes.
func (p PseudoTag) String() string {
	var b strings.Builder
	b.WriteString(PseudoTagPrefix)
	b.WriteString(p.Name)
	if p.ParserName != "" {
		b.WriteString(PseudoTagSeparator)
		b.WriteString(p.ParserName)
		b.WriteByte('\t')
		b.WriteString(p.FileName)
		b.WriteByte('\t')
		b.WriteString(p.Pattern)
	} else {
		b.WriteByte('\t')
		b.WriteString(p.FileName)
		b.WriteString("\t/")
		b.WriteString(p.Pattern)
		b.WriteByte('/')
	}
	b.WriteByte('\n')
	return b.String()
}

// IsPseudoTagLine reports whether a record line is a header record.
func IsPseudoTagLine(line string) bool {
	return strings.HasPrefix(line, PseudoTagPrefix)
}

// =============================================================================
// STANDARD HEADER
// =============================================================================

// LanguageKinds lists the kinds one parser can emit.
type LanguageKinds struct {
	Language string
	Kinds    []tags.Kind
}

// Header describes the pseudo-tags written at the top of a tag file.
type Header struct {
	ExtensionFields bool
	Sorted          bool
	OutputMode      string // dialect name
	Encoding        string // output encoding, omitted when empty

	ProgramName    string
	ProgramURL     string
	ProgramVersion string

	Languages []LanguageKinds
}

// HeaderTags returns the standard pseudo-tags for h in the conventional order.
func HeaderTags(h Header) []PseudoTag {
	format, formatNote := "1", "original ctags format"
	if h.ExtensionFields {
		format, formatNote = "2", `extended format; --format=1 will not append ;" to lines`
	}
	sorted := "0"
	if h.Sorted {
		sorted = "1"
	}

	out := []PseudoTag{
		{Name: "TAG_FILE_FORMAT", FileName: format, Pattern: formatNote},
		{Name: "TAG_FILE_SORTED", FileName: sorted, Pattern: "0=unsorted, 1=sorted, 2=foldcase"},
	}
	if h.Encoding != "" {
		out = append(out, PseudoTag{Name: "TAG_FILE_ENCODING", FileName: h.Encoding})
	}
	if h.OutputMode != "" {
		out = append(out, PseudoTag{Name: "TAG_OUTPUT_MODE", FileName: h.OutputMode, Pattern: strings.Join(Formats(), " or ")})
	}
	if h.ProgramName != "" {
		out = append(out, PseudoTag{Name: "TAG_PROGRAM_NAME", FileName: h.ProgramName})
	}
	if h.ProgramURL != "" {
		out = append(out, PseudoTag{Name: "TAG_PROGRAM_URL", FileName: h.ProgramURL, Pattern: "official site"})
	}
	if h.ProgramVersion != "" {
		out = append(out, PseudoTag{Name: "TAG_PROGRAM_VERSION", FileName: h.ProgramVersion})
	}

	for _, lk := range h.Languages {
		for _, k := range lk.Kinds {
			out = append(out, PseudoTag{
				Name:       "TAG_KIND_DESCRIPTION",
				ParserName: lk.Language,
				FileName:   k.String(),
				Pattern:    "/" + escapeDescription(k.Description) + "/",
			})
		}
	}
	return out
}

func escapeDescription(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "/", `\/`)
}

// FormatVersion parses the TAG_FILE_FORMAT value of a header record.
func FormatVersion(p PseudoTag) (int, bool) {
	if p.Name != "TAG_FILE_FORMAT" {
		return 0, false
	}
	n, err := strconv.Atoi(p.FileName)
	return n, err == nil
}
