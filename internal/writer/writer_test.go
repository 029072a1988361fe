// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package writer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigtags/internal/tags"
)

var extOn = Options{ExtensionFields: true}

func jsEntry() *tags.Entry {
	return &tags.Entry{
		Name:      "main",
		InputFile: "src/main.js",
		Language:  "JavaScript",
		Kind:      tags.Kind{Letter: 'f', Name: "function"},
		Location:  tags.PatternAnchored("function main() {", 10, tags.Forward),
	}
}

func newWriter(t *testing.T, name string, reg *tags.Registry) Writer {
	t.Helper()
	w, err := New(name, reg)
	require.NoError(t, err)
	return w
}

// writeOne runs a single-entry stream and returns the output and the
// rejection flag.
func writeOne(t *testing.T, w Writer, opts Options, e *tags.Entry) (string, bool) {
	t.Helper()
	var buf bytes.Buffer
	st := w.Begin(opts)
	n, err := w.WriteEntry(&buf, st, e)
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)
	return buf.String(), w.End(st)
}

// =============================================================================
// DIALECT SELECTION
// =============================================================================

func TestNew(t *testing.T) {
	reg := tags.NewRegistry()

	w := newWriter(t, "", reg)
	assert.Equal(t, "strict", w.Name())
	assert.Equal(t, "tags", w.DefaultFileName())

	w = newWriter(t, "Extended", reg)
	assert.Equal(t, "extended", w.Name())

	_, err := New("json", reg)
	require.ErrorIs(t, err, ErrUnknownWriter)

	assert.Equal(t, []string{"extended", "strict"}, Formats())
}

func TestTreatFieldAsFixed(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	assert.True(t, w.TreatFieldAsFixed(tags.FieldName))
	assert.True(t, w.TreatFieldAsFixed(tags.FieldInputFile))
	assert.True(t, w.TreatFieldAsFixed(tags.FieldPattern))
	assert.False(t, w.TreatFieldAsFixed(tags.FieldKind))
	assert.False(t, w.TreatFieldAsFixed(tags.FieldSignature))
}

// =============================================================================
// RECORD SHAPE
// =============================================================================

func TestStrict_DefaultRecord(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	got, rejected := writeOne(t, w, extOn, jsEntry())

	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/;\"\tf\n", got)
	assert.False(t, rejected)
}

func TestStrict_RoundTripFixedFields(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	cases := []struct{ name, input string }{
		{"main", "src/main.js"},
		{"Server.start", "lib/server.js"},
		{`odd\name`, `dir\file.js`},
		{"x", "a b c.js"},
	}
	for _, tc := range cases {
		e := jsEntry()
		e.Name, e.InputFile = tc.name, tc.input

		got, _ := writeOne(t, w, extOn, e)
		parts := strings.SplitN(got, "\t", 3)
		require.Len(t, parts, 3)
		assert.Equal(t, tc.name, parts[0])
		assert.Equal(t, tc.input, parts[1])
	}
}

func TestNoExtensionFields(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	got, _ := writeOne(t, w, Options{}, jsEntry())
	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/\n", got)
}

func TestLocation(t *testing.T) {
	reg := tags.NewRegistry()
	w := newWriter(t, "strict", reg)

	t.Run("line only", func(t *testing.T) {
		e := jsEntry()
		e.Location = tags.LineOnly(10)
		got, _ := writeOne(t, w, extOn, e)
		assertRecords(t, "main\tsrc/main.js\t10;\"\tf\n", got)
	})

	t.Run("line directives", func(t *testing.T) {
		e := jsEntry()
		e.Location = tags.LineOnly(42)
		got, _ := writeOne(t, w, Options{LineDirectives: true}, e)
		assertRecords(t, "main\tsrc/main.js\t42\n", got)
	})

	t.Run("line directives without a line", func(t *testing.T) {
		e := jsEntry()
		e.Location = tags.LineOnly(0)
		got, _ := writeOne(t, w, Options{LineDirectives: true}, e)
		assertRecords(t, "main\tsrc/main.js\t0\n", got)
	})

	t.Run("combine forward", func(t *testing.T) {
		got, _ := writeOne(t, w, Options{Locate: LocateCombine}, jsEntry())
		assertRecords(t, "main\tsrc/main.js\t9;/^function main() {$/\n", got)
	})

	t.Run("combine backward", func(t *testing.T) {
		e := jsEntry()
		e.Location = tags.PatternAnchored("function main() {", 10, tags.Backward)
		got, _ := writeOne(t, w, Options{Locate: LocateCombine, Backward: true}, e)
		assertRecords(t, "main\tsrc/main.js\t11;?^function main() {$?\n", got)
	})
}

// =============================================================================
// EXTENSION BLOCK
// =============================================================================

func TestExtensionOrder(t *testing.T) {
	reg := tags.NewRegistry()
	require.NoError(t, reg.ApplySpec("+S"))
	w := newWriter(t, "strict", reg)

	e := jsEntry()
	e.Scope = &tags.Scope{Kind: tags.Kind{Letter: 'c', Name: "class"}, Name: "Server"}
	e.Extensions.Set(tags.FieldSignature, "(port)")
	e.Extensions.Set(tags.FieldAccess, "public") // disabled

	got, _ := writeOne(t, w, extOn, e)
	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/;\"\tf\tclass:Server\tsignature:(port)\n", got)
	assert.Equal(t, 1, strings.Count(got, `;"`))
}

func TestExtensionOrder_AllBuiltins(t *testing.T) {
	reg := tags.NewRegistry()
	require.NoError(t, reg.ApplySpec("+*"))
	w := newWriter(t, "strict", reg)

	e := jsEntry()
	e.Scope = &tags.Scope{Kind: tags.Kind{Letter: 'c', Name: "class"}, Name: "Server"}
	// Inserted out of order; output follows the fixed order.
	e.Extensions.Set(tags.FieldEndLine, "20")
	e.Extensions.Set(tags.FieldSignature, "()")
	e.Extensions.Set(tags.FieldAccess, "public")
	e.Extensions.Set(tags.FieldFileScope, "")
	e.Extensions.Set(tags.FieldTypeRef, "typename:int")

	got, _ := writeOne(t, w, extOn, e)
	want := "main\tsrc/main.js\t/^function main() {$/;\"" +
		"\tkind:function\tline:10\tlanguage:JavaScript\tscope:class:Server" +
		"\ttyperef:typename:int\tfile:\taccess:public\tsignature:()\tend:20\n"
	assertRecords(t, want, got)
}

func TestKindTieBreak(t *testing.T) {
	cases := []struct {
		name  string
		spec  string
		kind  tags.Kind
		block string
	}{
		{"long only", "K", tags.Kind{Letter: 'f', Name: "function"}, ";\"\tkind:function"},
		{"letter only", "k", tags.Kind{Letter: 'f', Name: "function"}, ";\"\tf"},
		{"letter with key", "kz", tags.Kind{Letter: 'f', Name: "function"}, ";\"\tkind:f"},
		{"neither", "s", tags.Kind{Letter: 'f', Name: "function"}, ""},
		{"letter wanted but absent", "k", tags.Kind{Name: "anchor"}, ";\"\tkind:anchor"},
		{"long wanted but absent", "K", tags.Kind{Letter: 'a'}, ";\"\ta"},
		{"nothing renderable", "kK", tags.Kind{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := tags.NewRegistry()
			require.NoError(t, reg.ApplySpec(tc.spec))
			w := newWriter(t, "strict", reg)

			e := jsEntry()
			e.Kind = tc.kind
			got, _ := writeOne(t, w, extOn, e)
			assertRecords(t, "main\tsrc/main.js\t/^function main() {$/"+tc.block+"\n", got)
		})
	}
}

func TestScopeNeedsKind(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	e := jsEntry()
	e.Scope = &tags.Scope{Name: "Server"}

	got, _ := writeOne(t, w, extOn, e)
	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/;\"\tf\n", got)
}

func TestParserFields(t *testing.T) {
	reg := tags.NewRegistry()
	recv, err := reg.Register(tags.Definition{Name: "receiver", Namespace: "Go", Enabled: true})
	require.NoError(t, err)
	hidden, err := reg.Register(tags.Definition{Name: "hidden", Namespace: "Go"})
	require.NoError(t, err)
	pkg, err := reg.Register(tags.Definition{Name: "package", Namespace: "Go", Enabled: true})
	require.NoError(t, err)
	w := newWriter(t, "strict", reg)

	e := jsEntry()
	e.Extensions.Set(pkg, "main")
	e.Extensions.Set(hidden, "x")
	e.Extensions.Set(recv, "*Server")

	got, _ := writeOne(t, w, extOn, e)
	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/;\"\tf\tpackage:main\treceiver:*Server\n", got)

	// With no built-in field written the marker still precedes the first one.
	e.Kind = tags.Kind{}
	got, _ = writeOne(t, w, extOn, e)
	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/;\"\tpackage:main\treceiver:*Server\n", got)
}

// =============================================================================
// REJECTION
// =============================================================================

func TestStrict_RejectsTabs(t *testing.T) {
	reg := tags.NewRegistry()
	require.NoError(t, reg.ApplySpec("+S"))
	w := newWriter(t, "strict", reg)

	mutations := map[string]func(e *tags.Entry){
		"name":      func(e *tags.Entry) { e.Name = "ma\tin" },
		"input":     func(e *tags.Entry) { e.InputFile = "src/\nmain.js" },
		"signature": func(e *tags.Entry) { e.Extensions.Set(tags.FieldSignature, "(a,\tb)") },
		"scope": func(e *tags.Entry) {
			e.Scope = &tags.Scope{Kind: tags.Kind{Name: "class"}, Name: "Ser\tver"}
		},
		"typeref": func(e *tags.Entry) { e.Extensions.Set(tags.FieldTypeRef, "a\rb") },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			e := jsEntry()
			mutate(e)
			got, rejected := writeOne(t, w, extOn, e)
			assert.Empty(t, got)
			assert.True(t, rejected)
		})
	}
}

func TestStrict_IgnoresDisabledFields(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	e := jsEntry()
	e.Extensions.Set(tags.FieldSignature, "(a,\tb)") // signature disabled

	got, rejected := writeOne(t, w, extOn, e)
	assert.NotEmpty(t, got)
	assert.False(t, rejected)

	// Without the extension block no extension field is checked.
	reg := tags.NewRegistry()
	require.NoError(t, reg.ApplySpec("+S"))
	w = newWriter(t, "strict", reg)
	got, rejected = writeOne(t, w, Options{}, e)
	assert.NotEmpty(t, got)
	assert.False(t, rejected)
}

func TestStrict_TabIndentedPatternAccepted(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	e := jsEntry()
	e.Location = tags.PatternAnchored("\tfunction main() {", 3, tags.Forward)

	got, rejected := writeOne(t, w, extOn, e)
	assertRecords(t, "main\tsrc/main.js\t/^\tfunction main() {$/;\"\tf\n", got)
	assert.False(t, rejected)
}

func TestPatternEscapesLineBreaks(t *testing.T) {
	cases := []struct{ name, text, want string }{
		{"lf", "function main() {\nvar x", `/^function main() {\nvar x$/`},
		{"cr", "function main() {\rvar x", `/^function main() {\rvar x$/`},
		{"trailing crlf trimmed", "function main() {\r\n", `/^function main() {$/`},
	}
	for _, format := range []string{"strict", "extended"} {
		w := newWriter(t, format, tags.NewRegistry())
		for _, tc := range cases {
			t.Run(format+"/"+tc.name, func(t *testing.T) {
				e := jsEntry()
				e.Location = tags.PatternAnchored(tc.text, 10, tags.Forward)

				got, rejected := writeOne(t, w, Options{}, e)
				assert.False(t, rejected)
				assert.Equal(t, 1, strings.Count(got, "\n"), "one record, one newline")
				assert.NotContains(t, got, "\r")
				assertRecords(t, "main\tsrc/main.js\t"+tc.want+"\n", got)
			})
		}
	}
}

func TestStrict_RejectionIsPerEntry(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())
	var buf bytes.Buffer
	st := w.Begin(extOn)

	bad := jsEntry()
	bad.Name = "a\tb"
	n, err := w.WriteEntry(&buf, st, bad)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = w.WriteEntry(&buf, st, jsEntry())
	require.NoError(t, err)
	assert.Positive(t, n)

	assert.True(t, w.End(st))
	assert.Equal(t, 1, st.Entries())
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestExtended_PassesTabsThrough(t *testing.T) {
	reg := tags.NewRegistry()
	require.NoError(t, reg.ApplySpec("+Sa"))
	w := newWriter(t, "extended", reg)

	e := jsEntry()
	e.Extensions.Set(tags.FieldSignature, "(a,\tb)")
	e.Extensions.Set(tags.FieldAccess, "pub\tlic") // no raw renderer

	got, rejected := writeOne(t, w, extOn, e)
	assertRecords(t, "main\tsrc/main.js\t/^function main() {$/;\"\tf\taccess:pub\\tlic\tsignature:(a,\tb)\n", got)
	assert.False(t, rejected)
}

func TestStrictAndExtendedAgreeOnCleanInput(t *testing.T) {
	reg := tags.NewRegistry()
	require.NoError(t, reg.ApplySpec("+nlS"))
	e := jsEntry()
	e.Extensions.Set(tags.FieldSignature, "(argv)")

	strict, _ := writeOne(t, newWriter(t, "strict", reg), extOn, e)
	extended, _ := writeOne(t, newWriter(t, "extended", reg), extOn, e)
	assertRecords(t, strict, extended)
}

// =============================================================================
// PSEUDO-TAGS
// =============================================================================

func TestWritePseudoTag(t *testing.T) {
	w := newWriter(t, "strict", tags.NewRegistry())

	var buf bytes.Buffer
	n, err := w.WritePseudoTag(&buf, PseudoTag{Name: "TAG_FILE_FORMAT", Pattern: "2"})
	require.NoError(t, err)
	assert.Equal(t, "!_TAG_FILE_FORMAT\t\t/2/\n", buf.String())
	assert.Equal(t, buf.Len(), n)

	buf.Reset()
	_, err = w.WritePseudoTag(&buf, PseudoTag{
		Name:       "TAG_KIND_DESCRIPTION",
		ParserName: "HTML",
		FileName:   "a,anchor",
		Pattern:    "/named anchors/",
	})
	require.NoError(t, err)
	assert.Equal(t, "!_TAG_KIND_DESCRIPTION!HTML\ta,anchor\t/named anchors/\n", buf.String())
	assert.True(t, IsPseudoTagLine(buf.String()))
}

func TestHeaderTags(t *testing.T) {
	h := Header{
		ExtensionFields: true,
		Sorted:          true,
		OutputMode:      "strict",
		ProgramName:     "rigtags",
		ProgramVersion:  "1.0.0",
		Languages: []LanguageKinds{{
			Language: "HTML",
			Kinds: []tags.Kind{
				{Letter: 'a', Name: "anchor", Description: "named anchors"},
				{Letter: 'f', Name: "function", Description: "JavaScript functions"},
			},
		}},
	}

	var sb strings.Builder
	for _, p := range HeaderTags(h) {
		sb.WriteString(p.String())
	}
	want := "!_TAG_FILE_FORMAT\t2\t/extended format; --format=1 will not append ;\" to lines/\n" +
		"!_TAG_FILE_SORTED\t1\t/0=unsorted, 1=sorted, 2=foldcase/\n" +
		"!_TAG_OUTPUT_MODE\tstrict\t/extended or strict/\n" +
		"!_TAG_PROGRAM_NAME\trigtags\t//\n" +
		"!_TAG_PROGRAM_VERSION\t1.0.0\t//\n" +
		"!_TAG_KIND_DESCRIPTION!HTML\ta,anchor\t/named anchors/\n" +
		"!_TAG_KIND_DESCRIPTION!HTML\tf,function\t/JavaScript functions/\n"
	assertRecords(t, want, sb.String())

	first := HeaderTags(Header{})[0]
	v, ok := FormatVersion(first)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

// =============================================================================
// STREAM
// =============================================================================

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(newWriter(t, "strict", tags.NewRegistry()), &buf, extOn)

	require.NoError(t, s.WritePseudoTag(PseudoTag{Name: "TAG_FILE_FORMAT", FileName: "2"}))

	ok, err := s.WriteEntry(jsEntry())
	require.NoError(t, err)
	assert.True(t, ok)

	bad := jsEntry()
	bad.InputFile = "a\tb"
	ok, err = s.WriteEntry(bad)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Zero(t, buf.Len(), "records stay buffered until flush")

	rejected, err := s.Close()
	require.NoError(t, err)
	assert.True(t, rejected)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Rejected)
	assert.Equal(t, int64(buf.Len()), stats.Bytes)

	_, err = s.WriteEntry(jsEntry())
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestStream_SinkFailure(t *testing.T) {
	s := NewStream(newWriter(t, "strict", tags.NewRegistry()), failingWriter{}, extOn)
	_, err := s.WriteEntry(jsEntry())
	require.NoError(t, err)

	_, err = s.Close()
	var sinkErr *SinkError
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "flush", sinkErr.Op)
	assert.Contains(t, err.Error(), "disk full")
}
