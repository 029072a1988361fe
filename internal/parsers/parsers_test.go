// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigtags/internal/extract"
	"github.com/jeranaias/rigtags/internal/tags"
)

type tagSummary struct {
	Name string
	Kind string
	Line uint64
}

func setup(t *testing.T) (*extract.Engine, *tags.Registry) {
	t.Helper()
	reg := tags.NewRegistry()
	en := extract.New(reg)
	require.NoError(t, InstallAll(en, reg))
	return en, reg
}

func scan(t *testing.T, en *extract.Engine, lang, src string) []tags.Entry {
	t.Helper()
	entries, err := en.Collect(lang, "input", strings.NewReader(src))
	require.NoError(t, err)
	return entries
}

func summarize(entries []tags.Entry) []tagSummary {
	out := make([]tagSummary, len(entries))
	for i, e := range entries {
		out[i] = tagSummary{Name: e.Name, Kind: e.Kind.Name, Line: e.Location.Line}
	}
	return out
}

// =============================================================================
// LOOKUP
// =============================================================================

func TestForFile(t *testing.T) {
	cases := map[string]string{
		"index.HTML":         "HTML",
		"src/main.go":        "Go",
		"lib/app.mjs":        "JavaScript",
		"web/App.tsx":        "TypeScript",
		"src/lib.rs":         "Rust",
		"README.md":          "Markdown",
		"Makefile":           "Make",
		"build/rules.mk":     "Make",
		"scripts/deploy.sh":  "Sh",
		"tools/SConstruct":   "Python",
		"home/.bashrc":       "Sh",
		"sub/Makefile.linux": "Make",
	}
	for path, want := range cases {
		d := ForFile(path)
		if assert.NotNil(t, d, path) {
			assert.Equal(t, want, d.Name, path)
		}
	}

	assert.Nil(t, ForFile("image.png"))
	assert.Nil(t, ForFile("LICENSE"))
}

func TestForName(t *testing.T) {
	assert.Equal(t, Go, ForName("golang"))
	assert.Equal(t, Python, ForName("PYTHON"))
	assert.Equal(t, Sh, ForName("bash"))
	assert.Equal(t, HTML, ForExtension(".htm"))
	assert.Nil(t, ForName("cobol"))
}

func TestAllSorted(t *testing.T) {
	var got []string
	for _, d := range All() {
		got = append(got, d.Name)
	}
	assert.Equal(t, []string{"Go", "HTML", "JavaScript", "Make", "Markdown", "Python", "Rust", "Sh", "TypeScript"}, got)
}

func TestInstall_RegistersFields(t *testing.T) {
	en, reg := setup(t)

	id, ok := reg.ByName("Go", "receiver")
	require.True(t, ok)
	assert.False(t, reg.IsEnabled(id), "parser fields start disabled")

	assert.Equal(t, len(Go.Rules), en.RuleCount("Go"))

	// Installing twice into the same registry collides.
	err := Go.Install(extract.New(reg), reg)
	require.ErrorIs(t, err, tags.ErrDuplicateField)
}

func TestInstall_UnknownKind(t *testing.T) {
	reg := tags.NewRegistry()
	bad := &Definition{
		Name:  "Bad",
		Kinds: []tags.Kind{{Letter: 'f', Name: "function"}},
		Rules: []Rule{{Pattern: `^x(\w+)`, Name: 1, Kind: 'z'}},
	}
	err := bad.Install(extract.New(reg), reg)
	require.ErrorIs(t, err, ErrUnknownKind)

	bad.Rules = []Rule{{Pattern: `^x(\w+)`, Name: 1, Kind: 'f', Fields: []FieldRef{{Name: "nope", Group: 1}}}}
	err = bad.Install(extract.New(reg), reg)
	require.ErrorIs(t, err, tags.ErrUnknownField)
}

// =============================================================================
// LANGUAGES
// =============================================================================

func TestHTML(t *testing.T) {
	en, _ := setup(t)
	src := `<html>
<a name="top"></a>
<A HREF="#x" NAME=intro>Intro</A>
<script>
  function init() {
function  teardown ( ) {}
</script>
`
	assert.Equal(t, []tagSummary{
		{"top", "anchor", 2},
		{"intro", "anchor", 3},
		{"init", "function", 5},
		{"teardown", "function", 6},
	}, summarize(scan(t, en, "HTML", src)))
}

func TestHTML_BothRulesOnOneLine(t *testing.T) {
	en, _ := setup(t)
	entries := scan(t, en, "HTML", `function go() { return '<a name="x">' }`+"\n")
	assert.Equal(t, []tagSummary{{"x", "anchor", 1}, {"go", "function", 1}}, summarize(entries))
}

func TestGo(t *testing.T) {
	en, reg := setup(t)
	src := `package server

type Server struct {
type Handler interface {
type Port int

func New(addr string) *Server {
func (s *Server) Start(ctx context.Context) error {
func (List[T]) Len() int {
const Version = "1"
var ErrClosed = errors.New("closed")
`
	entries := scan(t, en, "Go", src)
	assert.Equal(t, []tagSummary{
		{"server", "package", 1},
		{"Server", "struct", 3},
		{"Handler", "interface", 4},
		{"Port", "type", 5},
		{"New", "func", 7},
		{"Start", "method", 8},
		{"Len", "method", 9},
		{"Version", "const", 10},
		{"ErrClosed", "var", 11},
	}, summarize(entries))

	port := entries[3]
	ref, _ := port.Extensions.Get(tags.FieldTypeRef)
	assert.Equal(t, "int", ref)

	start := entries[5]
	require.NotNil(t, start.Scope)
	assert.Equal(t, "Server", start.Scope.Name)
	assert.Equal(t, "type", start.Scope.Kind.Name)
	sig, _ := start.Extensions.Get(tags.FieldSignature)
	assert.Equal(t, "(ctx context.Context)", sig)

	recv, ok := reg.ByName("Go", "receiver")
	require.True(t, ok)
	v, _ := start.Extensions.Get(recv)
	assert.Equal(t, "(s *Server)", v)

	assert.Equal(t, "List", entries[6].Scope.Name)
}

func TestPython(t *testing.T) {
	en, _ := setup(t)
	src := `import os
MAX = 10

class Handler(Base):
    def handle(self, req):
        if req == None:
            pass

async def main():
`
	entries := scan(t, en, "Python", src)
	assert.Equal(t, []tagSummary{
		{"MAX", "variable", 2},
		{"Handler", "class", 4},
		{"handle", "member", 5},
		{"main", "function", 9},
	}, summarize(entries))

	inh, _ := entries[1].Extensions.Get(tags.FieldInheritance)
	assert.Equal(t, "Base", inh)
	sig, _ := entries[2].Extensions.Get(tags.FieldSignature)
	assert.Equal(t, "(self, req)", sig)
}

func TestJavaScript(t *testing.T) {
	en, _ := setup(t)
	src := `export default function App(props) {
class Store extends Base {
const add = (a, b) => a + b
export const LIMIT = 5
let counter
`
	entries := scan(t, en, "JavaScript", src)
	assert.Equal(t, []tagSummary{
		{"App", "function", 1},
		{"Store", "class", 2},
		{"add", "function", 3},
		{"LIMIT", "constant", 4},
		{"counter", "variable", 5},
	}, summarize(entries))
	sig, _ := entries[2].Extensions.Get(tags.FieldSignature)
	assert.Equal(t, "(a, b)", sig)
}

func TestTypeScript(t *testing.T) {
	en, _ := setup(t)
	src := `export interface Props {
export type ID = string
export enum Color { Red }
export abstract class Shape<T> extends Base {
function area<T>(s: Shape<T>): number {
const fetchAll = async (url: string): Promise<void> => {
`
	assert.Equal(t, []tagSummary{
		{"Props", "interface", 1},
		{"ID", "alias", 2},
		{"Color", "enum", 3},
		{"Shape", "class", 4},
		{"area", "function", 5},
		{"fetchAll", "function", 6},
	}, summarize(scan(t, en, "TypeScript", src)))
}

func TestRust(t *testing.T) {
	en, _ := setup(t)
	src := `pub struct Point {
enum Shape {
pub(crate) fn area(s: &Shape) -> f64 {
impl Display for Point {
pub trait Draw {
macro_rules! square {
pub const MAX: u32 = 3;
`
	entries := scan(t, en, "Rust", src)
	assert.Equal(t, []tagSummary{
		{"Point", "struct", 1},
		{"Shape", "enum", 2},
		{"area", "function", 3},
		{"Point", "implementation", 4},
		{"Draw", "interface", 5},
		{"square", "macro", 6},
		{"MAX", "constant", 7},
	}, summarize(entries))

	access, ok := entries[0].Extensions.Get(tags.FieldAccess)
	require.True(t, ok)
	assert.Equal(t, "pub", access)
	assert.False(t, entries[1].Extensions.Has(tags.FieldAccess))
	impl, _ := entries[3].Extensions.Get(tags.FieldImplementation)
	assert.Equal(t, "Display", impl)
}

func TestMarkdownMakeSh(t *testing.T) {
	en, _ := setup(t)

	assert.Equal(t, []tagSummary{
		{"Title", "chapter", 1},
		{"Install steps", "section", 3},
		{"Linux", "subsection", 4},
	}, summarize(scan(t, en, "Markdown", "# Title #\n\n## Install steps\n### Linux\n#hashtag\n")))

	assert.Equal(t, []tagSummary{
		{"CC", "macro", 1},
		{"CFLAGS", "macro", 2},
		{"all", "target", 3},
		{"build/out.o", "target", 4},
	}, summarize(scan(t, en, "Make", "CC = gcc\nCFLAGS += -O2\nall: build\nbuild/out.o: main.c\n\t$(CC) -c main.c\n")))

	assert.Equal(t, []tagSummary{
		{"setup", "function", 1},
		{"cleanup", "function", 2},
		{"ll", "alias", 3},
	}, summarize(scan(t, en, "Sh", "setup() {\nfunction cleanup {\nalias ll='ls -l'\n")))
}
