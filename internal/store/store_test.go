// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigtags/internal/tags"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "tags.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(name string, k tags.Kind, line uint64) tags.Entry {
	return tags.Entry{
		Name:      name,
		InputFile: "x",
		Kind:      k,
		Location:  tags.Location{Line: line, Text: "src " + name},
	}
}

var (
	kindFunc   = tags.Kind{Letter: 'f', Name: "func"}
	kindMethod = tags.Kind{Letter: 'm', Name: "method"}
)

func populate(t *testing.T, s *Store) string {
	t.Helper()
	ctx := context.Background()
	run, err := s.BeginRun(ctx, "/src")
	require.NoError(t, err)

	main, err := run.AddFile(ctx, "main.go", "Go", []byte("package main\n"))
	require.NoError(t, err)
	srv, err := run.AddFile(ctx, "server.py", "Python", []byte("class Server:\n"))
	require.NoError(t, err)

	e := entry("main", kindFunc, 3)
	require.NoError(t, run.AddEntry(ctx, main, &e))

	start := entry("Start", kindMethod, 9)
	start.Scope = &tags.Scope{Kind: tags.Kind{Letter: 't', Name: "type"}, Name: "Server"}
	start.Extensions.Set(tags.FieldSignature, "(ctx context.Context)")
	require.NoError(t, run.AddEntry(ctx, main, &start))

	st := entry("start_server", kindFunc, 2)
	require.NoError(t, run.AddEntry(ctx, srv, &st))

	require.NoError(t, run.Commit())
	return run.ID()
}

func TestRun_CommitAndStats(t *testing.T) {
	s := openTemp(t)
	id := populate(t, s)

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.FileCount)
	assert.Equal(t, 3, st.SymbolCount)
	assert.Equal(t, id, st.LastRunID)
	assert.Equal(t, "/src", st.Root)
	assert.False(t, st.LastRunAt.IsZero())
}

func TestRun_RebuildReplacesContents(t *testing.T) {
	s := openTemp(t)
	populate(t, s)

	ctx := context.Background()
	run, err := s.BeginRun(ctx, "/src")
	require.NoError(t, err)
	fid, err := run.AddFile(ctx, "only.go", "Go", []byte("x"))
	require.NoError(t, err)
	e := entry("only", kindFunc, 1)
	require.NoError(t, run.AddEntry(ctx, fid, &e))
	require.NoError(t, run.Commit())

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.FileCount)
	assert.Equal(t, 1, st.SymbolCount)

	syms, err := s.Search(ctx, "main", nil)
	require.NoError(t, err)
	assert.Empty(t, syms, "stale FTS rows must be removed")
}

func TestRun_RollbackKeepsPrevious(t *testing.T) {
	s := openTemp(t)
	populate(t, s)

	ctx := context.Background()
	run, err := s.BeginRun(ctx, "/other")
	require.NoError(t, err)
	require.NoError(t, run.Rollback())
	require.NoError(t, run.Rollback())

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.SymbolCount)

	_, err = run.AddFile(ctx, "a", "Go", nil)
	assert.ErrorIs(t, err, ErrRunClosed)
}

func TestBeginRun_OneAtATime(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	run, err := s.BeginRun(ctx, "/")
	require.NoError(t, err)

	_, err = s.BeginRun(ctx, "/")
	assert.ErrorIs(t, err, ErrRunActive)

	require.NoError(t, run.Commit())
	again, err := s.BeginRun(ctx, "/")
	require.NoError(t, err)
	require.NoError(t, again.Rollback())
}

func TestLookup(t *testing.T) {
	s := openTemp(t)
	populate(t, s)
	ctx := context.Background()

	syms, err := s.Lookup(ctx, "Start", nil)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, Symbol{
		Name:       "Start",
		Kind:       "method",
		KindLetter: "m",
		Path:       "main.go",
		Language:   "Go",
		Line:       9,
		Scope:      "Server",
		ScopeKind:  "type",
		Signature:  "(ctx context.Context)",
		Source:     "src Start",
	}, syms[0])

	syms, err = s.Lookup(ctx, "sta", &LookupOptions{Prefix: true})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "start_server", syms[0].Name)

	syms, err = s.Lookup(ctx, "main", &LookupOptions{Kinds: []string{"m"}})
	require.NoError(t, err)
	assert.Empty(t, syms)

	_, err = s.Lookup(ctx, "", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch(t *testing.T) {
	s := openTemp(t)
	populate(t, s)
	ctx := context.Background()

	syms, err := s.Search(ctx, "start", nil)
	require.NoError(t, err)
	var names []string
	for _, sym := range syms {
		names = append(names, sym.Name)
	}
	assert.ElementsMatch(t, []string{"Start", "start_server"}, names)

	syms, err = s.Search(ctx, "start", &LookupOptions{Languages: []string{"Python"}})
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "server.py", syms[0].Path)

	syms, err = s.Search(ctx, "context", nil)
	require.NoError(t, err)
	require.Len(t, syms, 1, "signatures are searchable")

	_, err = s.Search(ctx, `  `, nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestBuildFTSQuery(t *testing.T) {
	assert.Equal(t, `"foo"* "b""ar"*`, buildFTSQuery(` foo b"ar `))
	assert.Equal(t, "", buildFTSQuery(""))
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("package main\n"))
	assert.Equal(t, a, ContentHash([]byte("package main\n")))
	assert.NotEqual(t, a, ContentHash([]byte("package lib\n")))
}
