// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store mirrors the entries of a tag run into a SQLite database.
//
// The mirror is rebuilt on every run: a Run clears the previous contents
// inside one transaction, records each input file with a content hash and
// each accepted entry, and commits. Lookups go through an exact-name index
// or the FTS5 table over symbol names and signatures.
//
// # Usage
//
//	st, err := store.Open(".rigtags/tags.db")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	run, err := st.BeginRun(ctx, root)
//	fileID, err := run.AddFile(ctx, "main.go", "Go", content)
//	err = run.AddEntry(ctx, fileID, &entry)
//	err = run.Commit()
//
//	syms, err := st.Lookup(ctx, "main", nil)
package store
