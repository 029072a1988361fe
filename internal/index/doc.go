// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index drives one tag run over a set of input paths.
//
// An Indexer owns the field registry, the extraction engine and the output
// dialect for the run. Run walks the inputs, picks a language per file,
// decodes the content, scans it, applies the configured locate mode, and
// writes the header and every entry through a writer.Stream. Output goes
// to stdout or to a file replaced atomically; the accepted entries can be
// mirrored into a SQLite store.
//
// # Usage
//
//	ix, err := index.New(cfg, index.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	res, err := ix.Run(ctx, []string{"."})
//	if res.Rejected > 0 {
//	    // some entries could not be written in this format
//	}
package index
