// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// collect expands the input paths into the list of files to scan, in
// argument order and lexical order within each directory. Files named
// explicitly are always kept; excludes apply to walked entries only.
func (ix *Indexer) collect(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		if !ix.cfg.Input.Recurse {
			ix.log.Warn("ignoring directory without recursion", "path", root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				ix.log.Debug("skipping unreadable path", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			if path != root && ix.shouldIgnore(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// shouldIgnore checks a base name against the exclude patterns.
func (ix *Indexer) shouldIgnore(name string) bool {
	for _, pattern := range ix.cfg.Input.Exclude {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
