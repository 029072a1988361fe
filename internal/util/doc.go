// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the rigtags packages.
//
// # File Writes
//
// AtomicWriteFile writes through a synced temp file and a rename, so a
// crash never leaves a half-written tag file or config behind:
//
//	err := util.AtomicWriteFile("tags", data, 0644)
//
// # Display Width
//
// StringWidth, TruncateWidth and PadRight measure terminal columns rather
// than bytes or runes, which keeps listing tables aligned when symbol
// names contain wide characters.
package util
