// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the log/slog logger used by rigtags.
//
// Logs go to stderr, or to a file when one is configured, so that the
// tag stream written to stdout (output "-") is never interleaved with
// diagnostics.
package logging
