// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extract turns source lines into tag entries using ordered,
// per-language regular expression rules.
//
// Rules are tried in registration order against every line. By default
// every matching rule produces its own entry; a language declared
// first-match-only, or a rule marked Exclusive, stops the loop at the
// first match.
//
// Entries carry a line-only location plus the raw source line so that a
// higher layer can promote them to pattern-anchored locations.
package extract
