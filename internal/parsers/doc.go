// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package parsers declares the built-in languages as regex rule sets.
//
// Each language lists its file extensions, its kinds, optional custom
// fields, and ordered rules. Install turns a definition into field
// registrations and extraction rules; ForFile picks a language for a path.
package parsers
