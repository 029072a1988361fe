// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tags provides the in-memory tag entry model and the field registry
// that decides which metadata fields are rendered for each entry.
//
// # Key Types
//
//   - Entry: One extracted symbol (name, input file, kind, location, scope, extension values)
//   - Location: Either an exact line number or a re-locatable search pattern
//   - Kind: Symbol category as a single letter and/or a long name
//   - Registry: Catalog of built-in and parser-contributed fields with enablement state
//
// # Lifecycle
//
// A Registry is built once per run, configured (SetEnabled, ApplySpec,
// Register), then frozen. After Freeze it is read-only and may be shared by
// the extraction engine and the writer.
//
//	reg := tags.NewRegistry()
//	_ = reg.ApplySpec("+n")
//	reg.Freeze()
//
//	v, err := reg.Render(tags.FieldLineNumber, &entry, tags.Escaped)
//	if errors.Is(err, tags.ErrNoValue) {
//	    // field does not apply to this entry
//	}
package tags
