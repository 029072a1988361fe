// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package writer serializes tag entries into tab-delimited tag records.
//
// Two dialects share one record shape:
//
//	name<TAB>input<TAB>location[;"<TAB>key:value...]<LF>
//
// The strict dialect rejects any entry whose output fields contain a tab,
// carriage return, or newline, and remembers that it did so for the
// stream. The extended dialect never rejects and writes fields that
// declare a raw renderer without escaping.
//
// Pseudo-tags ("!_TAG_FILE_FORMAT" and friends) describe the tag file
// itself and bypass field rendering entirely.
//
// Usage:
//
//	w, _ := writer.New("strict", registry)
//	s := writer.NewStream(w, f, writer.Options{ExtensionFields: true})
//	for _, pt := range writer.HeaderTags(header) {
//		s.WritePseudoTag(pt)
//	}
//	s.WriteEntry(&entry)
//	rejected, err := s.Close()
package writer
