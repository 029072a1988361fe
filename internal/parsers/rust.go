// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import "github.com/jeranaias/rigtags/internal/tags"

const rustVis = `^\s*(?:(pub)(?:\([^)]*\))?\s+)?`

// Rust records "pub" items with access:pub.
var Rust = &Definition{
	Name:       "Rust",
	Extensions: []string{"rs"},
	Aliases:    []string{"rs"},
	Kinds: []tags.Kind{
		{Letter: 'f', Name: "function", Description: "functions"},
		{Letter: 's', Name: "struct", Description: "structural types"},
		{Letter: 'g', Name: "enum", Description: "enumeration names"},
		{Letter: 'i', Name: "interface", Description: "traits"},
		{Letter: 'c', Name: "implementation", Description: "implementation"},
		{Letter: 'n', Name: "module", Description: "modules"},
		{Letter: 'M', Name: "macro", Description: "macro definitions"},
		{Letter: 'C', Name: "constant", Description: "constants"},
		{Letter: 't', Name: "typedef", Description: "type aliases"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{
			Pattern: rustVis + `(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+(\w+)\s*(?:<[^>]*>)?\s*(\([^)]*\)?)`,
			Name:    2,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "access", Group: 1}, {Name: "signature", Group: 3}},
		},
		{Pattern: rustVis + `struct\s+(\w+)`, Name: 2, Kind: 's', Fields: []FieldRef{{Name: "access", Group: 1}}},
		{Pattern: rustVis + `enum\s+(\w+)`, Name: 2, Kind: 'g', Fields: []FieldRef{{Name: "access", Group: 1}}},
		{Pattern: rustVis + `(?:unsafe\s+)?trait\s+(\w+)`, Name: 2, Kind: 'i', Fields: []FieldRef{{Name: "access", Group: 1}}},
		{
			Pattern: `^\s*impl(?:<[^>]*>)?\s+(?:([\w:]+)(?:<[^>]*>)?\s+for\s+)?(\w+)`,
			Name:    2,
			Kind:    'c',
			Fields:  []FieldRef{{Name: "implementation", Group: 1}},
		},
		{Pattern: rustVis + `mod\s+(\w+)`, Name: 2, Kind: 'n', Fields: []FieldRef{{Name: "access", Group: 1}}},
		{Pattern: `^\s*macro_rules!\s*(\w+)`, Name: 1, Kind: 'M'},
		{Pattern: rustVis + `(?:const|static)\s+(?:mut\s+)?(\w+)`, Name: 2, Kind: 'C', Fields: []FieldRef{{Name: "access", Group: 1}}},
		{Pattern: rustVis + `type\s+(\w+)`, Name: 2, Kind: 't', Fields: []FieldRef{{Name: "access", Group: 1}}},
	},
}

func init() {
	Register(Rust)
}
