// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import "github.com/jeranaias/rigtags/internal/tags"

// Go covers top-level declarations. Methods are scoped to their receiver
// type and can carry the receiver expression in Go.receiver.
var Go = &Definition{
	Name:       "Go",
	Extensions: []string{"go"},
	Aliases:    []string{"golang"},
	Kinds: []tags.Kind{
		{Letter: 'p', Name: "package", Description: "packages"},
		{Letter: 'f', Name: "func", Description: "functions"},
		{Letter: 'm', Name: "method", Description: "methods"},
		{Letter: 't', Name: "type", Description: "types"},
		{Letter: 's', Name: "struct", Description: "structs"},
		{Letter: 'i', Name: "interface", Description: "interfaces"},
		{Letter: 'c', Name: "const", Description: "constants"},
		{Letter: 'v', Name: "var", Description: "variables"},
	},
	Fields: []tags.Definition{
		{Name: "receiver", Description: "method receiver"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{
			Pattern:    `^func\s*(\(\s*(?:\w+\s+)?\*?(\w+)(?:\[[^\]]*\])?\s*\))\s*(\w+)\s*(?:\[[^\]]*\])?(\([^)]*\))`,
			Name:       3,
			Kind:       'm',
			ScopeGroup: 2,
			ScopeKind:  't',
			Fields:     []FieldRef{{Name: "receiver", Group: 1}, {Name: "signature", Group: 4}},
		},
		{
			Pattern: `^func\s+(\w+)\s*(?:\[[^\]]*\])?(\([^)]*\))`,
			Name:    1,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{Pattern: `^type\s+(\w+)(?:\[[^\]]*\])?\s+struct\b`, Name: 1, Kind: 's'},
		{Pattern: `^type\s+(\w+)(?:\[[^\]]*\])?\s+interface\b`, Name: 1, Kind: 'i'},
		{
			Pattern: `^type\s+(\w+)(?:\[[^\]]*\])?\s+=?\s*([^{\s]+)`,
			Name:    1,
			Kind:    't',
			Fields:  []FieldRef{{Name: "typeref", Group: 2}},
		},
		{Pattern: `^const\s+(\w+)`, Name: 1, Kind: 'c'},
		{Pattern: `^var\s+(\w+)`, Name: 1, Kind: 'v'},
		{Pattern: `^package\s+(\w+)`, Name: 1, Kind: 'p'},
	},
}

func init() {
	Register(Go)
}
