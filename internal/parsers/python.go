// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import "github.com/jeranaias/rigtags/internal/tags"

// Python tags classes and functions. Indented defs are reported as members.
var Python = &Definition{
	Name:       "Python",
	Extensions: []string{"py", "pyi", "pyw"},
	Aliases:    []string{"py", "python3"},
	Kinds: []tags.Kind{
		{Letter: 'c', Name: "class", Description: "classes"},
		{Letter: 'f', Name: "function", Description: "functions"},
		{Letter: 'm', Name: "member", Description: "class members"},
		{Letter: 'v', Name: "variable", Description: "variables"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{
			Pattern: `^\s*class\s+(\w+)\s*(?:\(([^)]*)\))?\s*:`,
			Name:    1,
			Kind:    'c',
			Fields:  []FieldRef{{Name: "inherits", Group: 2}},
		},
		{
			Pattern: `^(?:async\s+)?def\s+(\w+)\s*(\([^)]*\)?)`,
			Name:    1,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{
			Pattern: `^[ \t]+(?:async\s+)?def\s+(\w+)\s*(\([^)]*\)?)`,
			Name:    1,
			Kind:    'm',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{Pattern: `^([A-Za-z_]\w*)\s*(?::[^=]+)?=[^=]`, Name: 1, Kind: 'v'},
	},
}

func init() {
	Register(Python)
}
