// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import "github.com/jeranaias/rigtags/internal/tags"

const jsExport = `^\s*(?:export\s+)?(?:default\s+)?`

var JavaScript = &Definition{
	Name:       "JavaScript",
	Extensions: []string{"js", "mjs", "cjs", "jsx"},
	Aliases:    []string{"js", "node"},
	Kinds: []tags.Kind{
		{Letter: 'f', Name: "function", Description: "functions"},
		{Letter: 'c', Name: "class", Description: "classes"},
		{Letter: 'C', Name: "constant", Description: "constants"},
		{Letter: 'v', Name: "variable", Description: "global variables"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{
			Pattern: jsExport + `(?:async\s+)?function\s*\*?\s*(\w+)\s*(\([^)]*\)?)`,
			Name:    1,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{
			Pattern: jsExport + `class\s+(\w+)(?:\s+extends\s+([\w.]+))?`,
			Name:    1,
			Kind:    'c',
			Fields:  []FieldRef{{Name: "inherits", Group: 2}},
		},
		{
			Pattern: jsExport + `(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?(\([^)]*\))\s*=>`,
			Name:    1,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{Pattern: jsExport + `const\s+(\w+)\s*=`, Name: 1, Kind: 'C'},
		{Pattern: `^(?:export\s+)?(?:let|var)\s+(\w+)`, Name: 1, Kind: 'v'},
	},
}

var TypeScript = &Definition{
	Name:       "TypeScript",
	Extensions: []string{"ts", "tsx", "mts", "cts"},
	Aliases:    []string{"ts"},
	Kinds: []tags.Kind{
		{Letter: 'f', Name: "function", Description: "functions"},
		{Letter: 'c', Name: "class", Description: "classes"},
		{Letter: 'i', Name: "interface", Description: "interfaces"},
		{Letter: 'a', Name: "alias", Description: "type aliases"},
		{Letter: 'g', Name: "enum", Description: "enums"},
		{Letter: 'C', Name: "constant", Description: "constants"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{
			Pattern: jsExport + `(?:declare\s+)?(?:async\s+)?function\s*\*?\s*(\w+)\s*(?:<[^>]*>)?\s*(\([^)]*\)?)`,
			Name:    1,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{
			Pattern: jsExport + `(?:abstract\s+)?class\s+(\w+)(?:<[^>]*>)?(?:\s+extends\s+([\w.]+))?`,
			Name:    1,
			Kind:    'c',
			Fields:  []FieldRef{{Name: "inherits", Group: 2}},
		},
		{Pattern: jsExport + `interface\s+(\w+)`, Name: 1, Kind: 'i'},
		{Pattern: jsExport + `type\s+(\w+)\s*(?:<[^>]*>)?\s*=`, Name: 1, Kind: 'a'},
		{Pattern: jsExport + `(?:const\s+)?enum\s+(\w+)`, Name: 1, Kind: 'g'},
		{
			Pattern: jsExport + `const\s+(\w+)\s*(?::[^=]+)?=\s*(?:async\s*)?(\([^)]*\))\s*(?::[^=]+)?=>`,
			Name:    1,
			Kind:    'f',
			Fields:  []FieldRef{{Name: "signature", Group: 2}},
		},
		{Pattern: jsExport + `const\s+(\w+)`, Name: 1, Kind: 'C'},
	},
}

func init() {
	Register(JavaScript)
	Register(TypeScript)
}
