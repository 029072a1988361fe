// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import "github.com/jeranaias/rigtags/internal/tags"

var Markdown = &Definition{
	Name:       "Markdown",
	Extensions: []string{"md", "markdown", "mkd"},
	Aliases:    []string{"md"},
	Kinds: []tags.Kind{
		{Letter: 'c', Name: "chapter", Description: "chapters"},
		{Letter: 's', Name: "section", Description: "sections"},
		{Letter: 'S', Name: "subsection", Description: "level 2 sections"},
		{Letter: 't', Name: "subsubsection", Description: "level 3 sections"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{Pattern: `^#[ \t]+(.*?)[ \t#]*$`, Name: 1, Kind: 'c'},
		{Pattern: `^##[ \t]+(.*?)[ \t#]*$`, Name: 1, Kind: 's'},
		{Pattern: `^###[ \t]+(.*?)[ \t#]*$`, Name: 1, Kind: 'S'},
		{Pattern: `^####[ \t]+(.*?)[ \t#]*$`, Name: 1, Kind: 't'},
	},
}

var Make = &Definition{
	Name:       "Make",
	Extensions: []string{"mk", "mak"},
	Filenames:  []string{"Makefile", "makefile", "GNUmakefile"},
	Aliases:    []string{"makefile"},
	Kinds: []tags.Kind{
		{Letter: 'm', Name: "macro", Description: "macros"},
		{Letter: 't', Name: "target", Description: "targets"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{Pattern: `^(?:export\s+|override\s+)?([A-Za-z_][\w.-]*)\s*(?:::|[:+?!])?=`, Name: 1, Kind: 'm'},
		{Pattern: `^\s*define\s+([A-Za-z_][\w.-]*)`, Name: 1, Kind: 'm'},
		{Pattern: `^([A-Za-z0-9_][\w./-]*)\s*::?(?:[^=]|$)`, Name: 1, Kind: 't'},
	},
}

var Sh = &Definition{
	Name:       "Sh",
	Extensions: []string{"sh", "bash", "ksh", "zsh"},
	Aliases:    []string{"bash", "shell", "zsh", "ksh"},
	Kinds: []tags.Kind{
		{Letter: 'f', Name: "function", Description: "functions"},
		{Letter: 'a', Name: "alias", Description: "aliases"},
	},
	FirstMatchOnly: true,
	Rules: []Rule{
		{Pattern: `^\s*function\s+([\w.:-]+)`, Name: 1, Kind: 'f'},
		{Pattern: `^\s*([\w.:-]+)\s*\(\s*\)`, Name: 1, Kind: 'f'},
		{Pattern: `^\s*alias\s+([\w.-]+)=`, Name: 1, Kind: 'a'},
	},
}

func init() {
	Register(Markdown)
	Register(Make)
	Register(Sh)
}
