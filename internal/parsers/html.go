// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parsers

import "github.com/jeranaias/rigtags/internal/tags"

const htmlAttrs = `([ \t]+[a-z]+="?[^>"]*"?)*`

// HTML tags named anchors and inline JavaScript functions. Both rules
// are tried on every line.
var HTML = &Definition{
	Name:       "HTML",
	Extensions: []string{"htm", "html"},
	Kinds: []tags.Kind{
		{Letter: 'a', Name: "anchor", Description: "named anchors"},
		{Letter: 'f', Name: "function", Description: "JavaScript functions"},
	},
	Rules: []Rule{
		{
			Pattern:         `<a` + htmlAttrs + `[ \t]+name="?([^>"]+)"?` + htmlAttrs + `[ \t]*>`,
			Name:            2,
			Kind:            'a',
			CaseInsensitive: true,
		},
		{
			Pattern: `^[ \t]*function[ \t]*([A-Za-z0-9_]+)[ \t]*\(`,
			Name:    1,
			Kind:    'f',
		},
	},
}

func init() {
	Register(HTML)
}
