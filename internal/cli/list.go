// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigtags/internal/index"
	"github.com/jeranaias/rigtags/internal/parsers"
	"github.com/jeranaias/rigtags/internal/tags"
)

// =============================================================================
// LIST-LANGUAGES
// =============================================================================

func (a *app) listLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-languages",
		Short: "List supported languages and the files they match",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected := a.selectedLanguages()
			t := newTable("LANGUAGE", "KINDS", "MATCHES")
			for _, d := range parsers.All() {
				row := []string{d.Name, kindLetters(d.Kinds), languageMatches(d)}
				if selected != nil && !selected[d] {
					row[0] += " [disabled]"
					t.addDim(row...)
					continue
				}
				t.add(row...)
			}
			return t.render(cmd.OutOrStdout())
		},
	}
}

// selectedLanguages returns the languages named by input.languages, or nil
// when every language is enabled.
func (a *app) selectedLanguages() map[*parsers.Definition]bool {
	if len(a.cfg.Input.Languages) == 0 {
		return nil
	}
	selected := make(map[*parsers.Definition]bool)
	for _, name := range a.cfg.Input.Languages {
		if d := parsers.ForName(name); d != nil {
			selected[d] = true
		}
	}
	return selected
}

func kindLetters(kinds []tags.Kind) string {
	var b strings.Builder
	for _, k := range kinds {
		b.WriteByte(kindLetter(k))
	}
	return b.String()
}

func kindLetter(k tags.Kind) byte {
	if !k.HasLetter() {
		return '-'
	}
	return k.Letter
}

func languageMatches(d *parsers.Definition) string {
	matches := make([]string, 0, len(d.Extensions)+len(d.Filenames))
	for _, ext := range d.Extensions {
		matches = append(matches, "*."+ext)
	}
	matches = append(matches, d.Filenames...)
	return strings.Join(matches, " ")
}

// =============================================================================
// LIST-KINDS
// =============================================================================

func (a *app) listKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-kinds [LANG]",
		Short: "List the kinds of symbols each language tags",
		Example: `  rigtags list-kinds
  rigtags list-kinds Go`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				d := parsers.ForName(args[0])
				if d == nil {
					return NewValidationErrorWithExample("language", args[0], "unknown language", "rigtags list-languages")
				}
				t := newTable("LETTER", "NAME", "DESCRIPTION")
				for _, k := range d.Kinds {
					t.add(string(kindLetter(k)), k.Name, k.Description)
				}
				return t.render(cmd.OutOrStdout())
			}

			t := newTable("LANGUAGE", "LETTER", "NAME", "DESCRIPTION")
			for _, d := range parsers.All() {
				for _, k := range d.Kinds {
					t.add(d.Name, string(kindLetter(k)), k.Name, k.Description)
				}
			}
			return t.render(cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// LIST-FIELDS
// =============================================================================

func (a *app) listFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-fields",
		Short: "List extension fields and whether they are enabled",
		Long: `List every field rigtags knows: the built-in fields and the fields
declared by language parsers. The ENABLED column reflects --fields and
the fields.spec config key.`,
		Example: `  rigtags list-fields
  rigtags --fields=+nS list-fields`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ix, err := index.New(a.cfg, index.WithLogger(a.log.Logger), index.WithProgram(program()))
			if err != nil {
				return err
			}

			t := newTable("LETTER", "NAME", "ENABLED", "LANGUAGE", "FIXED", "DESCRIPTION")
			for _, d := range ix.Registry().Fields() {
				letter := "-"
				if d.Letter != 0 {
					letter = string(d.Letter)
				}
				lang := d.Namespace
				if lang == "" {
					lang = "NONE"
				}
				row := []string{letter, d.Name, yesNo(d.Enabled, "on", "off"), lang, yesNo(d.Fixed, "yes", "no"), d.Description}
				if d.Enabled {
					t.add(row...)
				} else {
					t.addDim(row...)
				}
			}
			return t.render(cmd.OutOrStdout())
		},
	}
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
