// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/rigtags/internal/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit rigtags configuration",
		Long: `Show and edit the TOML config file. Without --config, set and init
use ./` + config.LocalFileName + `, or the first existing config file for set.`,
		// Subcommands load what they need; a broken file must not block set.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}
	cmd.AddCommand(
		a.configShowCommand(),
		a.configGetCommand(),
		a.configSetCommand(),
		a.configKeysCommand(),
		a.configInitCommand(),
		a.configPathCommand(),
	)
	return cmd
}

// editPath is the file set and init write to.
func (a *app) editPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	if p := config.FindConfigFile(); p != "" {
		return p
	}
	return config.LocalFileName
}

func (a *app) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, args); err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(a.cfg)
		},
	}
}

func (a *app) configGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "get KEY",
		Short:   "Print one effective config value",
		Example: "  rigtags config get locate.excmd",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, args); err != nil {
				return err
			}
			v, err := a.cfg.Get(args[0])
			if err != nil {
				return NewValidationErrorWithExample("key", args[0], err.Error(), "rigtags config keys")
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func (a *app) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one value in the config file",
		Example: `  rigtags config set output.format extended
  rigtags config set input.languages Go,Python`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.editPath()
			cfg := config.Default()
			if _, err := os.Stat(path); err == nil {
				if err := config.LoadTOML(cfg, path); err != nil {
					return &ConfigError{Path: path, Err: err}
				}
			}

			key, value := args[0], args[1]
			if err := cfg.Set(key, value); err != nil {
				return NewValidationErrorWithExample("key", key, err.Error(), "rigtags config keys")
			}
			if err := cfg.Validate(); err != nil {
				var verrs config.ValidateErrors
				if errors.As(err, &verrs) && len(verrs) > 0 {
					return NewValidationError(key, value, verrs[0].Message)
				}
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s = %s in %s\n", SuccessStyle.Render("[OK]"), key, value, path)
			return nil
		},
	}
}

func (a *app) configKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every config key with its default",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			def := config.Default()
			t := newTable("KEY", "DEFAULT")
			for _, k := range config.AllKeys() {
				v, err := def.Get(k)
				if err != nil {
					return err
				}
				t.add(k, v)
			}
			return t.render(cmd.OutOrStdout())
		},
	}
}

func (a *app) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.LocalFileName
			}
			if _, err := os.Stat(path); err == nil && !force {
				return NewCommandError("config init", path+" already exists (use --force to overwrite)", nil)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s wrote %s\n", SuccessStyle.Render("[OK]"), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *app) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in effect",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configPath
			if path == "" {
				path = config.FindConfigFile()
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("(none, using defaults)"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
