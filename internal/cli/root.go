// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeranaias/rigtags/internal/config"
	"github.com/jeranaias/rigtags/internal/index"
	"github.com/jeranaias/rigtags/internal/logging"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ProgramURL is written to the TAG_PROGRAM_URL pseudo-tag.
const ProgramURL = "https://github.com/jeranaias/rigtags"

// =============================================================================
// FLAG BINDINGS
// =============================================================================

// binding ties a command-line flag to a config key. Changed flags are
// applied over the loaded config with config.Set.
type binding struct {
	flag   string
	key    string
	invert bool // boolean flag that turns the key off
}

var bindings = []binding{
	{flag: "output", key: "output.file"},
	{flag: "format", key: "output.format"},
	{flag: "sort", key: "output.sort"},
	{flag: "fields", key: "fields.spec"},
	{flag: "no-extension-fields", key: "fields.extension", invert: true},
	{flag: "excmd", key: "locate.excmd"},
	{flag: "line-directives", key: "locate.line_directives"},
	{flag: "backward", key: "locate.backward"},
	{flag: "pattern-length-limit", key: "locate.pattern_length_limit"},
	{flag: "languages", key: "input.languages"},
	{flag: "exclude", key: "input.exclude"},
	{flag: "max-file-size", key: "input.max_file_size"},
	{flag: "recurse", key: "input.recurse"},
	{flag: "input-encoding", key: "input.encoding"},
	{flag: "log-level", key: "log.level"},
	{flag: "log-file", key: "log.file"},
	{flag: "db", key: "database.path"},
}

// app is the state shared by all commands of one invocation.
type app struct {
	configPath string
	quiet      bool

	cfg *config.Config
	log *logging.Logger
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the rigtags command tree.
func NewRootCommand() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "rigtags [flags] [paths...]",
		Short: "Generate ctags-compatible tag files",
		Long: `rigtags scans source files with per-language pattern rules and writes
a tag file: one line per symbol with its name, file and a locator.

Output follows the universal-ctags u-ctags format. The strict format
drops entries whose values contain tabs or newlines; the extended
format keeps them.`,
		Example: `  rigtags -R .
  rigtags -f - --fields=+nS main.go
  rigtags --excmd=combine --languages=Go,Python -R src
  rigtags lookup NewServer`,
		Version:           versionString(),
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTags,
	}
	root.SetVersionTemplate("rigtags {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./"+config.LocalFileName+" or ~/.rigtags/config.toml)")
	pf.StringP("output", "f", "", `tag file to write, "-" for stdout (default "tags")`)
	pf.String("fields", "", `extension fields, e.g. "+nS-k" or "+{Go.receiver}"`)
	pf.StringSlice("languages", nil, "languages to scan (default all)")
	pf.String("db", "", "mirror tags into this SQLite database")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-file", "", "write logs to this file instead of stderr")

	f := root.Flags()
	f.String("format", "", "output format: strict or extended")
	f.Bool("sort", true, "sort records by name")
	f.Bool("no-extension-fields", false, `omit the ;" extension field block`)
	f.String("excmd", "", "locator: number, pattern or combine")
	f.Bool("line-directives", false, "honor #line directives")
	f.Bool("backward", false, "use ?...? backward search patterns")
	f.Int("pattern-length-limit", 0, "truncate patterns to this many characters, 0 for no limit")
	f.StringSlice("exclude", nil, "base names to skip while recursing")
	f.Int64("max-file-size", 0, "skip files larger than this many bytes")
	f.BoolP("recurse", "R", false, "recurse into directories")
	f.String("input-encoding", "", "encoding of input files, e.g. latin1 or shift_jis")
	f.BoolVarP(&a.quiet, "quiet", "q", false, "do not print the run summary")

	root.AddCommand(
		a.listLanguagesCommand(),
		a.listKindsCommand(),
		a.listFieldsCommand(),
		a.lookupCommand(),
		a.configCommand(),
	)
	return root, a
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRoot()
	defer a.close()
	if err := root.ExecuteContext(ctx); err != nil {
		DisplayError(root.ErrOrStderr(), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func versionString() string {
	if GitCommit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildDate)
}

func program() index.Program {
	return index.Program{Name: "rigtags", URL: ProgramURL, Version: Version}
}

// usageArgs wraps a positional argument check so its failures exit with
// the usage code.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the config, applies changed flags and opens the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return &ConfigError{Err: err}
	}
	a.log = log
	return nil
}

func (a *app) close() {
	if a.log != nil {
		a.log.Close()
		a.log = nil
	}
}

// loadConfig reads --config when given and the usual search path otherwise.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		cfg, err := config.LoadFromPath(a.configPath)
		if err != nil {
			return nil, &ConfigError{Path: a.configPath, Err: err}
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, &ConfigError{Path: config.FindConfigFile(), Err: err}
	}
	return cfg, nil
}

// applyFlags copies every changed flag over cfg and revalidates. A value
// rejected by validation is reported against its flag.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	byKey := make(map[string]string)
	for _, b := range bindings {
		fl := flags.Lookup(b.flag)
		if fl == nil || !fl.Changed {
			continue
		}
		value := flagValue(fl)
		if b.invert {
			on, _ := strconv.ParseBool(value)
			value = strconv.FormatBool(!on)
		}
		if err := cfg.Set(b.key, value); err != nil {
			return NewValidationError("--"+b.flag, flagValue(fl), err.Error())
		}
		byKey[b.key] = b.flag
	}

	err := cfg.Validate()
	if err == nil {
		return nil
	}
	var verrs config.ValidateErrors
	if errors.As(err, &verrs) {
		for _, v := range verrs {
			if name, ok := byKey[v.Field]; ok {
				return NewValidationError("--"+name, flagValue(flags.Lookup(name)), v.Message)
			}
		}
	}
	return &ConfigError{Err: err}
}

func flagValue(fl *pflag.Flag) string {
	if sv, ok := fl.Value.(pflag.SliceValue); ok {
		return strings.Join(sv.GetSlice(), ",")
	}
	return fl.Value.String()
}

// =============================================================================
// TAG RUN
// =============================================================================

func (a *app) runTags(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		if !a.cfg.Input.Recurse {
			return NewValidationErrorWithExample("paths", "", "no input files", "rigtags -R .")
		}
		paths = []string{"."}
	}

	ix, err := index.New(a.cfg,
		index.WithLogger(a.log.Logger),
		index.WithStdout(cmd.OutOrStdout()),
		index.WithProgram(program()),
	)
	if err != nil {
		return err
	}

	res, err := ix.Run(cmd.Context(), paths)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if res.Rejected > 0 {
		fmt.Fprintf(stderr, "%s %s not written: tab or newline in a value; use --format=extended to keep them\n",
			WarningStyle.Render("[WARN]"), plural(res.Rejected, "entry", "entries"))
	}
	if !a.quiet && res.Output != "-" {
		printSummary(stderr, res)
	}
	return nil
}

func printSummary(w io.Writer, res *index.Result) {
	fmt.Fprintf(w, "%s %s from %s written to %s (%s, %s)\n",
		SuccessStyle.Render("[OK]"),
		plural(res.Entries, "tag", "tags"),
		plural(res.Files, "file", "files"),
		res.Output,
		formatBytes(res.Bytes),
		formatDurationShort(res.Duration),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
