// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rigtags/internal/util"
	"github.com/jeranaias/rigtags/internal/writer"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete rigtags configuration.
type Config struct {
	Output   OutputConfig   `toml:"output"`
	Fields   FieldsConfig   `toml:"fields"`
	Locate   LocateConfig   `toml:"locate"`
	Input    InputConfig    `toml:"input"`
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
}

// OutputConfig controls the tag file.
type OutputConfig struct {
	File   string `toml:"file"`   // "-" writes to stdout
	Format string `toml:"format"` // strict or extended
	Sort   bool   `toml:"sort"`
}

// FieldsConfig selects extension fields.
type FieldsConfig struct {
	Spec      string `toml:"spec"`      // "+n-k{Go.receiver}" or comma-separated names
	Extension bool   `toml:"extension"` // append the ;" block
}

// LocateConfig controls the location column.
type LocateConfig struct {
	Excmd              string `toml:"excmd"` // number, pattern, combine
	LineDirectives     bool   `toml:"line_directives"`
	Backward           bool   `toml:"backward"`
	PatternLengthLimit int    `toml:"pattern_length_limit"`
}

// InputConfig controls which files are read and how.
type InputConfig struct {
	Languages   []string `toml:"languages"` // empty means all
	Exclude     []string `toml:"exclude"`
	MaxFileSize int64    `toml:"max_file_size"`
	Recurse     bool     `toml:"recurse"`
	Encoding    string   `toml:"encoding"` // empty means UTF-8
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DatabaseConfig enables the SQLite mirror of written tags.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// Excmd values.
const (
	ExcmdNumber  = "number"
	ExcmdPattern = "pattern"
	ExcmdCombine = "combine"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with the classic ctags defaults.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			File:   writer.DefaultFileName,
			Format: writer.DefaultFormat,
			Sort:   true,
		},
		Fields: FieldsConfig{
			Extension: true,
		},
		Locate: LocateConfig{
			Excmd:              ExcmdPattern,
			PatternLengthLimit: 96,
		},
		Input: InputConfig{
			MaxFileSize: 1024 * 1024,
			Recurse:     false,
			Exclude:     []string{".git", "node_modules", "vendor", "__pycache__", ".venv"},
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ErrUnknownKey is returned for config file keys rigtags does not know.
var ErrUnknownKey = errors.New("unknown config key")

// LocalFileName is looked up in the working directory before the user file.
const LocalFileName = ".rigtags.toml"

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigtags"), nil
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// FindConfigFile returns the first existing config file: ./.rigtags.toml,
// then ~/.rigtags/config.toml. It returns "" when neither exists.
func FindConfigFile() string {
	if _, err := os.Stat(LocalFileName); err == nil {
		return LocalFileName
	}
	if p, err := ConfigPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the first config file found, applies environment overrides,
// and validates. Without a file the defaults are used.
func Load() (*Config, error) {
	if path := FindConfigFile(); path != "" {
		return LoadFromPath(path)
	}
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep the
// values already in cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	return nil
}

// LoadFromPath loads a specific file with overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults restores required values a file set to empty.
func (c *Config) fillDefaults() {
	defaults := Default()
	if c.Output.File == "" {
		c.Output.File = defaults.Output.File
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	if c.Locate.Excmd == "" {
		c.Locate.Excmd = defaults.Locate.Excmd
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path atomically.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# rigtags configuration file\n")
	b.WriteString("# Keys mirror the command-line flags; see `rigtags --help`.\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if formats := writer.Formats(); !slices.Contains(formats, strings.ToLower(c.Output.Format)) {
		errs = append(errs, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: %s", c.Output.Format, strings.Join(formats, ", ")),
		})
	}

	switch c.Locate.Excmd {
	case ExcmdNumber, ExcmdPattern, ExcmdCombine:
	default:
		errs = append(errs, ValidationError{
			Field:   "locate.excmd",
			Message: fmt.Sprintf("invalid excmd '%s', must be one of: number, pattern, combine", c.Locate.Excmd),
		})
	}

	if c.Locate.PatternLengthLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "locate.pattern_length_limit",
			Message: "must be 0 (unlimited) or positive",
		})
	}

	if c.Input.MaxFileSize < 0 {
		errs = append(errs, ValidationError{
			Field:   "input.max_file_size",
			Message: "must be 0 (unlimited) or positive",
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if c.Output.File == "" {
		errs = append(errs, ValidationError{Field: "output.file", Message: "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported environment variables:
//   - RIGTAGS_OUTPUT: overrides output.file
//   - RIGTAGS_FORMAT: overrides output.format
//   - RIGTAGS_EXCMD: overrides locate.excmd
//   - RIGTAGS_FIELDS: overrides fields.spec
//   - RIGTAGS_LOG_LEVEL: overrides log.level
//   - RIGTAGS_DB: overrides database.path
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RIGTAGS_OUTPUT"); v != "" {
		c.Output.File = v
	}
	if v := os.Getenv("RIGTAGS_FORMAT"); v != "" {
		c.Output.Format = v
	}
	if v := os.Getenv("RIGTAGS_EXCMD"); v != "" {
		c.Locate.Excmd = v
	}
	if v := os.Getenv("RIGTAGS_FIELDS"); v != "" {
		c.Fields.Spec = v
	}
	if v := os.Getenv("RIGTAGS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RIGTAGS_DB"); v != "" {
		c.Database.Path = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns the value at a dotted TOML key such as "locate.excmd".
func (c *Config) Get(key string) (any, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a string value at a dotted TOML key, converting it to the
// field type. Slice fields take a comma-separated list.
func (c *Config) Set(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlName(t.Field(i)) == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	tag := f.Tag.Get("toml")
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return strings.ToLower(f.Name)
}

func setFieldValue(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		var items []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("cannot assign to %s", field.Type())
	}
	return nil
}

// AllKeys returns every settable key in dot notation.
func AllKeys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, tomlName(section)+"."+tomlName(section.Type.Field(j)))
		}
	}
	return keys
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Input.Languages = append([]string(nil), c.Input.Languages...)
	clone.Input.Exclude = append([]string(nil), c.Input.Exclude...)
	return &clone
}
