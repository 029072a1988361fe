// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigtags/internal/writer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, writer.DefaultFileName, cfg.Output.File)
	assert.Equal(t, writer.DefaultFormat, cfg.Output.Format)
	assert.Equal(t, ExcmdPattern, cfg.Locate.Excmd)
	assert.True(t, cfg.Fields.Extension)
}

func TestValidate_AcceptsEveryWriterFormat(t *testing.T) {
	for _, f := range writer.Formats() {
		cfg := Default()
		cfg.Output.Format = strings.ToUpper(f)
		assert.NoError(t, cfg.Validate(), f)
	}
	cfg := Default()
	cfg.Output.Format = "json"
	assert.ErrorContains(t, cfg.Validate(), "must be one of: extended, strict")
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[output]
file = "TAGS"
format = "extended"

[locate]
excmd = "combine"
backward = true

[input]
languages = ["Go", "Python"]
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "TAGS", cfg.Output.File)
	assert.Equal(t, "extended", cfg.Output.Format)
	assert.Equal(t, ExcmdCombine, cfg.Locate.Excmd)
	assert.True(t, cfg.Locate.Backward)
	assert.Equal(t, []string{"Go", "Python"}, cfg.Input.Languages)

	// Untouched keys keep their defaults.
	assert.True(t, cfg.Output.Sort)
	assert.Equal(t, 96, cfg.Locate.PatternLengthLimit)
}

func TestLoadFromPath_UnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[output]\nfiel = \"x\"\n")
	_, err := LoadFromPath(path)
	require.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), "output.fiel")
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[output]
format = "json"

[locate]
excmd = "regex"
pattern_length_limit = -1
`)
	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, v := range verrs {
		fields[i] = v.Field
	}
	assert.ElementsMatch(t, []string{"output.format", "locate.excmd", "locate.pattern_length_limit"}, fields)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RIGTAGS_OUTPUT", "-")
	t.Setenv("RIGTAGS_FORMAT", "extended")
	t.Setenv("RIGTAGS_EXCMD", "number")
	t.Setenv("RIGTAGS_FIELDS", "+n")
	t.Setenv("RIGTAGS_LOG_LEVEL", "debug")
	t.Setenv("RIGTAGS_DB", "tags.db")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "-", cfg.Output.File)
	assert.Equal(t, "extended", cfg.Output.Format)
	assert.Equal(t, ExcmdNumber, cfg.Locate.Excmd)
	assert.Equal(t, "+n", cfg.Fields.Spec)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "tags.db", cfg.Database.Path)
}

func TestLoad_LocalFileWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)

	writeFile(t, dir, LocalFileName, "[output]\nfile = \"local.tags\"\n")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "local.tags", cfg.Output.File)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Locate.Excmd = ExcmdNumber
	cfg.Input.Languages = []string{"Rust"}

	require.NoError(t, SaveTOML(cfg, path))
	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("locate.excmd")
	require.NoError(t, err)
	assert.Equal(t, "pattern", v)

	require.NoError(t, cfg.Set("locate.pattern_length_limit", "0"))
	assert.Equal(t, 0, cfg.Locate.PatternLengthLimit)

	require.NoError(t, cfg.Set("output.sort", "false"))
	assert.False(t, cfg.Output.Sort)

	require.NoError(t, cfg.Set("input.languages", "Go, HTML,"))
	assert.Equal(t, []string{"Go", "HTML"}, cfg.Input.Languages)

	require.ErrorIs(t, cfg.Set("output.nope", "x"), ErrUnknownKey)
	require.Error(t, cfg.Set("output.sort", "maybe"))
	_, err = cfg.Get("output")
	require.Error(t, err)
}

func TestAllKeys(t *testing.T) {
	keys := AllKeys()
	assert.Contains(t, keys, "output.file")
	assert.Contains(t, keys, "locate.line_directives")
	assert.Contains(t, keys, "database.path")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	c := cfg.Clone()
	c.Input.Exclude[0] = "changed"
	assert.Equal(t, ".git", cfg.Input.Exclude[0])
}
