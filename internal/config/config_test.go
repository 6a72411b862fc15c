package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/lessc/internal/config"
	"bennypowers.dev/lessc/internal/processor"
	"bennypowers.dev/lessc/internal/value"
	"bennypowers.dev/lessc/internal/writer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "compact", cfg.Format)
	assert.Equal(t, "convert", cfg.Units)
	assert.Equal(t, "parens-division", cfg.Math)
	assert.True(t, cfg.KeepComments)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("no config file", func(t *testing.T) {
		dir := t.TempDir()
		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("yaml", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".lessc.yaml", `
format: pretty
keepComments: false
includePaths:
  - vendor/less
globalVars:
  brand: "#336699"
tokens:
  - tokens/*.json
  - path: design/colors.yaml
    prefix: ds
    groupMarkers: [_, DEFAULT]
`)
		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".lessc.yaml"), path)
		assert.Equal(t, "pretty", cfg.Format)
		assert.Equal(t, "convert", cfg.Units)
		assert.False(t, cfg.KeepComments)
		assert.Equal(t, []string{filepath.Join(dir, "vendor/less")}, cfg.IncludePaths)
		assert.Equal(t, map[string]string{"brand": "#336699"}, cfg.GlobalVars)
		require.Len(t, cfg.Tokens, 2)
		assert.Equal(t, config.TokenFileSpec{Path: filepath.Join(dir, "tokens/*.json")}, cfg.Tokens[0])
		assert.Equal(t, config.TokenFileSpec{
			Path:         filepath.Join(dir, "design/colors.yaml"),
			Prefix:       "ds",
			GroupMarkers: []string{"_", "DEFAULT"},
		}, cfg.Tokens[1])
	})

	t.Run("yml extension", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".lessc.yml", "math: always\n")
		cfg, _, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "always", cfg.Math)
	})

	t.Run("jsonc", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "lessc.json", `{
  // strict units catch px + em mistakes
  "units": "strict",
  "sourceMap": true,
  "modifyVars": {"color": "red"},
  "tokens": [{"path": "/abs/tokens.json", "prefix": "x"}],
}`)
		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "lessc.json"), path)
		assert.Equal(t, "strict", cfg.Units)
		assert.True(t, cfg.SourceMap)
		assert.True(t, cfg.KeepComments)
		assert.Equal(t, map[string]string{"color": "red"}, cfg.ModifyVars)
		assert.Equal(t, []config.TokenFileSpec{{Path: "/abs/tokens.json", Prefix: "x"}}, cfg.Tokens)
	})

	t.Run("yaml wins over json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".lessc.yaml", "format: pretty\n")
		writeFile(t, dir, "lessc.json", `{"format": "compact"}`)
		cfg, _, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "pretty", cfg.Format)
	})

	t.Run("package.json key", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{
  "name": "site",
  "lessc": {"format": "pretty", "includePaths": ["styles"]}
}`)
		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "package.json"), path)
		assert.Equal(t, "pretty", cfg.Format)
		assert.Equal(t, []string{filepath.Join(dir, "styles")}, cfg.IncludePaths)
	})

	t.Run("package.json without key", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "package.json", `{"name": "site"}`)
		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("malformed json", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "lessc.json", `{"format": `)
		_, _, err := config.Load(dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrConfigFile))
		assert.Contains(t, err.Error(), "lessc.json")
	})

	t.Run("invalid value", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".lessc.yaml", "format: fancy\n")
		_, _, err := config.Load(dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig))

		var verr *config.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "format", verr.Field)
		assert.Equal(t, "fancy", verr.Value)
		assert.Contains(t, err.Error(), `invalid format "fancy": expected compact or pretty`)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "build.yaml", "units: strict\ntokens: [a.json]\n")
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Units)
	assert.Equal(t, filepath.Join(dir, "a.json"), cfg.Tokens[0].Path)

	_, err = config.LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, config.ErrConfigFile))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*config.Config)
		field string
	}{
		{name: "units", edit: func(c *config.Config) { c.Units = "loose" }, field: "units"},
		{name: "math", edit: func(c *config.Config) { c.Math = "sometimes" }, field: "math"},
		{name: "log level", edit: func(c *config.Config) { c.LogLevel = "loud" }, field: "logLevel"},
		{name: "token path", edit: func(c *config.Config) {
			c.Tokens = []config.TokenFileSpec{{Prefix: "ds"}}
		}, field: "tokens[0].path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.edit(cfg)
			err := cfg.Validate()
			var verr *config.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestProcessorOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Units = "strict"
	cfg.Math = "always"
	cfg.KeepComments = false
	cfg.Format = "pretty"

	opts, err := cfg.ProcessorOptions()
	require.NoError(t, err)
	assert.Equal(t, value.UnitsStrict, opts.Units)
	assert.Equal(t, processor.MathAlways, opts.Math)
	assert.True(t, opts.StripComments)
	assert.Equal(t, writer.FormatPretty, cfg.WriterFormat())
}
