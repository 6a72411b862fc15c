package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bennypowers.dev/lessc/internal/log"
	"bennypowers.dev/lessc/internal/processor"
	"bennypowers.dev/lessc/internal/value"
	"bennypowers.dev/lessc/internal/writer"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// PackageJSONKey is the package.json field holding compiler settings
const PackageJSONKey = "lessc"

// Files searched by Load, in order. package.json is consulted last.
var Files = []string{".lessc.yaml", ".lessc.yml", "lessc.json"}

// TokenFileSpec names a design token file (or doublestar pattern) and the
// variable prefix its tokens get.
type TokenFileSpec struct {
	Path         string   `json:"path" yaml:"path"`
	Prefix       string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	GroupMarkers []string `json:"groupMarkers,omitempty" yaml:"groupMarkers,omitempty"`
}

// UnmarshalJSON accepts either a bare path string or an object
func (s *TokenFileSpec) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*s = TokenFileSpec{Path: path}
		return nil
	}
	type plain TokenFileSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = TokenFileSpec(p)
	return nil
}

// UnmarshalYAML accepts either a bare path string or a mapping
func (s *TokenFileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = TokenFileSpec{Path: node.Value}
		return nil
	}
	type plain TokenFileSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = TokenFileSpec(p)
	return nil
}

// Config holds compiler settings read from a project config file and
// overridden by command line flags.
type Config struct {
	// IncludePaths are searched for @import targets not found next to the
	// importing file
	IncludePaths []string `json:"includePaths,omitempty" yaml:"includePaths,omitempty"`

	// Format is "compact" or "pretty"
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// Units is the unit policy: "convert" or "strict"
	Units string `json:"units,omitempty" yaml:"units,omitempty"`

	// Math is "parens-division" or "always"
	Math string `json:"math,omitempty" yaml:"math,omitempty"`

	KeepComments bool `json:"keepComments" yaml:"keepComments"`

	// SourceMap enables v3 source map output
	SourceMap    bool   `json:"sourceMap,omitempty" yaml:"sourceMap,omitempty"`
	SourceMapURL string `json:"sourceMapURL,omitempty" yaml:"sourceMapURL,omitempty"`

	// GlobalVars are visible everywhere but overridden by the stylesheet
	GlobalVars map[string]string `json:"globalVars,omitempty" yaml:"globalVars,omitempty"`

	// ModifyVars override root variables of the stylesheet
	ModifyVars map[string]string `json:"modifyVars,omitempty" yaml:"modifyVars,omitempty"`

	// Tokens are design token files loaded as global variables
	Tokens []TokenFileSpec `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
}

// Default returns the configuration used when no config file is found
func Default() *Config {
	return &Config{
		Format:       writer.FormatCompact.String(),
		Units:        value.UnitsConvert.String(),
		Math:         processor.MathParensDivision.String(),
		KeepComments: true,
		LogLevel:     "warn",
	}
}

// Load reads the first config file found in root. It returns the
// default configuration and an empty path when there is none. Relative
// include and token paths are resolved against root.
func Load(root string) (*Config, string, error) {
	for _, name := range Files {
		path := filepath.Join(root, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", NewFileError(path, err)
		}
		cfg, err := parse(path, data)
		if err != nil {
			return nil, "", err
		}
		cfg.resolve(root)
		log.Debug("loaded config from %s", path)
		return cfg, path, nil
	}

	path := filepath.Join(root, "package.json")
	cfg, err := readPackageJSON(path)
	if err != nil {
		return nil, "", err
	}
	if cfg != nil {
		cfg.resolve(root)
		log.Debug("loaded config from %s key of %s", PackageJSONKey, path)
		return cfg, path, nil
	}
	return Default(), "", nil
}

// LoadFile reads a config file at an explicit path. The file's directory
// is the root for relative paths.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewFileError(path, err)
	}
	var cfg *Config
	if filepath.Base(path) == "package.json" {
		cfg, err = packageJSONConfig(path, data)
		if err == nil && cfg == nil {
			cfg = Default()
		}
	} else {
		cfg, err = parse(path, data)
	}
	if err != nil {
		return nil, err
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func parse(path string, data []byte) (*Config, error) {
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, NewFileError(path, err)
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, NewFileError(path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// readPackageJSON returns nil when package.json is missing or carries no
// compiler key.
func readPackageJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, NewFileError(path, err)
	}
	return packageJSONConfig(path, data)
}

func packageJSONConfig(path string, data []byte) (*Config, error) {
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return nil, NewFileError(path, err)
	}
	raw, ok := pkg[PackageJSONKey]
	if !ok {
		return nil, nil
	}
	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, NewFileError(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolve(root string) {
	for i, p := range c.IncludePaths {
		if !filepath.IsAbs(p) {
			c.IncludePaths[i] = filepath.Join(root, p)
		}
	}
	for i, t := range c.Tokens {
		if !filepath.IsAbs(t.Path) {
			c.Tokens[i].Path = filepath.Join(root, t.Path)
		}
	}
}

// Validate checks every enumerated setting and reports the first bad one
func (c *Config) Validate() error {
	if _, ok := writer.ParseFormat(c.Format); !ok {
		return NewValidationError("format", c.Format, "compact", "pretty")
	}
	if _, ok := value.ParseUnitPolicy(c.Units); !ok {
		return NewValidationError("units", c.Units, "convert", "strict")
	}
	if _, ok := processor.ParseMathMode(c.Math); !ok {
		return NewValidationError("math", c.Math, "parens-division", "always")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return NewValidationError("logLevel", c.LogLevel, "debug", "info", "warn", "error")
	}
	for i, t := range c.Tokens {
		if t.Path == "" {
			return NewValidationError(fmt.Sprintf("tokens[%d].path", i), "", "a file path or pattern")
		}
	}
	return nil
}

// ProcessorOptions converts the settings the processor consumes. Globals
// and ModifyVars are filled in by the caller once token files are loaded.
func (c *Config) ProcessorOptions() (processor.Options, error) {
	if err := c.Validate(); err != nil {
		return processor.Options{}, err
	}
	units, _ := value.ParseUnitPolicy(c.Units)
	math, _ := processor.ParseMathMode(c.Math)
	return processor.Options{
		Units:         units,
		Math:          math,
		StripComments: !c.KeepComments,
	}, nil
}

// WriterFormat returns the configured output layout
func (c *Config) WriterFormat() writer.Format {
	f, _ := writer.ParseFormat(c.Format)
	return f
}
