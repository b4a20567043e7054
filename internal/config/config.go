// Package config assembles dict2file settings from defaults, an optional
// YAML file and the environment. Command-line flags are applied on top by
// the CLI.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"dict2file/internal/analysis"
)

// Environment variables read by FromEnv.
const (
	EnvOutput = "AFL_LLVM_DICT2FILE"
	EnvDebug  = "AFL_DEBUG"
	EnvQuiet  = "AFL_QUIET"
	EnvMinLen = "DICT2FILE_MIN_LEN"
	EnvMaxLen = "DICT2FILE_MAX_LEN"
)

// Config is the complete run configuration.
type Config struct {
	OutputPath string   `json:"output" yaml:"output" jsonschema:"title=Output,description=Absolute path of the dictionary file entries are appended to"`
	Debug      bool     `json:"debug,omitempty" yaml:"debug" jsonschema:"title=Debug,description=Trace every classification and resolution"`
	Quiet      bool     `json:"quiet,omitempty" yaml:"quiet" jsonschema:"title=Quiet,description=Suppress the banner and per-entry lines"`
	MinLen     int      `json:"min_len,omitempty" yaml:"min_len" jsonschema:"title=Minimum length,minimum=1,default=3"`
	MaxLen     int      `json:"max_len,omitempty" yaml:"max_len" jsonschema:"title=Maximum length,minimum=1,default=32"`
	Ignore     []string `json:"ignore,omitempty" yaml:"ignore" jsonschema:"title=Ignore,description=Additional function name prefixes that are never scanned"`
}

// Default returns the built-in configuration. It has no output path.
func Default() Config {
	return Config{MinLen: analysis.MinLen, MaxLen: analysis.MaxLen}
}

// Error is a fatal configuration problem, reported before any module is
// read.
type Error struct {
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s %q %s", e.Field, e.Value, e.Reason)
}

// Decode overlays YAML from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := c.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// FromEnv overlays the AFL and dict2file environment variables onto c.
// AFL_DEBUG and AFL_QUIET only need to be present.
func (c *Config) FromEnv() error {
	if env.Has(EnvOutput) {
		c.OutputPath = env.Str(EnvOutput)
	}
	if env.Has(EnvDebug) {
		c.Debug = true
	}
	if env.Has(EnvQuiet) {
		c.Quiet = true
	}
	for _, v := range []struct {
		name string
		dst  *int
	}{{EnvMinLen, &c.MinLen}, {EnvMaxLen, &c.MaxLen}} {
		if !env.Has(v.name) {
			continue
		}
		s := env.Str(v.name)
		n, err := strconv.Atoi(s)
		if err != nil {
			return &Error{Field: v.name, Value: s, Reason: "is not an integer"}
		}
		*v.dst = n
	}
	return nil
}

// Load builds a configuration from defaults, the optional file at path and
// the environment, in that order.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return c, err
		}
	}
	if err := c.FromEnv(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate reports the first fatal problem as an *Error.
func (c Config) Validate() error {
	switch {
	case c.OutputPath == "":
		return &Error{Field: "output", Reason: "is not set (use --output or " + EnvOutput + ")"}
	case !filepath.IsAbs(c.OutputPath):
		return &Error{Field: "output", Value: c.OutputPath, Reason: "is not an absolute path"}
	}
	if err := c.Bounds().Validate(); err != nil {
		return &Error{Field: "bounds", Value: fmt.Sprintf("%d..%d", c.MinLen, c.MaxLen), Reason: err.Error()}
	}
	return nil
}

// Bounds returns the configured entry length range.
func (c Config) Bounds() analysis.Bounds {
	return analysis.Bounds{Min: c.MinLen, Max: c.MaxLen}
}

// IgnoreList returns the default ignore list extended with c.Ignore.
func (c Config) IgnoreList() analysis.IgnoreList {
	return analysis.DefaultIgnoreList().With(c.Ignore...)
}

// Schema returns the JSON schema of Config, indented.
func Schema() ([]byte, error) {
	reflector := new(jsonschema.Reflector)
	bts, err := json.MarshalIndent(reflector.Reflect(&Config{}), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return bts, nil
}
