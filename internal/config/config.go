// Package config loads the optional .nestedjson.yaml settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nestedjson/internal/codec"
	"github.com/roach88/nestedjson/internal/pathfmt"
)

// DefaultFile is the settings file looked up in the working directory.
const DefaultFile = ".nestedjson.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds user settings. Zero fields are filled by Default.
type Config struct {
	// Indent is the number of spaces per level when saving or printing.
	Indent int `yaml:"indent"`

	// Notation is the path notation used for display.
	Notation pathfmt.Notation `yaml:"notation"`

	// MaxDepth bounds nesting when parsing and serializing.
	MaxDepth int `yaml:"max_depth"`

	// Format is the CLI output format: text or json.
	Format string `yaml:"format"`

	// Store is an optional SQLite revision database path.
	Store string `yaml:"store,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Indent:   codec.DefaultIndent,
		Notation: pathfmt.Colon,
		MaxDepth: codec.DefaultMaxDepth,
		Format:   FormatText,
	}
}

// Load reads path. A missing file is not an error when optional is true;
// the defaults are returned instead.
func Load(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Decode(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML settings over the defaults. Unknown fields are rejected.
func Decode(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Indent < 0 || c.Indent > 10 {
		return fmt.Errorf("indent must be between 0 and 10, got %d", c.Indent)
	}
	if !c.Notation.Valid() {
		return fmt.Errorf("unknown notation %q", c.Notation)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatText, FormatJSON, c.Format)
	}
	return nil
}
