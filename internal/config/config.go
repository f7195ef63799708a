// Package config loads heapctl settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/inhies/go-bytesize"
	"gopkg.in/yaml.v3"
)

// Grower names.
const (
	GrowerSlice = "slice"
	GrowerMmap  = "mmap"
)

// ErrInvalid is returned for configuration values that parse but make no sense.
var ErrInvalid = errors.New("config: invalid value")

// Config is the heapctl configuration file.
type Config struct {
	Grower string `yaml:"grower"`
	Limit  Size   `yaml:"limit"`
	Log    Log    `yaml:"log"`
}

// Log configures internal/logger.
type Log struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Grower: GrowerSlice,
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing field keeps its default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Grower {
	case GrowerSlice, GrowerMmap:
	default:
		return fmt.Errorf("%w: grower %q (want %s or %s)", ErrInvalid, c.Grower, GrowerSlice, GrowerMmap)
	}
	if uint64(c.Limit) > uint64(maxInt) {
		return fmt.Errorf("%w: limit %s", ErrInvalid, c.Limit)
	}
	return nil
}

const maxInt = int(^uint(0) >> 1)

// Size is a byte count written either as a plain integer or with a unit
// suffix ("64MB", "1.5 GB"). It implements pflag.Value.
type Size bytesize.ByteSize

// ParseSize parses a plain byte count or a bytesize string.
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return Size(n), nil
	}
	b, err := bytesize.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %w", ErrInvalid, s, err)
	}
	return Size(b), nil
}

// Int returns the size as an int. Validate guarantees it fits.
func (s Size) Int() int { return int(s) }

// String formats the size with a binary unit, "0" for zero.
func (s Size) String() string {
	if s == 0 {
		return "0"
	}
	return bytesize.ByteSize(s).String()
}

// Set implements pflag.Value.
func (s *Size) Set(v string) error {
	n, err := ParseSize(v)
	if err != nil {
		return err
	}
	*s = n
	return nil
}

// Type implements pflag.Value.
func (s *Size) Type() string { return "size" }

// UnmarshalYAML accepts integer and string scalars.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: size must be a scalar (line %d)", ErrInvalid, node.Line)
	}
	return s.Set(node.Value)
}

// MarshalYAML writes the size in its String form.
func (s Size) MarshalYAML() (any, error) {
	return s.String(), nil
}
