package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is read from the working directory when present.
const DefaultFile = "pangraph.toml"

// EnvPrefix prefixes every environment override, e.g. PANGRAPH_PORT=9090.
const EnvPrefix = "PANGRAPH_"

// Report document formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds all configuration for the application
type Config struct {
	Output     string `koanf:"output"` // Report directory; empty writes no files
	Format     string `koanf:"format"` // Console format: text, json or yaml
	Name1      string `koanf:"name1"`  // Overrides the name derived from the first path
	Name2      string `koanf:"name2"`
	WebMode    bool   `koanf:"web"`
	Port       int    `koanf:"port"`
	Watch      bool   `koanf:"watch"`
	Structure  bool   `koanf:"structure"` // Count components and cycles too
	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`
	LogJSON    bool   `koanf:"log_json"`
	Quiet      bool   `koanf:"quiet"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// The config file is DefaultFile unless the flag set carries a non-empty
// "config" flag. A missing file is not an error; an unreadable one is.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"output":    "",
		"format":    FormatText,
		"name1":     "",
		"name2":     "",
		"web":       false,
		"port":      8080,
		"watch":     false,
		"structure": false,
		"verbosity": "",
		"verbose":   0,
		"log_json":  false,
		"quiet":     false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	path := DefaultFile
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			path = p
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	// 3. Environment Variables
	// Keys are flat, so PANGRAPH_LOG_JSON maps to log_json.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no mode can run with.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("invalid format %q: want %s, %s or %s", c.Format, FormatText, FormatJSON, FormatYAML)
	}
	if c.WebMode && (c.Port < 1 || c.Port > 65535) {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.VerboseCnt < 0 {
		return fmt.Errorf("invalid verbose count %d", c.VerboseCnt)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
