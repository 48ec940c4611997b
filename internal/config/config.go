// Package config loads the YAML configuration consumed by the eprefs CLI.
//
//	adapter: sqlite
//	path: ${HOME}/.local/share/app/prefs.db
//	namespace: settings
//	codec: text
//	commit: sync
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/eprefs/internal/platform"
	"github.com/aretw0/eprefs/pkg/codec"
	"github.com/aretw0/eprefs/pkg/prefs"
)

// Config describes how to open a namespace.
type Config struct {
	Adapter   string `yaml:"adapter"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
	Format    string `yaml:"format"`
	Codec     string `yaml:"codec"`
	Commit    string `yaml:"commit"`
	Watch     bool   `yaml:"watch"`
	// DevSafety defaults to true when omitted.
	DevSafety *bool `yaml:"dev_safety"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates raw YAML configuration.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks the enumerated fields. Empty fields take the platform defaults.
func (c *Config) Validate() error {
	switch c.Adapter {
	case "", platform.AdapterFS, platform.AdapterSQLite, platform.AdapterMemory:
	default:
		return fmt.Errorf("adapter %q is not one of fs, sqlite, memory", c.Adapter)
	}

	switch strings.TrimPrefix(strings.ToLower(c.Format), ".") {
	case "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("format %q is not one of json, yaml", c.Format)
	}

	if _, err := codec.ByName(c.Codec); err != nil {
		return err
	}
	if _, err := prefs.ParseCommitMode(c.Commit); err != nil {
		return err
	}
	return nil
}

// Options converts the configuration into platform options.
func (c *Config) Options() []platform.Option {
	var opts []platform.Option
	if c.Adapter != "" {
		opts = append(opts, platform.WithAdapter(c.Adapter))
	}
	if c.Path != "" {
		opts = append(opts, platform.WithPath(c.Path))
	}
	if c.Format != "" {
		opts = append(opts, platform.WithFormat(c.Format))
	}
	if cd, err := codec.ByName(c.Codec); err == nil {
		opts = append(opts, platform.WithCodec(cd))
	}
	if mode, err := prefs.ParseCommitMode(c.Commit); err == nil {
		opts = append(opts, platform.WithCommitMode(mode))
	}
	if c.Watch {
		opts = append(opts, platform.WithWatch(true))
	}
	if c.DevSafety != nil {
		opts = append(opts, platform.WithDevSafety(*c.DevSafety))
	}
	return opts
}
