package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvAPIToken is the environment variable consulted when pylon.api_token is
// not set in the config file.
const EnvAPIToken = "PYLON_API_TOKEN"

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if cfg.Pylon.APIToken == "" {
		cfg.Pylon.APIToken = os.Getenv(EnvAPIToken)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Pylon.APIToken == "" {
		errs = append(errs, fmt.Errorf("pylon.api_token is required (or set %s)", EnvAPIToken))
	}
	if cfg.Pylon.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("pylon.timeout_seconds %d must not be negative", cfg.Pylon.TimeoutSeconds))
	}

	if cfg.Tools.DefaultSearchLimit < 0 {
		errs = append(errs, fmt.Errorf("tools.default_search_limit %d must not be negative", cfg.Tools.DefaultSearchLimit))
	}
	if cfg.Tools.DefaultSearchLimit > 1000 {
		errs = append(errs, fmt.Errorf("tools.default_search_limit %d exceeds the maximum page size of 1000", cfg.Tools.DefaultSearchLimit))
	}

	return errors.Join(errs...)
}
