// Package config provides the configuration schema and loader for the
// pylonmcp server.
package config

// LogLevel controls log verbosity for the pylonmcp server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for pylonmcp.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server ServerConfig `yaml:"server"`
	Pylon  PylonConfig  `yaml:"pylon"`
	Tools  ToolsConfig  `yaml:"tools"`
}

// ServerConfig holds logging and ops-endpoint settings.
type ServerConfig struct {
	// LogLevel controls verbosity. Logs are written to stderr because stdout
	// carries the MCP stdio protocol.
	LogLevel LogLevel `yaml:"log_level"`

	// OpsListenAddr is the TCP address of the ops HTTP server exposing
	// /metrics, /healthz, and /readyz (e.g., ":9090"). Empty disables it.
	OpsListenAddr string `yaml:"ops_listen_addr"`
}

// PylonConfig holds connection settings for the Pylon API.
type PylonConfig struct {
	// APIToken authenticates requests against the Pylon API. When empty,
	// the PYLON_API_TOKEN environment variable is consulted.
	APIToken string `yaml:"api_token"`

	// BaseURL overrides the Pylon API endpoint.
	// Leave empty to use the production endpoint.
	BaseURL string `yaml:"base_url"`

	// TimeoutSeconds bounds a single API round trip. 0 uses the client's
	// built-in default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// ToolsConfig holds tool-behaviour settings.
type ToolsConfig struct {
	// DefaultSearchLimit is the page size used when a search tool is invoked
	// without an explicit limit. 0 uses the built-in default of 50.
	// Must not exceed 1000, the maximum page size the Pylon API accepts.
	DefaultSearchLimit int `yaml:"default_search_limit"`
}
