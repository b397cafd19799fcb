package config_test

import (
	"strings"
	"testing"

	"github.com/MrWong99/pylonmcp/internal/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const sampleYAML = `
server:
  log_level: info
  ops_listen_addr: ":9090"

pylon:
  api_token: pylon_api_xxx
  timeout_seconds: 30

tools:
  default_search_limit: 50
`

// ── YAML loading ──────────────────────────────────────────────────────────────

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogInfo)
	}
	if cfg.Server.OpsListenAddr != ":9090" {
		t.Errorf("server.ops_listen_addr: got %q, want %q", cfg.Server.OpsListenAddr, ":9090")
	}
	if cfg.Pylon.APIToken != "pylon_api_xxx" {
		t.Errorf("pylon.api_token: got %q", cfg.Pylon.APIToken)
	}
	if cfg.Pylon.BaseURL != "" {
		t.Errorf("pylon.base_url: got %q, want empty", cfg.Pylon.BaseURL)
	}
	if cfg.Tools.DefaultSearchLimit != 50 {
		t.Errorf("tools.default_search_limit: got %d, want 50", cfg.Tools.DefaultSearchLimit)
	}
}

func TestLoadFromReader_MinimalWithEnvToken(t *testing.T) {
	// Only the API token is required, and the environment may supply it.
	t.Setenv(config.EnvAPIToken, "env-token")
	cfg, err := config.LoadFromReader(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("unexpected error for minimal config: %v", err)
	}
	if cfg.Pylon.APIToken != "env-token" {
		t.Errorf("api_token: got %q, want env-token", cfg.Pylon.APIToken)
	}
}

// ── LogLevel ─────────────────────────────────────────────────────────────────

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()
	cases := []struct {
		level config.LogLevel
		want  bool
	}{
		{config.LogDebug, true},
		{config.LogInfo, true},
		{config.LogWarn, true},
		{config.LogError, true},
		{"", false},
		{"verbose", false},
		{"INFO", false},
	}
	for _, tc := range cases {
		if got := tc.level.IsValid(); got != tc.want {
			t.Errorf("LogLevel(%q).IsValid() = %v, want %v", tc.level, got, tc.want)
		}
	}
}
