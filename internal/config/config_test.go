package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/industrial-go/opcua/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.Server.ListenAddr != ":4840" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":4840")
	}

	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9100")
	}

	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}

	if cfg.Encoding.MaxStringLength != 65535 {
		t.Errorf("Encoding.MaxStringLength = %d, want %d", cfg.Encoding.MaxStringLength, 65535)
	}

	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].SecurityPolicyURI != "None" {
		t.Errorf("Endpoints = %+v, want one None-policy endpoint", cfg.Endpoints)
	}

	if err := config.Validate(cfg); err != nil {
		t.Errorf("DefaultConfig() failed validation: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
server:
  listen_addr: ":48400"
  application_uri: "urn:test-server"
metrics:
  addr: ":9200"
  path: "/custom-metrics"
log:
  level: "debug"
  format: "text"
encoding:
  max_string_length: 4096
  max_array_length: 100
  max_message_size: 1048576
endpoints:
  - security_policy: "Basic256Sha256"
    message_security_mode: "SignAndEncrypt"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Server.ListenAddr != ":48400" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":48400")
	}

	if cfg.Server.ApplicationURI != "urn:test-server" {
		t.Errorf("Server.ApplicationURI = %q, want %q", cfg.Server.ApplicationURI, "urn:test-server")
	}

	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9200")
	}

	if cfg.Encoding.MaxStringLength != 4096 {
		t.Errorf("Encoding.MaxStringLength = %d, want %d", cfg.Encoding.MaxStringLength, 4096)
	}

	if len(cfg.Endpoints) != 1 {
		t.Fatalf("Endpoints count = %d, want 1", len(cfg.Endpoints))
	}
	if cfg.Endpoints[0].SecurityPolicyURI != "Basic256Sha256" {
		t.Errorf("Endpoints[0].SecurityPolicyURI = %q, want %q", cfg.Endpoints[0].SecurityPolicyURI, "Basic256Sha256")
	}
	if cfg.Endpoints[0].MessageSecurityMode != "SignAndEncrypt" {
		t.Errorf("Endpoints[0].MessageSecurityMode = %q, want %q", cfg.Endpoints[0].MessageSecurityMode, "SignAndEncrypt")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	// Partial YAML: only override server.listen_addr and log.level.
	// Everything else should inherit from defaults.
	yamlContent := `
server:
  listen_addr: ":55555"
log:
  level: "warn"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Server.ListenAddr != ":55555" {
		t.Errorf("Server.ListenAddr = %q, want %q", cfg.Server.ListenAddr, ":55555")
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}

	// Default values should be preserved.
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("Metrics.Addr = %q, want default %q", cfg.Metrics.Addr, ":9100")
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, "json")
	}

	if len(cfg.Endpoints) != 1 || cfg.Endpoints[0].SecurityPolicyURI != "None" {
		t.Errorf("Endpoints = %+v, want default None-policy endpoint", cfg.Endpoints)
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{
			name: "empty listen addr",
			modify: func(cfg *config.Config) {
				cfg.Server.ListenAddr = ""
			},
			wantErr: config.ErrEmptyListenAddr,
		},
		{
			name: "no endpoints",
			modify: func(cfg *config.Config) {
				cfg.Endpoints = nil
			},
			wantErr: config.ErrNoEndpoints,
		},
		{
			name: "unrecognized security policy",
			modify: func(cfg *config.Config) {
				cfg.Endpoints = []config.EndpointConfig{
					{SecurityPolicyURI: "Bogus", MessageSecurityMode: "None"},
				}
			},
			wantErr: config.ErrInvalidSecurityPolicy,
		},
		{
			name: "unrecognized message security mode",
			modify: func(cfg *config.Config) {
				cfg.Endpoints = []config.EndpointConfig{
					{SecurityPolicyURI: "None", MessageSecurityMode: "Bogus"},
				}
			},
			wantErr: config.ErrInvalidMessageSecurityMode,
		},
		{
			name: "zero max string length",
			modify: func(cfg *config.Config) {
				cfg.Encoding.MaxStringLength = 0
			},
			wantErr: config.ErrInvalidEncodingLimit,
		},
		{
			name: "negative max message size",
			modify: func(cfg *config.Config) {
				cfg.Encoding.MaxMessageSize = -1
			},
			wantErr: config.ErrInvalidEncodingLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.modify(cfg)

			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "Error", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "trace", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := config.ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/path/opcua.yml")
	if err == nil {
		t.Fatal("Load() returned nil error for nonexistent file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	// Environment variable tests cannot be parallel because they modify
	// process-wide state (os.Setenv).

	yamlContent := `
server:
  listen_addr: ":4840"
log:
  level: "info"
`
	path := writeTemp(t, yamlContent)

	t.Setenv("OPCUA_SERVER_LISTEN_ADDR", ":60000")
	t.Setenv("OPCUA_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Server.ListenAddr != ":60000" {
		t.Errorf("Server.ListenAddr = %q, want %q (from env)", cfg.Server.ListenAddr, ":60000")
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q (from env)", cfg.Log.Level, "debug")
	}
}

func TestLoadEnvOverridesMetrics(t *testing.T) {
	yamlContent := `
server:
  listen_addr: ":4840"
metrics:
  addr: ":9100"
  path: "/metrics"
`
	path := writeTemp(t, yamlContent)

	t.Setenv("OPCUA_METRICS_ADDR", ":9200")
	t.Setenv("OPCUA_METRICS_PATH", "/custom")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q (from env)", cfg.Metrics.Addr, ":9200")
	}

	if cfg.Metrics.Path != "/custom" {
		t.Errorf("Metrics.Path = %q, want %q (from env)", cfg.Metrics.Path, "/custom")
	}
}

// writeTemp creates a temporary YAML file and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "opcua.yml")

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
