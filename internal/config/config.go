// Package config manages the OPC UA server configuration using koanf/v2.
//
// Supports YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete OPC UA server configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Metrics   MetricsConfig    `koanf:"metrics"`
	Log       LogConfig        `koanf:"log"`
	Encoding  EncodingConfig   `koanf:"encoding"`
	Endpoints []EndpointConfig `koanf:"endpoints"`
}

// ServerConfig holds the transport listener configuration.
type ServerConfig struct {
	// ListenAddr is the TCP listen address (e.g., ":4840", the IANA
	// default OPC UA TCP port).
	ListenAddr string `koanf:"listen_addr"`

	// ApplicationURI identifies this server instance (spec §6:
	// GetEndpoints advertises it per endpoint).
	ApplicationURI string `koanf:"application_uri"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// EncodingConfig holds the wire-codec limits (spec §6's "Encoding
// constants", all configurable).
type EncodingConfig struct {
	MaxStringLength int `koanf:"max_string_length"`
	MaxArrayLength  int `koanf:"max_array_length"`
	MaxMessageSize  int `koanf:"max_message_size"`
}

// EndpointConfig describes one advertised (security-policy,
// message-security-mode) combination a server exposes on its listen
// address (spec §4.6: "A server advertises one endpoint URL per
// (transport, security-policy, message-security-mode) tuple").
type EndpointConfig struct {
	// SecurityPolicyURI is one of the four URIs from spec §6, or the
	// shorthand name (None/Basic128Rsa15/Basic256/Basic256Sha256).
	SecurityPolicyURI string `koanf:"security_policy"`

	// MessageSecurityMode is one of "None", "Sign", "SignAndEncrypt".
	MessageSecurityMode string `koanf:"message_security_mode"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults: one
// endpoint with SecurityPolicy=None, MessageSecurityMode=None, and the
// spec §6 default encoding limits.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     ":4840",
			ApplicationURI: "urn:opcua-go-server",
		},
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Encoding: EncodingConfig{
			MaxStringLength: 65535,
			MaxArrayLength:  1000,
			MaxMessageSize:  16 * 1024 * 1024,
		},
		Endpoints: []EndpointConfig{
			{SecurityPolicyURI: "None", MessageSecurityMode: "None"},
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for this server's
// configuration. Variables are named OPCUA_<section>_<key>, e.g.
// OPCUA_SERVER_LISTEN_ADDR.
const envPrefix = "OPCUA_"

// Load reads configuration from a YAML file at path, overlays
// environment variable overrides (OPCUA_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults.
//
// Environment variable mapping:
//
//	OPCUA_SERVER_LISTEN_ADDR -> server.listen_addr
//	OPCUA_METRICS_ADDR       -> metrics.addr
//	OPCUA_METRICS_PATH       -> metrics.path
//	OPCUA_LOG_LEVEL          -> log.level
//	OPCUA_LOG_FORMAT         -> log.format
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms OPCUA_SERVER_LISTEN_ADDR -> server.listen_addr.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"server.listen_addr":      defaults.Server.ListenAddr,
		"server.application_uri":  defaults.Server.ApplicationURI,
		"metrics.addr":            defaults.Metrics.Addr,
		"metrics.path":            defaults.Metrics.Path,
		"log.level":               defaults.Log.Level,
		"log.format":              defaults.Log.Format,
		"encoding.max_string_length": defaults.Encoding.MaxStringLength,
		"encoding.max_array_length":  defaults.Encoding.MaxArrayLength,
		"encoding.max_message_size":  defaults.Encoding.MaxMessageSize,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	endpoints := make([]map[string]any, 0, len(defaults.Endpoints))
	for _, ep := range defaults.Endpoints {
		endpoints = append(endpoints, map[string]any{
			"security_policy":       ep.SecurityPolicyURI,
			"message_security_mode": ep.MessageSecurityMode,
		})
	}
	if err := k.Set("endpoints", endpoints); err != nil {
		return fmt.Errorf("set default endpoints: %w", err)
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyListenAddr indicates the server listen address is empty.
	ErrEmptyListenAddr = errors.New("server.listen_addr must not be empty")

	// ErrNoEndpoints indicates no endpoint is configured.
	ErrNoEndpoints = errors.New("at least one endpoint must be configured")

	// ErrInvalidSecurityPolicy indicates an endpoint names an
	// unrecognized security policy.
	ErrInvalidSecurityPolicy = errors.New("endpoint security_policy is not a recognized policy")

	// ErrInvalidMessageSecurityMode indicates an endpoint names an
	// unrecognized message security mode.
	ErrInvalidMessageSecurityMode = errors.New("endpoint message_security_mode must be None, Sign, or SignAndEncrypt")

	// ErrInvalidEncodingLimit indicates an encoding limit is non-positive.
	ErrInvalidEncodingLimit = errors.New("encoding limits must be positive")
)

// ValidSecurityPolicyNames lists the recognized security_policy values
// (spec §6 shorthand names).
var ValidSecurityPolicyNames = map[string]bool{
	"None":            true,
	"Basic128Rsa15":   true,
	"Basic256":        true,
	"Basic256Sha256":  true,
}

// ValidMessageSecurityModes lists the recognized message_security_mode
// values.
var ValidMessageSecurityModes = map[string]bool{
	"None":           true,
	"Sign":           true,
	"SignAndEncrypt": true,
}

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddr == "" {
		return ErrEmptyListenAddr
	}
	if len(cfg.Endpoints) == 0 {
		return ErrNoEndpoints
	}
	if cfg.Encoding.MaxStringLength <= 0 || cfg.Encoding.MaxArrayLength <= 0 || cfg.Encoding.MaxMessageSize <= 0 {
		return ErrInvalidEncodingLimit
	}

	for i, ep := range cfg.Endpoints {
		if !ValidSecurityPolicyNames[ep.SecurityPolicyURI] {
			return fmt.Errorf("endpoints[%d] security_policy %q: %w", i, ep.SecurityPolicyURI, ErrInvalidSecurityPolicy)
		}
		if !ValidMessageSecurityModes[ep.MessageSecurityMode] {
			return fmt.Errorf("endpoints[%d] message_security_mode %q: %w", i, ep.MessageSecurityMode, ErrInvalidMessageSecurityMode)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the
// corresponding slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
