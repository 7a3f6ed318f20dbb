// Package config provides configuration loading and defaults for the scoperoot server.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds network and authentication settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// WorkspaceConfig describes the directory being served and the allowlist
// that scopes access to it.
type WorkspaceConfig struct {
	// Root is the workspace directory every request is confined to.
	Root string `yaml:"root"`
	// AllowFile is the control file path relative to Root.
	AllowFile string `yaml:"allow_file"`
	// MaxReadBytes is the default read_text size limit.
	MaxReadBytes int `yaml:"max_read_bytes"`
	// ExtraDeny patterns are appended to the built-in hard-deny set.
	// They can widen the deny set but never shrink it.
	ExtraDeny []string `yaml:"extra_deny"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// Config is the top-level configuration structure for the scoperoot server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Audit     AuditConfig     `yaml:"audit"`
}

// LoadConfig reads and parses a YAML configuration file from the given
// path. Fields absent from the file keep their default values. On error,
// nil is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a new Config populated with sensible default
// values. Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Workspace: WorkspaceConfig{
			Root:         ".",
			AllowFile:    ".mcp-allow",
			MaxReadBytes: 200_000,
		},
		Audit: AuditConfig{
			Enabled: false,
			LogPath: "scoperoot-audit.log",
		},
	}
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - SCOPEROOT_AUTH_TOKEN overrides cfg.Server.AuthToken
//   - SCOPEROOT_ROOT overrides cfg.Workspace.Root
//   - SCOPEROOT_ALLOW_FILE overrides cfg.Workspace.AllowFile
func ApplyEnvOverrides(cfg *Config) {
	if token := os.Getenv("SCOPEROOT_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if root := os.Getenv("SCOPEROOT_ROOT"); root != "" {
		cfg.Workspace.Root = root
	}
	if allow := os.Getenv("SCOPEROOT_ALLOW_FILE"); allow != "" {
		cfg.Workspace.AllowFile = allow
	}
}

// EnsureAuthToken generates a random auth token and sets it on cfg if
// cfg.Server.AuthToken is empty. It returns the token (existing or
// generated) and any error encountered during generation.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	token, err := GenerateRandomToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	cfg.Server.AuthToken = token
	return token, nil
}

// GenerateRandomToken returns a 32-character hex-encoded cryptographically
// random token string.
func GenerateRandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return hex.EncodeToString(b), nil
}
