package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeTempFile creates a temporary file with the given content and returns its path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file %s: %v", path, err)
	}
	return path
}

func Test_LoadConfig_Cases(t *testing.T) {
	tests := []struct {
		name        string
		setupPath   func(t *testing.T) string
		wantErr     bool
		errContains string
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config loads all fields",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return writeTempFile(t, "valid.yaml", `
server:
  port: 9090
  auth_token: test-secret-token
workspace:
  root: /srv/project
  allow_file: .allow
  max_read_bytes: 65536
  extra_deny:
    - secrets.yaml
    - "*.key"
audit:
  enabled: true
  log_path: /var/log/scoperoot-audit.log
`)
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg == nil {
					t.Fatal("expected non-nil config")
				}
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Server.AuthToken != "test-secret-token" {
					t.Errorf("Server.AuthToken = %q, want %q", cfg.Server.AuthToken, "test-secret-token")
				}
				if cfg.Workspace.Root != "/srv/project" {
					t.Errorf("Workspace.Root = %q, want %q", cfg.Workspace.Root, "/srv/project")
				}
				if cfg.Workspace.AllowFile != ".allow" {
					t.Errorf("Workspace.AllowFile = %q, want %q", cfg.Workspace.AllowFile, ".allow")
				}
				if cfg.Workspace.MaxReadBytes != 65536 {
					t.Errorf("Workspace.MaxReadBytes = %d, want 65536", cfg.Workspace.MaxReadBytes)
				}
				wantDeny := []string{"secrets.yaml", "*.key"}
				if !reflect.DeepEqual(cfg.Workspace.ExtraDeny, wantDeny) {
					t.Errorf("Workspace.ExtraDeny = %v, want %v", cfg.Workspace.ExtraDeny, wantDeny)
				}
				if !cfg.Audit.Enabled {
					t.Error("Audit.Enabled = false, want true")
				}
				if cfg.Audit.LogPath != "/var/log/scoperoot-audit.log" {
					t.Errorf("Audit.LogPath = %q, want %q", cfg.Audit.LogPath, "/var/log/scoperoot-audit.log")
				}
			},
		},
		{
			name: "partial config keeps defaults for missing fields",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return writeTempFile(t, "partial.yaml", "server:\n  port: 7070\n")
			},
			validate: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.Server.Port != 7070 {
					t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
				}
				if cfg.Workspace.AllowFile != ".mcp-allow" {
					t.Errorf("Workspace.AllowFile = %q, want default %q", cfg.Workspace.AllowFile, ".mcp-allow")
				}
				if cfg.Workspace.MaxReadBytes != 200_000 {
					t.Errorf("Workspace.MaxReadBytes = %d, want default 200000", cfg.Workspace.MaxReadBytes)
				}
			},
		},
		{
			name: "missing file returns error",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return filepath.Join(t.TempDir(), "nope.yaml")
			},
			wantErr:     true,
			errContains: "failed to read config file",
		},
		{
			name: "malformed yaml returns error",
			setupPath: func(t *testing.T) string {
				t.Helper()
				return writeTempFile(t, "bad.yaml", "server: [not: valid\n")
			},
			wantErr:     true,
			errContains: "failed to unmarshal config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupPath(t)

			cfg, err := LoadConfig(path)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				if cfg != nil {
					t.Errorf("expected nil config on error, got %+v", cfg)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func Test_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Workspace.Root != "." {
		t.Errorf("Workspace.Root = %q, want %q", cfg.Workspace.Root, ".")
	}
	if cfg.Workspace.AllowFile != ".mcp-allow" {
		t.Errorf("Workspace.AllowFile = %q, want %q", cfg.Workspace.AllowFile, ".mcp-allow")
	}
	if cfg.Workspace.MaxReadBytes != 200_000 {
		t.Errorf("Workspace.MaxReadBytes = %d, want 200000", cfg.Workspace.MaxReadBytes)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want false by default")
	}

	// Each call must return a distinct instance.
	other := DefaultConfig()
	other.Server.Port = 1
	if cfg.Server.Port == 1 {
		t.Error("DefaultConfig instances share state")
	}
}
