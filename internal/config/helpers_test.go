package config

import (
	"encoding/hex"
	"os"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// ApplyEnvOverrides
// ---------------------------------------------------------------------------

func Test_ApplyEnvOverrides_Cases(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		unset     []string
		initial   Config
		wantToken string
		wantRoot  string
		wantAllow string
	}{
		{
			name:      "token env set on empty config",
			env:       map[string]string{"SCOPEROOT_AUTH_TOKEN": "my-token"},
			unset:     []string{"SCOPEROOT_ROOT", "SCOPEROOT_ALLOW_FILE"},
			initial:   Config{Workspace: WorkspaceConfig{Root: ".", AllowFile: ".mcp-allow"}},
			wantToken: "my-token",
			wantRoot:  ".",
			wantAllow: ".mcp-allow",
		},
		{
			name:      "token env overrides existing token",
			env:       map[string]string{"SCOPEROOT_AUTH_TOKEN": "new"},
			unset:     []string{"SCOPEROOT_ROOT", "SCOPEROOT_ALLOW_FILE"},
			initial:   Config{Server: ServerConfig{AuthToken: "old"}},
			wantToken: "new",
		},
		{
			name:      "unset env preserves existing values",
			unset:     []string{"SCOPEROOT_AUTH_TOKEN", "SCOPEROOT_ROOT", "SCOPEROOT_ALLOW_FILE"},
			initial:   Config{Server: ServerConfig{AuthToken: "existing"}, Workspace: WorkspaceConfig{Root: "/srv/x"}},
			wantToken: "existing",
			wantRoot:  "/srv/x",
		},
		{
			name:      "empty env value does not override",
			env:       map[string]string{"SCOPEROOT_AUTH_TOKEN": ""},
			unset:     []string{"SCOPEROOT_ROOT", "SCOPEROOT_ALLOW_FILE"},
			initial:   Config{Server: ServerConfig{AuthToken: "existing"}},
			wantToken: "existing",
		},
		{
			name: "root and allow file envs override together",
			env: map[string]string{
				"SCOPEROOT_ROOT":       "/srv/other",
				"SCOPEROOT_ALLOW_FILE": ".allow",
			},
			unset:     []string{"SCOPEROOT_AUTH_TOKEN"},
			initial:   Config{Workspace: WorkspaceConfig{Root: ".", AllowFile: ".mcp-allow"}},
			wantRoot:  "/srv/other",
			wantAllow: ".allow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			for _, k := range tt.unset {
				// Register cleanup via t.Setenv, then immediately remove
				// the variable so os.Getenv returns "".
				t.Setenv(k, "")
				os.Unsetenv(k)
			}

			cfg := tt.initial
			ApplyEnvOverrides(&cfg)

			if cfg.Server.AuthToken != tt.wantToken {
				t.Errorf("AuthToken = %q, want %q", cfg.Server.AuthToken, tt.wantToken)
			}
			if tt.wantRoot != "" && cfg.Workspace.Root != tt.wantRoot {
				t.Errorf("Workspace.Root = %q, want %q", cfg.Workspace.Root, tt.wantRoot)
			}
			if tt.wantAllow != "" && cfg.Workspace.AllowFile != tt.wantAllow {
				t.Errorf("Workspace.AllowFile = %q, want %q", cfg.Workspace.AllowFile, tt.wantAllow)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// EnsureAuthToken
// ---------------------------------------------------------------------------

func Test_EnsureAuthToken_Cases(t *testing.T) {
	t.Run("token already set returns existing token unchanged", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{AuthToken: "pre-set"}}

		token, err := EnsureAuthToken(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "pre-set" {
			t.Errorf("returned token = %q, want %q", token, "pre-set")
		}
		if cfg.Server.AuthToken != "pre-set" {
			t.Errorf("cfg.Server.AuthToken = %q, want %q", cfg.Server.AuthToken, "pre-set")
		}
	})

	t.Run("empty token generates and sets new token", func(t *testing.T) {
		cfg := &Config{}

		token, err := EnsureAuthToken(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token == "" {
			t.Fatal("returned token is empty, expected a generated value")
		}
		if cfg.Server.AuthToken != token {
			t.Errorf("cfg.Server.AuthToken = %q, want %q (returned token)", cfg.Server.AuthToken, token)
		}
	})

	t.Run("generated token is 32 hex characters", func(t *testing.T) {
		cfg := &Config{}

		token, err := EnsureAuthToken(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		decoded, err := hex.DecodeString(token)
		if err != nil {
			t.Fatalf("token %q is not valid hex: %v", token, err)
		}
		if len(decoded) != 16 {
			t.Errorf("decoded length = %d, want 16 bytes", len(decoded))
		}
	})
}

// ---------------------------------------------------------------------------
// GenerateRandomToken
// ---------------------------------------------------------------------------

func Test_GenerateRandomToken_Cases(t *testing.T) {
	t.Run("two calls return different values", func(t *testing.T) {
		token1, err := GenerateRandomToken()
		if err != nil {
			t.Fatalf("first call error: %v", err)
		}
		token2, err := GenerateRandomToken()
		if err != nil {
			t.Fatalf("second call error: %v", err)
		}
		if token1 == token2 {
			t.Errorf("two generated tokens are identical: %q", token1)
		}
	})

	t.Run("concurrent calls all succeed with unique tokens", func(t *testing.T) {
		const goroutines = 100

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			tokens = make(map[string]struct{}, goroutines)
			errs   []error
		)

		wg.Add(goroutines)
		for i := 0; i < goroutines; i++ {
			go func() {
				defer wg.Done()
				token, err := GenerateRandomToken()
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				tokens[token] = struct{}{}
			}()
		}
		wg.Wait()

		if len(errs) > 0 {
			t.Fatalf("got %d errors in concurrent calls; first: %v", len(errs), errs[0])
		}
		if len(tokens) != goroutines {
			t.Errorf("expected %d unique tokens, got %d (collisions detected)", goroutines, len(tokens))
		}
	})
}
