// Package main is the entry point for the scoperoot server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jamesprial/scoperoot/internal/auth"
	"github.com/jamesprial/scoperoot/internal/config"
	"github.com/jamesprial/scoperoot/internal/safety"
	"github.com/jamesprial/scoperoot/internal/sandbox"
	"github.com/jamesprial/scoperoot/internal/tools"
	"github.com/jamesprial/scoperoot/internal/workspace"
	"github.com/mark3labs/mcp-go/server"
)

const defaultConfigPath = "scoperoot.yaml"

func main() {
	cfg := loadConfig()
	config.ApplyEnvOverrides(cfg)

	tokenBefore := cfg.Server.AuthToken
	token, err := config.EnsureAuthToken(cfg)
	if err != nil {
		log.Printf("warning: could not generate auth token: %v — running without authentication", err)
	} else if tokenBefore == "" {
		log.Printf("generated auth token (set SCOPEROOT_AUTH_TOKEN to persist): %s", token)
	}

	// Open audit log writer if enabled.
	var auditLogger *safety.AuditLogger
	if cfg.Audit.Enabled {
		f, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			log.Printf("warning: could not open audit log %q: %v — audit logging disabled", cfg.Audit.LogPath, err)
		} else {
			auditLogger = safety.NewAuditLogger(f)
			defer f.Close()
		}
	}

	// Pin the workspace root. The canonical form is the confinement
	// boundary for every request, so this must succeed.
	root, err := sandbox.NewRoot(cfg.Workspace.Root)
	if err != nil {
		log.Fatalf("failed to resolve workspace root: %v", err)
	}

	sb := sandbox.New(root, cfg.Workspace.AllowFile, cfg.Workspace.ExtraDeny)
	mgr := workspace.NewManager(sb, cfg.Workspace.MaxReadBytes)

	// Build MCP server.
	mcpServer := server.NewMCPServer(
		"scoperoot",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	tools.RegisterAll(mcpServer, workspace.WorkspaceTools(mgr, auditLogger))

	// Build Streamable HTTP server and wrap with auth middleware.
	httpHandler := server.NewStreamableHTTPServer(mcpServer)
	authMiddleware := auth.NewAuthMiddleware(cfg.Server.AuthToken)
	wrappedHandler := authMiddleware(httpHandler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           wrappedHandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("scoperoot serving %s on %s", root.Dir(), addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// loadConfig attempts to read the config file from the path specified by
// SCOPEROOT_CONFIG_PATH or the default scoperoot.yaml in the working
// directory. If the file cannot be read, DefaultConfig is returned.
func loadConfig() *config.Config {
	path := os.Getenv("SCOPEROOT_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Printf("could not load config from %q (%v), using defaults", path, err)
		return config.DefaultConfig()
	}

	log.Printf("loaded config from %q", path)
	return cfg
}
