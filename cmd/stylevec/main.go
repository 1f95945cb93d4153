package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/stylevec"
	"github.com/hazyhaar/stylevec/dbopen"
	"github.com/hazyhaar/stylevec/visembed"
)

func main() {
	port := env("PORT", "8086")
	configPath := env("CONFIG", "")
	logLevel := env("LOG_LEVEL", "info")
	mcpTransport := env("MCP_TRANSPORT", "")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config: YAML file when provided, environment overrides on top.
	cfg := &stylevec.Config{}
	if configPath != "" {
		loaded, err := stylevec.LoadConfig(configPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.Logger = logger
	if v := env("DB_PATH", ""); v != "" {
		cfg.DBPath = v
	}
	if v := env("EMBED_ENDPOINT", ""); v != "" {
		cfg.Embedding = visembed.Config{
			Endpoint: v,
			Model:    env("EMBED_MODEL", ""),
			Logger:   logger,
		}
	}
	if env("INDEX_ENABLED", "") == "true" {
		cfg.Index.Enabled = true
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "db/stylevec.db"
	}

	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc, err := stylevec.New(db, *cfg)
	if err != nil {
		slog.Error("stylevec service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// Optional MCP over stdio: the process then serves tools instead of HTTP.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "stylevec",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("mcp stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// Router.
	r := chi.NewRouter()
	if hash := env("AUTH_PASSWORD_HASH", ""); hash != "" {
		r.Use(stylevec.BasicAuth(env("AUTH_USER", ""), []byte(hash)))
	}
	r.Mount("/", svc.Routes())

	// HTTP server.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
