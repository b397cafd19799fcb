// Command pylonmcp is an MCP server exposing the Pylon customer-support API
// as tools for LLM callers. MCP is served on stdin/stdout; an optional ops
// HTTP server carries /metrics, /healthz, and /readyz.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/pylonmcp/internal/config"
	"github.com/MrWong99/pylonmcp/internal/health"
	"github.com/MrWong99/pylonmcp/internal/observe"
	"github.com/MrWong99/pylonmcp/internal/pylon"
	"github.com/MrWong99/pylonmcp/internal/server"
	"github.com/MrWong99/pylonmcp/internal/tools"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "pylonmcp: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "pylonmcp: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// Stdout carries the MCP protocol; every log line goes to stderr.
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("pylonmcp starting",
		"version", version,
		"config", *configPath,
		"ops_listen_addr", cfg.Server.OpsListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "pylonmcp",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics := observe.DefaultMetrics()

	// ── Pylon client ──────────────────────────────────────────────────────────
	clientOpts := []pylon.Option{pylon.WithMetrics(metrics)}
	if cfg.Pylon.BaseURL != "" {
		clientOpts = append(clientOpts, pylon.WithBaseURL(cfg.Pylon.BaseURL))
	}
	if cfg.Pylon.TimeoutSeconds > 0 {
		clientOpts = append(clientOpts, pylon.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Pylon.TimeoutSeconds) * time.Second,
		}))
	}
	client, err := pylon.New(cfg.Pylon.APIToken, clientOpts...)
	if err != nil {
		slog.Error("failed to create pylon client", "err", err)
		return 1
	}

	// ── MCP server ────────────────────────────────────────────────────────────
	toolOpts := []tools.Option{tools.WithMetrics(metrics)}
	if cfg.Tools.DefaultSearchLimit > 0 {
		toolOpts = append(toolOpts, tools.WithDefaultLimit(cfg.Tools.DefaultSearchLimit))
	}
	mcpServer := server.New(tools.New(client, toolOpts...), version)

	g, gctx := errgroup.WithContext(ctx)

	// ── Ops HTTP server (optional) ────────────────────────────────────────────
	if addr := cfg.Server.OpsListenAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		health.New(health.PylonAPI(client)).Register(mux)

		ops := &http.Server{
			Addr:    addr,
			Handler: observe.Middleware(metrics)(mux),
		}
		g.Go(func() error {
			slog.Info("ops server listening", "addr", addr)
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return ops.Shutdown(shutdownCtx)
		})
	}

	// ── MCP stdio serve loop ──────────────────────────────────────────────────
	g.Go(func() error {
		slog.Info("serving MCP on stdio — ready for a client")
		return server.Run(gctx, mcpServer)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// newLogger builds the process logger writing to stderr at the configured
// level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
