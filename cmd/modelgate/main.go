// Package main is the entry point for the modelgate gateway server.
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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"modelgate/config"
	"modelgate/internal/heartbeat"
	"modelgate/internal/logging"
	"modelgate/internal/observability"
	"modelgate/internal/relay"
	"modelgate/internal/selector"
	"modelgate/internal/server"
	"modelgate/internal/version"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	versionFlag := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// .env is optional; deployed environments set variables directly.
	_ = godotenv.Load() //nolint:errcheck

	logging.Setup(false)

	slog.Info("starting modelgate",
		"version", version.Version,
		"commit", version.Commit,
		"build_date", version.Date,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.DebugMode || cfg.VerboseLog {
		logging.Setup(true)
	}

	if len(cfg.GetGroups()) == 0 {
		slog.Error("at least one model group must be configured")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	}

	if tokens := cfg.GetTokens(); len(tokens) == 0 {
		slog.Warn("no access tokens configured, gateway accepts unauthenticated requests")
	} else {
		slog.Info("access token authentication enabled", "tokens", len(tokens))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// The supervisor keeps the process alive by polling the heartbeat
	// endpoint; supervision only engages when a timeout is configured.
	supervised := cfg.HeartbeatTimeout > 0
	monitor := heartbeat.NewMonitor(cfg.GetHeartbeatTimeout(), func() {
		shutdown <- syscall.SIGTERM
	})

	srv := server.New(cfg, selector.New(), relay.NewClient(cfg.GetHTTPTimeout()), &server.Options{
		Metrics:          metrics,
		HeartbeatHandler: monitor.Handler,
	})

	// SIGHUP reloads the config file in place; lookups after a successful
	// reload see the new groups.
	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		for range hup {
			if err := cfg.Reload(); err != nil {
				slog.Error("config reload failed, keeping previous config", "error", err)
				continue
			}
			slog.Info("config reloaded", "groups", len(cfg.GetGroups()))
		}
	}()

	if supervised {
		monitor.Start()
	}

	go func() {
		<-shutdown
		slog.Info("shutting down server...")
		monitor.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := cfg.Addr()
	slog.Info("starting server", "address", addr)

	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
		} else {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}
