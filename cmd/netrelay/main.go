// Command netrelay serves topologies to collaborating editors.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ha1tch/netui/pkg/config"
	"github.com/ha1tch/netui/pkg/logging"
	"github.com/ha1tch/netui/pkg/observability"
	"github.com/ha1tch/netui/pkg/relay"
	"github.com/ha1tch/netui/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	listen := flag.String("listen", "", "HTTP address to listen on (overrides server.listen)")
	dbPath := flag.String("db", "", "SQLite database path (overrides store.path)")
	saveEvery := flag.Duration("save-interval", relay.DefaultSaveInterval, "How often dirty topologies are written back")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewFromEnv().Error(ctx, "failed to load config", logging.Err(err))
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "netrelay",
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
	}, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewRelayCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		log.Error(ctx, "failed to create store directory", logging.String("path", cfg.Store.Path), logging.Err(err))
		os.Exit(1)
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Error(ctx, "failed to open store", logging.String("path", cfg.Store.Path), logging.Err(err))
		os.Exit(1)
	}
	defer st.Close()

	srv := relay.New(st, relay.Options{
		Logger:       log,
		Metrics:      collector,
		SaveInterval: *saveEvery,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saved := make(chan struct{})
	go func() {
		defer close(saved)
		srv.Run(stopCtx)
	}()

	go func() {
		log.Info(ctx, "starting relay", logging.String("addr", cfg.Server.Listen), logging.String("db", cfg.Store.Path))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server exited", logging.Err(err))
			stop()
		}
	}()

	<-stopCtx.Done()
	log.Info(ctx, "shutting down relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	<-saved
}
