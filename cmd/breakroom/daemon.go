package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fentz26/breakroom/internal/audit"
	"github.com/fentz26/breakroom/internal/config"
	"github.com/fentz26/breakroom/internal/controlplane"
	"github.com/fentz26/breakroom/internal/dispatch"
	"github.com/fentz26/breakroom/internal/ledger"
	"github.com/fentz26/breakroom/internal/logging"
	"github.com/fentz26/breakroom/internal/publisher"
	"github.com/fentz26/breakroom/internal/store"
)

var (
	listenAddr string
	dbPath     string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the breakroom daemon",
	Long:  `Starts the daemon which owns the presence registry and serves the HTTP and websocket API.`,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (overrides config)")
	daemonCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// One daemon per data directory.
	dataDir := filepath.Dir(cfg.Store.Path)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	lock := flock.New(filepath.Join(dataDir, "breakroom.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another breakroom daemon is already using %s", dataDir)
	}
	defer lock.Unlock()

	logger.Info("Starting breakroom daemon",
		zap.String("config", configPath),
		zap.String("db", cfg.Store.Path),
		zap.String("ledger", cfg.Ledger.Backend))

	s, err := store.New(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := ledger.Open(ctx, ledger.Options{
		Backend:       cfg.Ledger.Backend,
		Store:         s,
		RedisAddr:     cfg.Ledger.RedisAddr,
		RedisPassword: cfg.Ledger.RedisPassword,
		RedisDB:       cfg.Ledger.RedisDB,
		RedisStream:   cfg.Ledger.RedisStream,
	})
	if err != nil {
		return err
	}
	defer closeSink()

	metrics := controlplane.NewMetrics()

	queue := dispatch.New(dispatch.Config{
		Size:    cfg.Ledger.QueueSize,
		Timeout: cfg.Ledger.Timeout,
	}, logger.Named("dispatch"), metrics)
	if err := queue.Start(); err != nil {
		return err
	}

	service := controlplane.NewService(cfg.Capacity,
		controlplane.WithLogger(logger.Named("coordinator")),
		controlplane.WithLedger(sink),
		controlplane.WithRecorder(audit.NewRecorder(s)),
		controlplane.WithQueue(queue),
		controlplane.WithMetrics(metrics),
	)

	hub := controlplane.NewHub(logger.Named("hub"))
	go hub.Run(ctx)
	service.Subscribe(hub.PublishResult)

	server := controlplane.NewServer(service, cfg.Server.Listen,
		controlplane.WithStore(s),
		controlplane.WithHub(hub),
		controlplane.WithServerMetrics(metrics),
		controlplane.WithServerLogger(logger.Named("http")),
	)

	var pub *publisher.Publisher
	if cfg.Publisher.Enabled {
		window, err := cfg.Publisher.Window()
		if err != nil {
			return err
		}
		transports := []publisher.Transport{
			publisher.HubTransport{Hub: hub},
			publisher.LogTransport{Logger: logger.Named("publisher")},
		}
		if cfg.Publisher.WebhookURL != "" {
			transports = append(transports, publisher.NewWebhookTransport(cfg.Publisher.WebhookURL))
		}
		pub = publisher.New(service, publisher.Config{
			Interval: cfg.Publisher.Interval,
			Window:   window,
		}, logger.Named("publisher"), transports...)
		pub.Start()
	}

	serverErr := make(chan error, 1)
	go func() {
		err := server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal, initiating graceful shutdown")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", zap.Error(err))
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if pub != nil {
		pub.Stop()
	}

	logger.Info("Shutting down HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}
	hub.Stop()

	// Drain pending ledger and audit writes before the store closes.
	logger.Info("Draining side-effect queue", zap.Int("pending", queue.Len()))
	queue.Stop()

	logger.Info("Shutdown complete")
	return runErr
}
