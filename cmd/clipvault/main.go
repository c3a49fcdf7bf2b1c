package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clipvault/internal/clipboard"
	"clipvault/internal/config"
	"clipvault/internal/crypto"
	"clipvault/internal/engine"
	"clipvault/internal/logger"
	"clipvault/internal/quickactions"
	"clipvault/internal/server"
	"clipvault/internal/storage"
	"clipvault/internal/storage/sqlite"
	"clipvault/pkg/types"
)

func main() {
	configFile := flag.String("config", "", "Config file path (default: ~/.clipvault/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("daemon exited with error", logger.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	store, err := sqlite.New(storage.Config{DBPath: cfg.DBPath})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	var crypter crypto.Service
	if cfg.Passphrase != "" {
		salt, err := crypto.LoadOrCreateSalt(cfg.SaltPath())
		if err != nil {
			return fmt.Errorf("failed to load encryption salt: %w", err)
		}
		if crypter, err = crypto.NewFromPassphrase(cfg.Passphrase, salt); err != nil {
			return fmt.Errorf("failed to initialize encryption: %w", err)
		}
	}

	eng := engine.New(engine.Options{
		History:  store,
		Pinned:   store,
		Snippets: store,
		Settings: store,
		Crypter:  crypter,
		Monitor:  clipboard.NewMonitor(),
		Writer:   clipboard.NewWriter(),
		Log:      log,
	})

	ctx := context.Background()
	if err := eng.Initialize(ctx); err != nil {
		if !errors.Is(err, types.ErrPartialStateLoaded) {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		log.Warn("started with partially loaded state", logger.Err(err))
	}

	if err := eng.StartRuntime(ctx); err != nil {
		if !errors.Is(err, types.ErrMonitorUnavailable) {
			return fmt.Errorf("failed to start engine runtime: %w", err)
		}
		log.Warn("clipboard capture disabled on this platform")
	}

	srv := server.New(eng, quickactions.New(eng), log, server.Config{
		Port:    cfg.Port,
		DataDir: cfg.DataDir,
	})
	if err := srv.Start(); err != nil {
		stopCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
		defer cancel()
		eng.StopRuntime(stopCtx)
		return fmt.Errorf("failed to start api server: %w", err)
	}

	log.Info("clipvault started",
		logger.String("db", cfg.DBPath),
		logger.Int("port", cfg.Port),
		logger.Bool("encryption", crypter != nil))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	if err := srv.Stop(); err != nil {
		log.Warn("error stopping api server", logger.Err(err))
	}
	stopCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := eng.StopRuntime(stopCtx); err != nil {
		return fmt.Errorf("failed to stop engine runtime: %w", err)
	}
	return nil
}
