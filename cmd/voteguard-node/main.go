package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/voteguard/voteguard-node/crypto/engine"
	"github.com/voteguard/voteguard-node/db/metadb"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/service"
	"github.com/voteguard/voteguard-node/storage"
)

// Services holds all the running services
type Services struct {
	Storage *storage.Storage
	API     *service.APIService
	Monitor *service.DeadlineMonitor
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging with the in-memory buffer for the log viewer
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.CaptureLogs(logBufferCapacity)
	log.Infow("starting voteguard-node", "version", Version)

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := setupServices(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}
	defer shutdownServices(services)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("received signal, shutting down", "signal", sig.String())
}

// setupServices initializes and starts all required services
func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	services := &Services{}

	database, err := metadb.New(cfg.DBType, filepath.Join(cfg.Datadir, cfg.DBType))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	services.Storage = storage.New(database)
	eng := engine.New()

	services.API = service.NewAPI(services.Storage, eng, cfg.API.Host, cfg.API.Port, false)
	if err := services.API.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start API service: %w", err)
	}
	log.Infow("API service started", "host", cfg.API.Host, "port", cfg.API.Port)

	if !cfg.Monitor.Disabled {
		services.Monitor = service.NewDeadlineMonitor(services.Storage, eng, cfg.Monitor.Interval)
		if err := services.Monitor.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start deadline monitor: %w", err)
		}
	}
	return services, nil
}

// shutdownServices stops all services in reverse order of their startup
func shutdownServices(services *Services) {
	log.Info("shutting down services")
	if services.Monitor != nil {
		services.Monitor.Stop()
	}
	if services.API != nil {
		services.API.Stop()
	}
	if services.Storage != nil {
		services.Storage.Close()
	}
	log.Info("services stopped")
}
