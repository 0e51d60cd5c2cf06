package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"khata/internal/amqp"
	"khata/internal/backend"
	"khata/internal/cli"
	"khata/internal/config"
	apphttp "khata/internal/http"
	applog "khata/internal/log"
	"khata/internal/services"
	"khata/internal/users"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backend.Config{
		Type:               backend.Type(cfg.LedgerBackend),
		DataDir:            cfg.DataDir,
		SQLiteDBPath:       cfg.SQLiteDBPath,
		PostgresDSN:        cfg.PostgresDSN,
		GoogleRegistryFile: cfg.GoogleRegistryFile,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger backend",
			applog.FieldBackend, cfg.LedgerBackend, applog.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	directory, err := newDirectory(cfg)
	if err != nil {
		logger.Error("Failed to initialize user directory",
			applog.FieldBackend, cfg.UsersBackend, applog.FieldError, err)
		os.Exit(1)
	}

	// AMQP is optional; without it appends simply skip the mirror event.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without mirror events",
				applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("Connected to AMQP",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledgerService := services.NewLedgerService(result.Backend, publisher, logger)
	defer func() {
		if err := ledgerService.Close(); err != nil {
			logger.Error("Service close failed", applog.FieldError, err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, directory, ledgerService, logger, apphttp.Options{
		SessionTTL: cfg.SessionTTL,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting khata server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.LedgerBackend,
		"users_backend", cfg.UsersBackend,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}

	// Give the shutdown goroutine a moment to finish draining.
	time.Sleep(100 * time.Millisecond)
	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}

func newDirectory(cfg *config.Config) (users.Directory, error) {
	switch cfg.UsersBackend {
	case "bolt":
		return users.NewBoltDirectory(cfg.UsersBoltDB)
	case "memory":
		return users.NewMemoryDirectory(), nil
	default:
		return users.NewJSONDirectory(cfg.UsersFile)
	}
}
