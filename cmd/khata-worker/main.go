package main

import (
	"os"

	"khata/internal/amqp"
	"khata/internal/backend"
	"khata/internal/cli"
	applog "khata/internal/log"
	"khata/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.MirrorBackend == "" {
		logger.Error("MIRROR_BACKEND is required for the mirror worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result, err := backend.NewFactory(logger).CreateBackend(ctx, backend.Config{
		Type:               backend.Type(cfg.MirrorBackend),
		DataDir:            cfg.DataDir,
		SQLiteDBPath:       cfg.SQLiteDBPath,
		PostgresDSN:        cfg.PostgresDSN,
		GoogleRegistryFile: cfg.GoogleRegistryFile,
	})
	if err != nil {
		logger.Error("Failed to initialize mirror backend",
			applog.FieldBackend, cfg.MirrorBackend, applog.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Mirror backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	logger.Info("Starting khata-worker",
		applog.FieldBackend, cfg.MirrorBackend,
		"queue", cfg.AMQPQueue,
		"concurrency", cfg.MirrorConcurrency,
		applog.FieldOperation, applog.OpStartup)

	mirror := worker.NewMirrorWorker(amqpClient, result.Backend, cfg.MirrorConcurrency, logger)
	if err := mirror.Run(ctx); err != nil {
		logger.Error("Mirror worker failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Mirror worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
