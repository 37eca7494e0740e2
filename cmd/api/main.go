package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"mesada/internal/interfaces/scheduler"
	"mesada/internal/shared/config"
	"mesada/internal/shared/logger"
	"mesada/internal/shared/telemetry"
)

const (
	shutdownTimeout = 30 * time.Second
	sweepSchedule   = "@every 5m"
	purgeSchedule   = "@every 1h"
)

func main() {
	log := logger.New(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("Application error")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log = logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
		}, log)
		if err != nil {
			return err
		}
		defer func() {
			shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shCancel()
			if err := shutdownTelemetry(shCtx); err != nil {
				log.Error().Err(err).Msg("telemetry shutdown failed")
			}
		}()
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	deps.MedalListener.Start(ctx)
	defer deps.MedalListener.Stop()

	sched := scheduler.New(log)
	if err := sched.Add(sweepSchedule, scheduler.NewSessionSweepJob(deps.Sessions)); err != nil {
		return err
	}
	if err := sched.Add(purgeSchedule, scheduler.NewExpiredSessionsJob(deps.AuthRepo)); err != nil {
		return err
	}
	sched.Start()

	handler := SetupRoutes(deps, cfg, log)

	errCh := make(chan error, 1)
	srv, redirectSrv := StartServers(NewServerConfigFromConfig(handler, cfg), log, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err = <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	GracefulShutdown(srv, redirectSrv, sched, shutdownTimeout, log)
	return err
}
