// Command tips serves the generate-financial-tips function.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mesada/internal/infrastructure/gemini"
	"mesada/internal/interfaces/function"
	"mesada/internal/shared/config"
	"mesada/internal/shared/logger"
)

func main() {
	log := logger.New(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("tips function error")
	}
}

func run(log zerolog.Logger) error {
	cfg, err := config.LoadFunction()
	if err != nil {
		return err
	}
	log = logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.MaxTips)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/", otelhttp.NewHandler(function.NewTipsHandler(generator, log), "generate-financial-tips"))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("model", cfg.GeminiModel).Msg("tips function starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err = <-errCh:
		log.Error().Err(err).Msg("server failed")
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	if shErr := srv.Shutdown(shCtx); shErr != nil {
		log.Error().Err(shErr).Msg("shutdown failed")
	}
	log.Info().Msg("tips function stopped")
	return err
}
