package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/app"
	"github.com/boirefacile/backend-go/internal/config"
)

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer application.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           application.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 5*time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Int("bars", application.Catalog.Len()).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
