package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"sevasetu_admin/internal/adapters/observability"
	"sevasetu_admin/internal/sandbox"
	"sevasetu_admin/internal/shared"
)

// Runs the local stand-in for the SevaSetu core API. Point adminctl at it
// with SEVA_API_BASE_URL=http://localhost:8585; log in as ops@sevasetu.in
// with password sandbox-ops.
func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv)

	srv := sandbox.New(sandbox.Options{
		Seed:     cfg.SandboxSeed,
		TokenTTL: cfg.TokenTTL,
		Logger:   log.Logger,
	})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))

	httpSrv := &http.Server{
		Addr:              cfg.SandboxAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.SandboxAddr).Int64("seed", cfg.SandboxSeed).Msg("sandbox API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("sandbox stopped")
}
