package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boleteria/internal/config"
	"boleteria/internal/infra"
	"boleteria/internal/router"
	"boleteria/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DBPath)
	if err != nil {
		if errors.Is(err, infra.ErrSchemaUnusable) {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database schema is unusable, refusing to start")
		}
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer func() {
		if err := infra.CloseDatabase(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := router.NewServices(cfg, db)
	retencion := worker.StartRetencionAuditoria(ctx, worker.RetencionConfig{
		Auditoria: svc.Auditoria,
		Dias:      cfg.AuditRetentionDays,
		Intervalo: time.Duration(cfg.AuditPurgeIntervalHours) * time.Hour,
	})

	r := router.New(ctx, cfg, db, svc)

	// Loopback only: the bridge serves the desktop shell on the same machine.
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.IPCHost, cfg.IPCPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("boleteria bridge listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	cancel()
	<-retencion
	log.Info().Msg("server exited")
}

// setupLogger: dev → pretty console, prod → JSON on stdout.
func setupLogger(cfg *config.Config) {
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
