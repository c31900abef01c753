package worker

// retencion_auditoria.go
// Background goroutine that periodically deletes audit entries older than the
// configured retention. The first pass runs right after start so a process
// that is only up for short sessions still purges.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Purgador is the slice of the audit service the cron needs.
type Purgador interface {
	Purgar(ctx context.Context, dias int) (int64, error)
}

// RetencionConfig holds the dependencies of the retention goroutine.
type RetencionConfig struct {
	Auditoria Purgador
	Dias      int
	Intervalo time.Duration
}

// StartRetencionAuditoria launches the retention goroutine and returns a
// channel closed when it exits. Dias <= 0 disables it. It respects ctx for
// graceful shutdown.
func StartRetencionAuditoria(ctx context.Context, cfg RetencionConfig) <-chan struct{} {
	done := make(chan struct{})
	if cfg.Dias <= 0 || cfg.Auditoria == nil {
		log.Info().Msg("retencion_auditoria: disabled")
		close(done)
		return done
	}
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = 24 * time.Hour
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().
			Int("dias", cfg.Dias).
			Dur("intervalo", cfg.Intervalo).
			Msg("retencion_auditoria: started")

		purgar(ctx, cfg)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retencion_auditoria: shutting down")
				return
			case <-ticker.C:
				purgar(ctx, cfg)
			}
		}
	}()
	return done
}

func purgar(ctx context.Context, cfg RetencionConfig) {
	n, err := cfg.Auditoria.Purgar(ctx, cfg.Dias)
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("retencion_auditoria: purge failed")
		}
		return
	}
	if n > 0 {
		log.Info().Int64("eliminados", n).Msg("retencion_auditoria: old entries removed")
	}
}
