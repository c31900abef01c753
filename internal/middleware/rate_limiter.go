package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"boleteria/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ventana tracks hits for one key inside a fixed window.
type ventana struct {
	count int
	fin   time.Time
}

// Limiter is a fixed-window counter keyed by client IP.
type Limiter struct {
	mu       sync.Mutex
	limite   int
	duracion time.Duration
	entradas map[string]*ventana
}

func NewLimiter(limite int, duracion time.Duration) *Limiter {
	return &Limiter{limite: limite, duracion: duracion, entradas: make(map[string]*ventana)}
}

// Permitir registers one hit for clave and reports whether it is within the
// limit, plus the end of the current window.
func (l *Limiter) Permitir(clave string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.entradas[clave]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.duracion)}
		l.entradas[clave] = v
	}
	v.count++
	return v.count <= l.limite, v.fin
}

// Purgar drops expired windows and returns how many were removed.
func (l *Limiter) Purgar(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, v := range l.entradas {
		if now.After(v.fin) {
			delete(l.entradas, k)
			n++
		}
	}
	return n
}

// Run purges expired windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := l.Purgar(now); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter windows purged")
			}
		}
	}
}

// Middleware rejects requests over the limit with 429 and msg.
func (l *Limiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fin := l.Permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", fin.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
