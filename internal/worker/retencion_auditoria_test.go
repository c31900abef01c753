package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purgadorStub struct {
	mu    sync.Mutex
	dias  []int
	err   error
	calls chan struct{}
}

func (p *purgadorStub) Purgar(_ context.Context, dias int) (int64, error) {
	p.mu.Lock()
	p.dias = append(p.dias, dias)
	p.mu.Unlock()
	select {
	case p.calls <- struct{}{}:
	default:
	}
	return 3, p.err
}

func TestRetencion_PurgesOnStartAndOnTick(t *testing.T) {
	stub := &purgadorStub{calls: make(chan struct{}, 10)}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartRetencionAuditoria(ctx, RetencionConfig{Auditoria: stub, Dias: 90, Intervalo: 10 * time.Millisecond})

	for i := 0; i < 2; i++ {
		select {
		case <-stub.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("purge was not called")
		}
	}
	cancel()
	<-done

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.GreaterOrEqual(t, len(stub.dias), 2)
	for _, d := range stub.dias {
		assert.Equal(t, 90, d)
	}
}

func TestRetencion_ZeroDaysDisables(t *testing.T) {
	stub := &purgadorStub{calls: make(chan struct{}, 1)}
	done := StartRetencionAuditoria(context.Background(), RetencionConfig{Auditoria: stub, Dias: 0})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled cron should return a closed channel")
	}
	assert.Empty(t, stub.dias)
}

func TestRetencion_ErrorsDoNotStopTheLoop(t *testing.T) {
	stub := &purgadorStub{calls: make(chan struct{}, 10), err: errors.New("database is locked")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartRetencionAuditoria(ctx, RetencionConfig{Auditoria: stub, Dias: 30, Intervalo: 5 * time.Millisecond})

	for i := 0; i < 3; i++ {
		select {
		case <-stub.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("loop stopped after %d calls", i)
		}
	}
}
