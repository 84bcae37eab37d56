package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amoylab/rentmanager/internal/apiserver/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) Sweep(ctx context.Context) (*service.SweepResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &service.SweepResult{Checked: 1}, nil
}

func TestReconcileScheduler_RunsPeriodically(t *testing.T) {
	sw := &countingSweeper{}
	rs := NewReconcileScheduler(sw, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, rs.Start(context.Background()))
	assert.Error(t, rs.Start(context.Background()))

	assert.Eventually(t, func() bool { return sw.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	rs.Stop()
	after := sw.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, sw.calls.Load())

	rs.Stop()
}

func TestReconcileScheduler_SurvivesSweepErrors(t *testing.T) {
	sw := &countingSweeper{err: errors.New("db down")}
	rs := NewReconcileScheduler(sw, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, rs.Start(context.Background()))
	assert.Eventually(t, func() bool { return sw.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	rs.Stop()
}

func TestReconcileScheduler_StopsWithParentContext(t *testing.T) {
	sw := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	rs := NewReconcileScheduler(sw, 0, zap.NewNop())
	assert.Equal(t, 10*time.Minute, rs.interval)

	require.NoError(t, rs.Start(ctx))
	cancel()
	done := make(chan struct{})
	go func() {
		rs.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
