package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amoylab/rentmanager/internal/apiserver/service"

	"go.uber.org/zap"
)

// Sweeper runs one reconciliation pass
type Sweeper interface {
	Sweep(ctx context.Context) (*service.SweepResult, error)
}

// ReconcileScheduler runs the reconciliation sweep on a fixed interval
type ReconcileScheduler struct {
	logger   *zap.Logger
	sweeper  Sweeper
	interval time.Duration

	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	running      bool
	runningMutex sync.Mutex
}

func NewReconcileScheduler(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *ReconcileScheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ReconcileScheduler{
		logger:   logger.Named("scheduler.reconcile"),
		sweeper:  sweeper,
		interval: interval,
	}
}

// Start begins the loop. The first sweep runs one interval after start.
func (rs *ReconcileScheduler) Start(ctx context.Context) error {
	rs.runningMutex.Lock()
	defer rs.runningMutex.Unlock()

	if rs.running {
		return fmt.Errorf("reconcile scheduler is already running")
	}

	rs.ctx, rs.cancel = context.WithCancel(ctx)
	rs.done = make(chan struct{})
	rs.running = true
	rs.logger.Info("starting reconcile scheduler", zap.Duration("interval", rs.interval))

	go rs.loop(rs.ctx, rs.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to return
func (rs *ReconcileScheduler) Stop() {
	rs.runningMutex.Lock()
	if !rs.running {
		rs.runningMutex.Unlock()
		return
	}
	rs.running = false
	rs.cancel()
	done := rs.done
	rs.runningMutex.Unlock()

	<-done
	rs.logger.Info("reconcile scheduler stopped")
}

func (rs *ReconcileScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rs.runOnce(ctx)
		}
	}
}

func (rs *ReconcileScheduler) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := rs.sweeper.Sweep(ctx)
	if err != nil {
		rs.logger.Error("reconcile sweep failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	rs.logger.Debug("reconcile sweep done",
		zap.Int("checked", res.Checked),
		zap.Int("corrected", len(res.Corrected)),
		zap.Duration("took", time.Since(start)))
}
