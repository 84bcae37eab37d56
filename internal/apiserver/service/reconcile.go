package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/apiserver/notifier"
	"github.com/amoylab/rentmanager/internal/apiserver/occupancy"
	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/pkg/metrics"
	"github.com/amoylab/rentmanager/pkg/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SweepResult summarizes one reconciliation pass
type SweepResult struct {
	Checked   int
	Corrected []occupancy.Transition
}

// Reconciler recomputes every room's status from its active tenants,
// repairing drift left by direct status edits or out-of-band writes.
type Reconciler struct {
	db      database.Database
	events  *publisher
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewReconciler(db database.Database, n notifier.Notifier, m *metrics.Metrics, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		db:      db,
		events:  newPublisher(n, m, logger),
		metrics: m,
		logger:  logger.Named("reconcile"),
	}
}

// Sweep checks each room in its own transaction. A failing room does not
// stop the sweep; all failures are returned joined.
func (r *Reconciler) Sweep(ctx context.Context) (*SweepResult, error) {
	span := trace.Tracer(cnst.TraceService).Start(ctx, cnst.SpanReconcileSweep)
	defer span.End()
	ctx = span.Ctx

	ids, err := r.db.ListRoomIDs(ctx)
	if err != nil {
		span.Fail(err)
		r.metrics.ReconcileRun(0, err)
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	res := &SweepResult{}
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		tr, changed, err := r.reconcileRoom(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", id, err))
			continue
		}
		res.Checked++
		if !changed {
			continue
		}

		res.Corrected = append(res.Corrected, tr)
		r.logger.Warn("corrected room status",
			zap.String("room_id", tr.RoomID),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)))
		r.events.announce(ctx, []occupancy.Transition{tr}, notifier.ReasonReconcile, "")
	}

	err = errors.Join(errs...)
	span.WithAttrs(attribute.Int("reconcile.checked", res.Checked), attribute.Int("reconcile.corrected", len(res.Corrected)))
	if err != nil {
		span.Fail(err)
	}
	r.metrics.ReconcileRun(len(res.Corrected), err)
	r.logger.Info("reconciliation sweep finished",
		zap.Int("checked", res.Checked),
		zap.Int("corrected", len(res.Corrected)),
		zap.Error(err))
	return res, err
}

func (r *Reconciler) reconcileRoom(ctx context.Context, id string) (occupancy.Transition, bool, error) {
	var (
		tr      occupancy.Transition
		changed bool
	)
	err := r.db.Transaction(ctx, func(ctx context.Context) error {
		rooms, err := r.db.LockRooms(ctx, []string{id})
		if errors.Is(err, database.ErrRoomsMissing) {
			return nil
		}
		if err != nil {
			return err
		}

		to, wrote, err := r.db.ReconcileRoom(ctx, id)
		if err != nil || !wrote {
			return err
		}
		tr = occupancy.Transition{RoomID: id, From: rooms[0].Status, To: to}
		changed = true
		return nil
	})
	return tr, changed, err
}
