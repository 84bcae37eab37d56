package service

import (
	"context"
	"time"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/apiserver/notifier"
	"github.com/amoylab/rentmanager/internal/apiserver/occupancy"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/pkg/metrics"

	"go.uber.org/zap"
)

// Service implements the property, room, tenant and dashboard use cases.
// Every method takes the authenticated caller's user id.
type Service struct {
	db     database.Database
	policy *Policy
	engine *occupancy.Engine
	events *publisher
	logger *zap.Logger
	now    func() time.Time
}

// New creates a service. n and m may be nil.
func New(db database.Database, n notifier.Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		policy: NewPolicy(db),
		engine: occupancy.NewEngine(db, logger),
		events: newPublisher(n, m, logger),
		logger: logger.Named("service"),
		now:    time.Now,
	}
}

// authorize hides resources the caller does not own behind NOT_FOUND
func (s *Service) authorize(ctx context.Context, callerID string, ref ResourceRef, notFoundID string) error {
	ok, err := s.policy.Allow(ctx, callerID, ref)
	if err != nil {
		return errorx.Internal(err)
	}
	if !ok {
		return errorx.NotFound(notFoundID)
	}
	return nil
}

// authorizeTarget rejects references to resources the caller does not own
func (s *Service) authorizeTarget(ctx context.Context, callerID string, ref ResourceRef, forbiddenID string) error {
	ok, err := s.policy.Allow(ctx, callerID, ref)
	if err != nil {
		return errorx.Internal(err)
	}
	if !ok {
		return errorx.Forbidden(forbiddenID)
	}
	return nil
}

// publisher reports committed room transitions to metrics and the notifier.
// Failures are logged and counted, never returned.
type publisher struct {
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func newPublisher(n notifier.Notifier, m *metrics.Metrics, logger *zap.Logger) *publisher {
	return &publisher{
		notifier: n,
		metrics:  m,
		logger:   logger.Named("events"),
		now:      time.Now,
	}
}

func (p *publisher) announce(ctx context.Context, transitions []occupancy.Transition, reason notifier.Reason, tenantID string) {
	for _, tr := range transitions {
		p.metrics.RoomTransition(string(tr.From), string(tr.To), string(reason))
		if p.notifier == nil {
			continue
		}
		ev := &notifier.RoomEvent{
			RoomID:   tr.RoomID,
			From:     string(tr.From),
			To:       string(tr.To),
			Reason:   reason,
			TenantID: tenantID,
			At:       p.now().UTC(),
		}
		if err := p.notifier.Publish(context.WithoutCancel(ctx), ev); err != nil {
			p.metrics.EventPublishFailed()
			p.logger.Warn("failed to publish room event",
				zap.String("room_id", tr.RoomID),
				zap.String("reason", string(reason)),
				zap.Error(err))
		}
	}
}
