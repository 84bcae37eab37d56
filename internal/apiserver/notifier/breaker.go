package notifier

import (
	"context"

	"github.com/amoylab/rentmanager/internal/common/config"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerNotifier stops calling a failing backend until it has had time
// to recover. Publish fails fast with gobreaker.ErrOpenState meanwhile.
type BreakerNotifier struct {
	next Notifier
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerNotifier(next Notifier, name string, cfg config.BreakerConfig, logger *zap.Logger) *BreakerNotifier {
	lg := logger.Named("notifier.breaker")
	return &BreakerNotifier{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				lg.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

func (b *BreakerNotifier) Publish(ctx context.Context, event *RoomEvent) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Publish(ctx, event)
	})
	return err
}

func (b *BreakerNotifier) Watch(ctx context.Context) (<-chan *RoomEvent, error) {
	return b.next.Watch(ctx)
}

func (b *BreakerNotifier) Close() error {
	return b.next.Close()
}
