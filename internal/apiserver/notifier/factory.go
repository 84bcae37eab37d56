package notifier

import (
	"fmt"

	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/internal/common/config"

	"go.uber.org/zap"
)

// NewNotifier creates the configured notifier behind a circuit breaker
func NewNotifier(logger *zap.Logger, cfg config.NotifierConfig) (Notifier, error) {
	var (
		n   Notifier
		err error
	)
	switch cfg.Type {
	case cnst.NotifierTypeMemory, "":
		n = NewMemoryNotifier(logger)
	case cnst.NotifierTypeRedis:
		n, err = NewRedisNotifier(logger, cfg.Redis)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported notifier type: %s", cfg.Type)
	}
	return NewBreakerNotifier(n, "room-events-"+cfg.Type, cfg.Breaker, logger), nil
}
