package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryNotifier fans events out to in-process watchers. Slow watchers
// lose events instead of blocking publishers.
type MemoryNotifier struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	watchers map[chan *RoomEvent]struct{}
	closed   bool
}

func NewMemoryNotifier(logger *zap.Logger) *MemoryNotifier {
	return &MemoryNotifier{
		logger:   logger.Named("notifier.memory"),
		watchers: make(map[chan *RoomEvent]struct{}),
	}
}

func (m *MemoryNotifier) Publish(_ context.Context, event *RoomEvent) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	for ch := range m.watchers {
		select {
		case ch <- event:
		default:
			m.logger.Warn("watcher buffer full, dropping room event", zap.String("room_id", event.RoomID))
		}
	}
	return nil
}

func (m *MemoryNotifier) Watch(ctx context.Context) (<-chan *RoomEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	ch := make(chan *RoomEvent, 64)
	m.watchers[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.watchers[ch]; ok {
			delete(m.watchers, ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (m *MemoryNotifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for ch := range m.watchers {
		delete(m.watchers, ch)
		close(ch)
	}
	return nil
}
