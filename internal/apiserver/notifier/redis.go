package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amoylab/rentmanager/internal/common/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier implements Notifier using a Redis stream so every apiserver
// instance and the watch command see the same events.
type RedisNotifier struct {
	logger     *zap.Logger
	client     *redis.Client
	streamName string
	maxLen     int64
}

func NewRedisNotifier(logger *zap.Logger, cfg config.RedisNotifierConfig) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisNotifier{
		logger:     logger.Named("notifier.redis"),
		client:     client,
		streamName: cfg.Stream,
		maxLen:     cfg.MaxLen,
	}, nil
}

func (r *RedisNotifier) Publish(ctx context.Context, event *RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal room event: %w", err)
	}

	err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.streamName,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"event":   string(data),
			"room_id": event.RoomID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to add message to stream: %w", err)
	}
	return nil
}

// Watch starts after the newest entry present when it is called
func (r *RedisNotifier) Watch(ctx context.Context) (<-chan *RoomEvent, error) {
	lastID := "0-0"
	latest, err := r.client.XRevRangeN(ctx, r.streamName, "+", "-", 1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read stream tail: %w", err)
	}
	if len(latest) > 0 {
		lastID = latest[0].ID
	}

	ch := make(chan *RoomEvent, 16)
	go func() {
		defer close(ch)
		for ctx.Err() == nil {
			streams, err := r.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{r.streamName, lastID},
				Count:   32,
				Block:   time.Second,
			}).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					r.logger.Error("failed to read from stream", zap.Error(err))
					select {
					case <-ctx.Done():
					case <-time.After(time.Second):
					}
				}
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					lastID = msg.ID
					event, ok := decode(msg)
					if !ok {
						r.logger.Warn("skipping malformed room event", zap.String("id", msg.ID))
						continue
					}
					select {
					case ch <- event:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch, nil
}

func decode(msg redis.XMessage) (*RoomEvent, bool) {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return nil, false
	}
	var event RoomEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, false
	}
	return &event, true
}

func (r *RedisNotifier) Close() error {
	return r.client.Close()
}
