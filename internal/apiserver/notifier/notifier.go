package notifier

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned when publishing to or watching a closed notifier
var ErrClosed = errors.New("notifier closed")

type Reason string

const (
	ReasonTenantCreated Reason = "tenant_created"
	ReasonTenantUpdated Reason = "tenant_updated"
	ReasonTenantDeleted Reason = "tenant_deleted"
	ReasonReconcile     Reason = "reconcile"
)

// RoomEvent announces a room status transition that has been committed
type RoomEvent struct {
	RoomID   string    `json:"room_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Reason   Reason    `json:"reason"`
	TenantID string    `json:"tenant_id,omitempty"`
	At       time.Time `json:"at"`
}

// Notifier publishes room events and lets observers follow them
type Notifier interface {
	Publish(ctx context.Context, event *RoomEvent) error
	// Watch streams events published after the call returns until ctx ends
	Watch(ctx context.Context) (<-chan *RoomEvent, error)
	Close() error
}
