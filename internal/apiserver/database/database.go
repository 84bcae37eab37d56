package database

import (
	"context"
	"errors"
)

// ErrRoomsMissing is returned by LockRooms when a requested room does not exist
var ErrRoomsMissing = errors.New("rooms missing")

// RoomFilter narrows ListRooms to one owner's rooms
type RoomFilter struct {
	OwnerID    string
	PropertyID string
	Status     RoomStatus
	Search     string
	Offset     int
	Limit      int
}

// TenantFilter narrows ListTenants to one owner's tenants
type TenantFilter struct {
	OwnerID  string
	RoomID   string
	IsActive *bool
	Search   string
	Offset   int
	Limit    int
}

// Database defines the store operations of the apiserver. Every method uses
// the transaction carried by ctx when there is one.
type Database interface {
	Close() error
	Ping(ctx context.Context) error

	// Transaction runs fn inside a transaction; nested calls join the outer one.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	CreateProperty(ctx context.Context, p *Property) error
	GetProperty(ctx context.Context, id string) (*Property, error)
	UpdateProperty(ctx context.Context, id string, fields map[string]any) error
	ListProperties(ctx context.Context, ownerID string) ([]*Property, error)
	PropertyOwner(ctx context.Context, id string) (string, error)

	CreateRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	// GetRoomDetail loads the room with its property and tenants
	GetRoomDetail(ctx context.Context, id string) (*Room, error)
	UpdateRoom(ctx context.Context, id string, fields map[string]any) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context, f RoomFilter) ([]*Room, int64, error)
	ListRoomIDs(ctx context.Context) ([]string, error)
	RoomNameExists(ctx context.Context, propertyID, name, excludeRoomID string) (bool, error)
	RoomOwner(ctx context.Context, id string) (string, error)

	// LockRooms row-locks the rooms in id order and returns them
	LockRooms(ctx context.Context, ids []string) ([]*Room, error)
	OccupyRoom(ctx context.Context, id string) error
	// VacateRoomIfEmpty marks the room vacant unless an active tenant other
	// than excludeTenantID still references it. It reports whether it wrote.
	VacateRoomIfEmpty(ctx context.Context, roomID, excludeTenantID string) (bool, error)
	// ReconcileRoom recomputes the status from active tenants and reports the
	// new status when it differed from the stored one.
	ReconcileRoom(ctx context.Context, roomID string) (RoomStatus, bool, error)
	CountActiveTenants(ctx context.Context, roomID string) (int64, error)
	DetachTenants(ctx context.Context, roomID string) error

	CreateTenant(ctx context.Context, t *Tenant) error
	GetTenant(ctx context.Context, id string) (*Tenant, error)
	// GetTenantDetail loads the tenant with its room and the room's property
	GetTenantDetail(ctx context.Context, id string) (*Tenant, error)
	LockTenant(ctx context.Context, id string) (*Tenant, error)
	UpdateTenant(ctx context.Context, id string, fields map[string]any) error
	DeleteTenant(ctx context.Context, id string) error
	ListTenants(ctx context.Context, f TenantFilter) ([]*Tenant, int64, error)
	TenantOwner(ctx context.Context, id string) (string, error)

	Stats(ctx context.Context, ownerID string) (*Stats, error)
}
