package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomVacant   RoomStatus = "vacant"
	RoomOccupied RoomStatus = "occupied"
)

func (s RoomStatus) Valid() bool {
	return s == RoomVacant || s == RoomOccupied
}

// Property is a building owned by a landlord
type Property struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string    `json:"owner_id" gorm:"type:varchar(64);not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Address   *string   `json:"address" gorm:"type:text"`
	LogoURL   *string   `json:"logo_url" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RoomCount int64 `json:"room_count" gorm:"-"`
}

// Room status is derived from its active tenants and kept in sync by the
// occupancy engine.
type Room struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PropertyID string     `json:"property_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_rooms_property_name,priority:1"`
	Name       string     `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_rooms_property_name,priority:2"`
	Floor      int        `json:"floor" gorm:"not null"`
	Area       *float64   `json:"area"`
	BaseRent   float64    `json:"base_rent" gorm:"not null"`
	Status     RoomStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Tenants  []Tenant  `json:"tenants,omitempty" gorm:"foreignKey:RoomID"`
}

type Tenant struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID     string     `json:"owner_id" gorm:"type:varchar(64);not null;index"`
	RoomID      *string    `json:"room_id" gorm:"type:varchar(36);index:idx_tenants_room_active,priority:1"`
	FullName    string     `json:"full_name" gorm:"type:varchar(100);not null"`
	Phone       *string    `json:"phone" gorm:"type:varchar(20)"`
	Email       *string    `json:"email" gorm:"type:varchar(255)"`
	IDCard      *string    `json:"id_card" gorm:"type:varchar(50)"`
	MoveInDate  *time.Time `json:"move_in_date"`
	MoveOutDate *time.Time `json:"move_out_date"`
	IsActive    bool       `json:"is_active" gorm:"not null;index:idx_tenants_room_active,priority:2"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

func (p *Property) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (r *Room) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RoomVacant
	}
	if r.Floor == 0 {
		r.Floor = 1
	}
	return nil
}

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Stats are the per-owner dashboard counters
type Stats struct {
	TotalProperties int64
	TotalRooms      int64
	OccupiedRooms   int64
	ActiveTenants   int64
}
