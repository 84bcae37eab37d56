package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRoom inserts a room
func (s *store) CreateRoom(ctx context.Context, r *Room) error {
	return s.conn(ctx).Create(r).Error
}

// GetRoom gets a room by id
func (s *store) GetRoom(ctx context.Context, id string) (*Room, error) {
	var r Room
	if err := s.conn(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoomDetail gets a room with its property and tenants, active first
func (s *store) GetRoomDetail(ctx context.Context, id string) (*Room, error) {
	var r Room
	err := s.conn(ctx).
		Preload("Property").
		Preload("Tenants", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_active DESC").Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRoom applies the given column updates to a room
func (s *store) UpdateRoom(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.conn(ctx).Model(&Room{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteRoom deletes a room
func (s *store) DeleteRoom(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&Room{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRooms returns one page of the owner's rooms and the total count
func (s *store) ListRooms(ctx context.Context, f RoomFilter) ([]*Room, int64, error) {
	scope := func() *gorm.DB {
		q := s.conn(ctx).Model(&Room{}).
			Joins("JOIN properties ON properties.id = rooms.property_id").
			Where("properties.owner_id = ?", f.OwnerID)
		if f.PropertyID != "" {
			q = q.Where("rooms.property_id = ?", f.PropertyID)
		}
		if f.Status != "" {
			q = q.Where("rooms.status = ?", f.Status)
		}
		if f.Search != "" {
			q = q.Where("LOWER(rooms.name) LIKE ?"+likeEscape, likePattern(strings.ToLower(f.Search)))
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []*Room
	err := scope().
		Select("rooms.*").
		Preload("Property").
		Order("rooms.created_at DESC").Order("rooms.id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// ListRoomIDs returns every room id in order
func (s *store) ListRoomIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.conn(ctx).Model(&Room{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// RoomNameExists reports whether the property already has a room with this name
func (s *store) RoomNameExists(ctx context.Context, propertyID, name, excludeRoomID string) (bool, error) {
	q := s.conn(ctx).Model(&Room{}).Where("property_id = ? AND name = ?", propertyID, name)
	if excludeRoomID != "" {
		q = q.Where("id <> ?", excludeRoomID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// RoomOwner returns the owner id of the room's property
func (s *store) RoomOwner(ctx context.Context, id string) (string, error) {
	var owners []string
	err := s.conn(ctx).Model(&Room{}).
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Where("rooms.id = ?", id).
		Limit(1).
		Pluck("properties.owner_id", &owners).Error
	if err != nil {
		return "", err
	}
	if len(owners) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return owners[0], nil
}

// LockRooms loads and locks the rooms for the rest of the transaction
func (s *store) LockRooms(ctx context.Context, ids []string) ([]*Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rooms []*Room
	if err := s.forUpdate(ctx).Where("id IN ?", ids).Order("id").Find(&rooms).Error; err != nil {
		return nil, err
	}
	if len(rooms) != len(ids) {
		return rooms, ErrRoomsMissing
	}
	return rooms, nil
}

// OccupyRoom marks a room occupied
func (s *store) OccupyRoom(ctx context.Context, id string) error {
	res := s.conn(ctx).Model(&Room{}).Where("id = ?", id).Update("status", RoomOccupied)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *store) activeTenantsIn(db *gorm.DB, roomColumn any) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).Model(&Tenant{}).
		Select("1").
		Where("tenants.room_id = ? AND tenants.is_active = ?", roomColumn, true)
}

// VacateRoomIfEmpty marks a room vacant unless another active tenant holds it
func (s *store) VacateRoomIfEmpty(ctx context.Context, roomID, excludeTenantID string) (bool, error) {
	db := s.conn(ctx)
	others := s.activeTenantsIn(db, roomID).Where("tenants.id <> ?", excludeTenantID)
	res := db.Model(&Room{}).
		Where("id = ? AND NOT EXISTS (?)", roomID, others).
		Update("status", RoomVacant)
	return res.RowsAffected > 0, res.Error
}

// ReconcileRoom rewrites a room status that disagrees with its active tenants
func (s *store) ReconcileRoom(ctx context.Context, roomID string) (RoomStatus, bool, error) {
	db := s.conn(ctx)
	derived := gorm.Expr("CASE WHEN EXISTS (?) THEN ? ELSE ? END",
		s.activeTenantsIn(db, clause.Column{Table: "rooms", Name: "id"}), RoomOccupied, RoomVacant)

	res := db.Model(&Room{}).
		Where("id = ? AND status <> (?)", roomID, derived).
		Update("status", derived)
	if res.Error != nil || res.RowsAffected == 0 {
		return "", false, res.Error
	}

	r, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return "", false, err
	}
	return r.Status, true, nil
}

// CountActiveTenants counts the active tenants of a room
func (s *store) CountActiveTenants(ctx context.Context, roomID string) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&Tenant{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&count).Error
	return count, err
}

// DetachTenants clears room_id on every tenant of a room
func (s *store) DetachTenants(ctx context.Context, roomID string) error {
	return s.conn(ctx).Model(&Tenant{}).
		Where("room_id = ?", roomID).
		Update("room_id", nil).Error
}
