package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// CreateTenant inserts a tenant
func (s *store) CreateTenant(ctx context.Context, t *Tenant) error {
	return s.conn(ctx).Create(t).Error
}

// GetTenant gets a tenant by id
func (s *store) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := s.conn(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTenantDetail gets a tenant with its room and property
func (s *store) GetTenantDetail(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := s.conn(ctx).Preload("Room.Property").Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// LockTenant loads and locks a tenant for the rest of the transaction
func (s *store) LockTenant(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	if err := s.forUpdate(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTenant applies the given column updates to a tenant
func (s *store) UpdateTenant(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.conn(ctx).Model(&Tenant{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTenant deletes a tenant
func (s *store) DeleteTenant(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&Tenant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListTenants returns one page of the owner's tenants and the total count
func (s *store) ListTenants(ctx context.Context, f TenantFilter) ([]*Tenant, int64, error) {
	scope := func() *gorm.DB {
		q := s.conn(ctx).Model(&Tenant{}).Where("owner_id = ?", f.OwnerID)
		if f.RoomID != "" {
			q = q.Where("room_id = ?", f.RoomID)
		}
		if f.IsActive != nil {
			q = q.Where("is_active = ?", *f.IsActive)
		}
		if f.Search != "" {
			pattern := likePattern(strings.ToLower(f.Search))
			q = q.Where("LOWER(full_name) LIKE ?"+likeEscape+" OR LOWER(phone) LIKE ?"+likeEscape, pattern, pattern)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenants []*Tenant
	err := scope().
		Preload("Room.Property").
		Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

// TenantOwner returns the owner id of a tenant
func (s *store) TenantOwner(ctx context.Context, id string) (string, error) {
	return ownerOf(s.conn(ctx).Model(&Tenant{}).Where("id = ?", id))
}
