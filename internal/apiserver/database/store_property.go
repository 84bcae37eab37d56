package database

import (
	"context"
)

// CreateProperty inserts a property
func (s *store) CreateProperty(ctx context.Context, p *Property) error {
	return s.conn(ctx).Create(p).Error
}

// GetProperty gets a property by id with its room count
func (s *store) GetProperty(ctx context.Context, id string) (*Property, error) {
	var p Property
	if err := s.conn(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	if err := s.conn(ctx).Model(&Room{}).Where("property_id = ?", id).Count(&p.RoomCount).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProperty applies the given column updates to a property
func (s *store) UpdateProperty(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return s.conn(ctx).Model(&Property{}).Where("id = ?", id).Updates(fields).Error
}

// ListProperties returns the owner's properties newest first with room counts
func (s *store) ListProperties(ctx context.Context, ownerID string) ([]*Property, error) {
	var props []*Property
	if err := s.conn(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Find(&props).Error; err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return props, nil
	}

	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}

	var counts []struct {
		PropertyID string
		Total      int64
	}
	if err := s.conn(ctx).Model(&Room{}).
		Select("property_id, COUNT(*) AS total").
		Where("property_id IN ?", ids).
		Group("property_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.PropertyID] = c.Total
	}
	for _, p := range props {
		p.RoomCount = byID[p.ID]
	}
	return props, nil
}

// PropertyOwner returns the owner id of a property
func (s *store) PropertyOwner(ctx context.Context, id string) (string, error) {
	return ownerOf(s.conn(ctx).Model(&Property{}).Where("id = ?", id))
}
