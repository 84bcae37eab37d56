package database

import (
	"context"
)

// Stats counts the owner's properties, rooms and active tenants
func (s *store) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	var st Stats
	db := s.conn(ctx)

	if err := db.Model(&Property{}).Where("owner_id = ?", ownerID).Count(&st.TotalProperties).Error; err != nil {
		return nil, err
	}

	var byStatus []struct {
		Status RoomStatus
		Total  int64
	}
	err := s.conn(ctx).Model(&Room{}).
		Select("rooms.status AS status, COUNT(*) AS total").
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Where("properties.owner_id = ?", ownerID).
		Group("rooms.status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		st.TotalRooms += row.Total
		if row.Status == RoomOccupied {
			st.OccupiedRooms = row.Total
		}
	}

	if err := s.conn(ctx).Model(&Tenant{}).
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Count(&st.ActiveTenants).Error; err != nil {
		return nil, err
	}
	return &st, nil
}
