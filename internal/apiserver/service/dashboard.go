package service

import (
	"context"

	"github.com/amoylab/rentmanager/internal/common/dto"
	"github.com/amoylab/rentmanager/internal/common/errorx"
)

func (s *Service) DashboardStats(ctx context.Context, callerID string) (*dto.DashboardStats, error) {
	st, err := s.db.Stats(ctx, callerID)
	if err != nil {
		return nil, errorx.Internal(err)
	}
	return &dto.DashboardStats{
		TotalProperties: st.TotalProperties,
		TotalRooms:      st.TotalRooms,
		OccupiedRooms:   st.OccupiedRooms,
		VacantRooms:     st.TotalRooms - st.OccupiedRooms,
		ActiveTenants:   st.ActiveTenants,
	}, nil
}
