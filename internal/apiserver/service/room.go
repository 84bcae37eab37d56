package service

import (
	"context"
	"errors"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/internal/common/dto"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/internal/i18n"
	"github.com/amoylab/rentmanager/pkg/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) ListRooms(ctx context.Context, callerID string, q *dto.ListRoomsQuery) ([]*database.Room, dto.Pagination, error) {
	page := q.Paging()
	rooms, total, err := s.db.ListRooms(ctx, database.RoomFilter{
		OwnerID:    callerID,
		PropertyID: q.PropertyID,
		Status:     database.RoomStatus(q.Status),
		Search:     q.Search,
		Offset:     page.Offset(),
		Limit:      page.Limit,
	})
	if err != nil {
		return nil, dto.Pagination{}, errorx.Internal(err)
	}
	return rooms, dto.NewPagination(page, total), nil
}

func (s *Service) CreateRoom(ctx context.Context, callerID string, req *dto.CreateRoomRequest) (*database.Room, error) {
	if err := s.authorizeTarget(ctx, callerID, ResourceRef{Kind: KindProperty, ID: req.PropertyID}, i18n.MsgPropertyForbidden); err != nil {
		return nil, err
	}
	if err := s.ensureRoomNameFree(ctx, req.PropertyID, req.Name, ""); err != nil {
		return nil, err
	}

	r := &database.Room{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Area:       req.Area,
		BaseRent:   req.BaseRent,
		Status:     database.RoomStatus(req.Status),
	}
	if req.Floor != nil {
		r.Floor = *req.Floor
	}
	if err := s.db.CreateRoom(ctx, r); err != nil {
		return nil, s.roomWriteError(err, req.Name)
	}
	return r, nil
}

func (s *Service) GetRoom(ctx context.Context, callerID, id string) (*database.Room, error) {
	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindRoom, ID: id}, i18n.MsgRoomNotFound); err != nil {
		return nil, err
	}
	r, err := s.db.GetRoomDetail(ctx, id)
	if err != nil {
		return nil, errorx.FromDB(err, i18n.MsgRoomNotFound)
	}
	return r, nil
}

// UpdateRoom applies a partial update. A status sent here is stored as is;
// the reconciliation sweep corrects it if it disagrees with the tenants.
func (s *Service) UpdateRoom(ctx context.Context, callerID, id string, req *dto.UpdateRoomRequest) (*database.Room, error) {
	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindRoom, ID: id}, i18n.MsgRoomNotFound); err != nil {
		return nil, err
	}
	current, err := s.db.GetRoom(ctx, id)
	if err != nil {
		return nil, errorx.FromDB(err, i18n.MsgRoomNotFound)
	}

	fields := map[string]any{}
	if req.Name != nil && *req.Name != current.Name {
		if err := s.ensureRoomNameFree(ctx, current.PropertyID, *req.Name, id); err != nil {
			return nil, err
		}
		fields["name"] = *req.Name
	}
	if req.Floor != nil {
		fields["floor"] = *req.Floor
	}
	if req.Area.Set {
		fields["area"] = nullable(req.Area)
	}
	if req.BaseRent != nil {
		fields["base_rent"] = *req.BaseRent
	}
	if req.Status != nil {
		fields["status"] = database.RoomStatus(*req.Status)
	}
	if len(fields) > 0 {
		fields["updated_at"] = s.now()
	}

	if err := s.db.UpdateRoom(ctx, id, fields); err != nil {
		name := current.Name
		if req.Name != nil {
			name = *req.Name
		}
		return nil, s.roomWriteError(err, name)
	}
	return s.GetRoom(ctx, callerID, id)
}

// DeleteRoom refuses to delete a room that is occupied or still has an
// active tenant. Inactive tenants referencing the room are detached.
func (s *Service) DeleteRoom(ctx context.Context, callerID, id string) error {
	span := trace.Tracer(cnst.TraceService).Start(ctx, cnst.SpanRoomDelete).
		WithAttrs(attribute.String(cnst.AttrCallerID, callerID), attribute.String(cnst.AttrRoomID, id))
	defer span.End()
	ctx = span.Ctx

	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindRoom, ID: id}, i18n.MsgRoomNotFound); err != nil {
		return err
	}

	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		rooms, err := s.db.LockRooms(ctx, []string{id})
		if errors.Is(err, database.ErrRoomsMissing) {
			return errorx.NotFound(i18n.MsgRoomNotFound)
		}
		if err != nil {
			return err
		}

		if rooms[0].Status == database.RoomOccupied {
			return errorx.Validation(i18n.MsgRoomOccupied).
				WithField("status", i18n.MsgRoomOccupied, nil)
		}
		active, err := s.db.CountActiveTenants(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return errorx.Validation(i18n.MsgRoomHasActiveTenants).
				WithField("tenants", i18n.MsgRoomHasActiveTenants, map[string]any{"Count": active})
		}

		if err := s.db.DetachTenants(ctx, id); err != nil {
			return err
		}
		return s.db.DeleteRoom(ctx, id)
	})
	if err != nil {
		span.Fail(err)
		return errorx.FromDB(err, i18n.MsgRoomNotFound)
	}

	s.logger.Info("room deleted", zap.String("room_id", id), zap.String("caller_id", callerID))
	return nil
}

func (s *Service) ensureRoomNameFree(ctx context.Context, propertyID, name, excludeID string) error {
	exists, err := s.db.RoomNameExists(ctx, propertyID, name, excludeID)
	if err != nil {
		return errorx.Internal(err)
	}
	if exists {
		return roomNameConflict(name)
	}
	return nil
}

// roomWriteError maps a unique index violation lost to a concurrent writer
// onto the same conflict the pre-check reports.
func (s *Service) roomWriteError(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return roomNameConflict(name).WithCause(err)
	}
	return errorx.FromDB(err, i18n.MsgRoomNotFound)
}

func roomNameConflict(name string) *errorx.APIError {
	return errorx.Conflict(i18n.MsgRoomNameExists).
		WithParams(map[string]any{"Name": name}).
		WithField("name", i18n.MsgRoomNameExists, map[string]any{"Name": name})
}
