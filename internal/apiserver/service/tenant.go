package service

import (
	"context"
	"errors"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/apiserver/notifier"
	"github.com/amoylab/rentmanager/internal/apiserver/occupancy"
	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/internal/common/dto"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/internal/i18n"
	"github.com/amoylab/rentmanager/pkg/trace"

	"go.opentelemetry.io/otel/attribute"
)

func (s *Service) ListTenants(ctx context.Context, callerID string, q *dto.ListTenantsQuery) ([]*database.Tenant, dto.Pagination, error) {
	page := q.Paging()
	filter := database.TenantFilter{
		OwnerID: callerID,
		RoomID:  q.RoomID,
		Search:  q.Search,
		Offset:  page.Offset(),
		Limit:   page.Limit,
	}
	if q.IsActive != "" {
		active := q.IsActive == "true"
		filter.IsActive = &active
	}

	tenants, total, err := s.db.ListTenants(ctx, filter)
	if err != nil {
		return nil, dto.Pagination{}, errorx.Internal(err)
	}
	return tenants, dto.NewPagination(page, total), nil
}

func (s *Service) GetTenant(ctx context.Context, callerID, id string) (*database.Tenant, error) {
	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindTenant, ID: id}, i18n.MsgTenantNotFound); err != nil {
		return nil, err
	}
	t, err := s.db.GetTenantDetail(ctx, id)
	if err != nil {
		return nil, errorx.FromDB(err, i18n.MsgTenantNotFound)
	}
	return t, nil
}

// CreateTenant stores the tenant and occupies its room in one transaction
func (s *Service) CreateTenant(ctx context.Context, callerID string, req *dto.CreateTenantRequest) (*database.Tenant, error) {
	span := trace.Tracer(cnst.TraceService).Start(ctx, cnst.SpanTenantCreate).
		WithAttrs(attribute.String(cnst.AttrCallerID, callerID))
	defer span.End()
	ctx = span.Ctx

	if req.RoomID != nil {
		if _, err := s.db.GetRoom(ctx, *req.RoomID); err != nil {
			return nil, errorx.FromDB(err, i18n.MsgRoomNotFound)
		}
		if err := s.authorizeTarget(ctx, callerID, ResourceRef{Kind: KindRoom, ID: *req.RoomID}, i18n.MsgRoomForbidden); err != nil {
			return nil, err
		}
	}

	t := &database.Tenant{
		OwnerID:    callerID,
		RoomID:     req.RoomID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		IDCard:     req.IDCard,
		MoveInDate: req.MoveInDate,
		IsActive:   true,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	if t.MoveInDate == nil {
		now := s.now()
		t.MoveInDate = &now
	}

	var transitions []occupancy.Transition
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		steps := occupancy.PlanCreate(stateOf(t))
		var err error
		transitions, err = s.engine.Run(ctx, steps, func(ctx context.Context) error {
			return s.db.CreateTenant(ctx, t)
		})
		return err
	})
	if err != nil {
		span.Fail(err)
		return nil, occupancyError(err)
	}
	span.WithAttrs(attribute.String(cnst.AttrTenantID, t.ID))

	s.events.announce(ctx, transitions, notifier.ReasonTenantCreated, t.ID)
	return s.reload(ctx, t.ID)
}

// UpdateTenant applies a partial update. Fields left out keep their stored
// value and room_id null unassigns the tenant. Room statuses are
// recomputed in the same transaction.
func (s *Service) UpdateTenant(ctx context.Context, callerID, id string, req *dto.UpdateTenantRequest) (*database.Tenant, error) {
	span := trace.Tracer(cnst.TraceService).Start(ctx, cnst.SpanTenantUpdate).
		WithAttrs(attribute.String(cnst.AttrCallerID, callerID), attribute.String(cnst.AttrTenantID, id))
	defer span.End()
	ctx = span.Ctx

	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindTenant, ID: id}, i18n.MsgTenantNotFound); err != nil {
		return nil, err
	}
	if req.RoomID.Present() {
		if err := s.authorizeTarget(ctx, callerID, ResourceRef{Kind: KindRoom, ID: req.RoomID.Value}, i18n.MsgRoomForbidden); err != nil {
			return nil, err
		}
	}

	fields := map[string]any{"updated_at": s.now()}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Phone.Set {
		fields["phone"] = nullable(req.Phone)
	}
	if req.Email.Set {
		fields["email"] = nullable(req.Email)
	}
	if req.IDCard.Set {
		fields["id_card"] = nullable(req.IDCard)
	}
	if req.RoomID.Set {
		fields["room_id"] = nullable(req.RoomID)
	}
	if req.MoveInDate != nil {
		fields["move_in_date"] = *req.MoveInDate
	}
	if req.MoveOutDate.Set {
		fields["move_out_date"] = nullable(req.MoveOutDate)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	change := occupancy.Change{IsActive: req.IsActive}
	if req.RoomID.Set {
		change.RoomSet = true
		change.RoomID = req.RoomID.Value
	}

	var transitions []occupancy.Transition
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		prior, err := s.db.LockTenant(ctx, id)
		if err != nil {
			return err
		}
		_, steps := occupancy.PlanUpdate(id, stateOf(prior), change)
		transitions, err = s.engine.Run(ctx, steps, func(ctx context.Context) error {
			return s.db.UpdateTenant(ctx, id, fields)
		})
		return err
	})
	if err != nil {
		span.Fail(err)
		return nil, occupancyError(err)
	}

	s.events.announce(ctx, transitions, notifier.ReasonTenantUpdated, id)
	return s.reload(ctx, id)
}

// DeleteTenant removes the tenant and vacates its room when nobody active
// is left in it.
func (s *Service) DeleteTenant(ctx context.Context, callerID, id string) error {
	span := trace.Tracer(cnst.TraceService).Start(ctx, cnst.SpanTenantDelete).
		WithAttrs(attribute.String(cnst.AttrCallerID, callerID), attribute.String(cnst.AttrTenantID, id))
	defer span.End()
	ctx = span.Ctx

	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindTenant, ID: id}, i18n.MsgTenantNotFound); err != nil {
		return err
	}

	var transitions []occupancy.Transition
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		prior, err := s.db.LockTenant(ctx, id)
		if err != nil {
			return err
		}
		steps := occupancy.PlanDelete(id, stateOf(prior))
		transitions, err = s.engine.Run(ctx, steps, func(ctx context.Context) error {
			return s.db.DeleteTenant(ctx, id)
		})
		return err
	})
	if err != nil {
		span.Fail(err)
		return occupancyError(err)
	}

	s.events.announce(ctx, transitions, notifier.ReasonTenantDeleted, id)
	return nil
}

func (s *Service) reload(ctx context.Context, id string) (*database.Tenant, error) {
	t, err := s.db.GetTenantDetail(ctx, id)
	if err != nil {
		return nil, errorx.FromDB(err, i18n.MsgTenantNotFound)
	}
	return t, nil
}

func stateOf(t *database.Tenant) occupancy.State {
	st := occupancy.State{IsActive: t.IsActive}
	if t.RoomID != nil {
		st.RoomID = *t.RoomID
	}
	return st
}

// occupancyError maps engine and store failures of a tenant mutation. A
// room deleted between the ownership check and the lock is reported on
// room_id.
func occupancyError(err error) error {
	if errors.Is(err, occupancy.ErrRoomMissing) {
		return errorx.Validation(i18n.MsgRoomStatusUnavailable).
			WithField("room_id", i18n.FieldInvalid, nil).
			WithCause(err)
	}
	return errorx.FromDB(err, i18n.MsgTenantNotFound)
}
