package service

import (
	"context"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/common/dto"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/internal/i18n"
)

func (s *Service) ListProperties(ctx context.Context, callerID string) ([]*database.Property, error) {
	props, err := s.db.ListProperties(ctx, callerID)
	if err != nil {
		return nil, errorx.Internal(err)
	}
	return props, nil
}

func (s *Service) CreateProperty(ctx context.Context, callerID string, req *dto.CreatePropertyRequest) (*database.Property, error) {
	p := &database.Property{
		OwnerID: callerID,
		Name:    req.Name,
		Address: req.Address,
		LogoURL: req.LogoURL,
	}
	if err := s.db.CreateProperty(ctx, p); err != nil {
		return nil, errorx.FromDB(err, i18n.MsgPropertyNotFound)
	}
	return p, nil
}

func (s *Service) GetProperty(ctx context.Context, callerID, id string) (*database.Property, error) {
	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindProperty, ID: id}, i18n.MsgPropertyNotFound); err != nil {
		return nil, err
	}
	p, err := s.db.GetProperty(ctx, id)
	if err != nil {
		return nil, errorx.FromDB(err, i18n.MsgPropertyNotFound)
	}
	return p, nil
}

func (s *Service) UpdateProperty(ctx context.Context, callerID, id string, req *dto.UpdatePropertyRequest) (*database.Property, error) {
	if err := s.authorize(ctx, callerID, ResourceRef{Kind: KindProperty, ID: id}, i18n.MsgPropertyNotFound); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Address.Set {
		fields["address"] = nullable(req.Address)
	}
	if req.LogoURL.Set {
		fields["logo_url"] = nullable(req.LogoURL)
	}
	if len(fields) > 0 {
		fields["updated_at"] = s.now()
	}

	if err := s.db.UpdateProperty(ctx, id, fields); err != nil {
		return nil, errorx.FromDB(err, i18n.MsgPropertyNotFound)
	}
	return s.GetProperty(ctx, callerID, id)
}

// nullable maps an explicit null to a SQL NULL
func nullable[T any](o dto.Optional[T]) any {
	if !o.Present() {
		return nil
	}
	return o.Value
}
