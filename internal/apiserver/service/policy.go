package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ResourceKind int

const (
	KindProperty ResourceKind = iota + 1
	KindRoom
	KindTenant
)

func (k ResourceKind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindRoom:
		return "room"
	case KindTenant:
		return "tenant"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// OwnerLookup resolves the landlord owning a resource
type OwnerLookup interface {
	PropertyOwner(ctx context.Context, id string) (string, error)
	RoomOwner(ctx context.Context, id string) (string, error)
	TenantOwner(ctx context.Context, id string) (string, error)
}

// Policy is the single ownership predicate every service consults
type Policy struct {
	owners OwnerLookup
}

func NewPolicy(owners OwnerLookup) *Policy {
	return &Policy{owners: owners}
}

// Allow reports whether callerID owns the resource. A resource that does
// not exist is never allowed.
func (p *Policy) Allow(ctx context.Context, callerID string, ref ResourceRef) (bool, error) {
	if callerID == "" || ref.ID == "" {
		return false, nil
	}

	var (
		owner string
		err   error
	)
	switch ref.Kind {
	case KindProperty:
		owner, err = p.owners.PropertyOwner(ctx, ref.ID)
	case KindRoom:
		owner, err = p.owners.RoomOwner(ctx, ref.ID)
	case KindTenant:
		owner, err = p.owners.TenantOwner(ctx, ref.ID)
	default:
		return false, fmt.Errorf("unknown resource kind %s", ref.Kind)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner == callerID, nil
}
