package occupancy

import "fmt"

type StepKind int

const (
	// Occupy unconditionally marks the room occupied
	Occupy StepKind = iota + 1
	// VacateIfEmpty marks the room vacant when no other active tenant remains
	VacateIfEmpty
)

func (k StepKind) String() string {
	switch k {
	case Occupy:
		return "occupy"
	case VacateIfEmpty:
		return "vacate_if_empty"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// Step is one room status write derived from a tenant mutation
type Step struct {
	Kind            StepKind
	RoomID          string
	ExcludeTenantID string
}

func (s Step) String() string {
	return s.Kind.String() + ":" + s.RoomID
}

// State is the part of a tenant that drives room occupancy. An empty
// RoomID means the tenant is not assigned.
type State struct {
	RoomID   string
	IsActive bool
}

// Change is a partial tenant update. RoomSet is false when the room was
// not part of the request; RoomSet with an empty RoomID clears it.
type Change struct {
	RoomSet  bool
	RoomID   string
	IsActive *bool
}

// Apply returns the state after the change, unset fields keeping prior values
func (c Change) Apply(prior State) State {
	next := prior
	if c.RoomSet {
		next.RoomID = c.RoomID
	}
	if c.IsActive != nil {
		next.IsActive = *c.IsActive
	}
	return next
}

// PlanCreate occupies the tenant's room when the tenant starts active
func PlanCreate(created State) []Step {
	if created.RoomID == "" || !created.IsActive {
		return nil
	}
	return []Step{{Kind: Occupy, RoomID: created.RoomID}}
}

// PlanUpdate derives the room writes for a tenant moving from prior to the
// state described by change.
func PlanUpdate(tenantID string, prior State, change Change) (State, []Step) {
	next := change.Apply(prior)

	movingOut := (prior.IsActive && !next.IsActive) || (prior.RoomID != "" && next.RoomID == "")
	changingRoom := next.RoomID != "" && next.RoomID != prior.RoomID

	var steps []Step
	if (movingOut || changingRoom) && prior.RoomID != "" {
		steps = append(steps, Step{Kind: VacateIfEmpty, RoomID: prior.RoomID, ExcludeTenantID: tenantID})
	}
	if next.IsActive && next.RoomID != "" {
		steps = append(steps, Step{Kind: Occupy, RoomID: next.RoomID})
	}
	return next, steps
}

// PlanDelete vacates the tenant's former room when nobody active is left
func PlanDelete(tenantID string, prior State) []Step {
	if prior.RoomID == "" {
		return nil
	}
	return []Step{{Kind: VacateIfEmpty, RoomID: prior.RoomID, ExcludeTenantID: tenantID}}
}

// RoomIDs lists the rooms a plan touches, possibly with duplicates
func RoomIDs(steps []Step) []string {
	ids := make([]string, 0, len(steps))
	for _, s := range steps {
		ids = append(ids, s.RoomID)
	}
	return ids
}
