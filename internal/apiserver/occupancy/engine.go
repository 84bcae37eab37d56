package occupancy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/pkg/trace"

	"github.com/ifuryst/lol"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrRoomMissing is returned when a planned room no longer exists
var ErrRoomMissing = errors.New("occupancy: room does not exist")

// Store is the subset of the database the engine writes through
type Store interface {
	LockRooms(ctx context.Context, ids []string) ([]*database.Room, error)
	OccupyRoom(ctx context.Context, id string) error
	VacateRoomIfEmpty(ctx context.Context, roomID, excludeTenantID string) (bool, error)
}

// Transition records a room whose status actually changed
type Transition struct {
	RoomID string
	From   database.RoomStatus
	To     database.RoomStatus
}

type Engine struct {
	store  Store
	logger *zap.Logger
}

func NewEngine(store Store, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger.Named("occupancy"),
	}
}

// Run executes write and then steps. ctx must carry the caller's
// transaction: rooms named by steps are locked before write runs, so
// concurrent mutations of the same room are serialized and any failure
// rolls the tenant write back together with the room writes.
func (e *Engine) Run(ctx context.Context, steps []Step, write func(ctx context.Context) error) ([]Transition, error) {
	if database.TransactionFromContext(ctx) == nil {
		return nil, errors.New("occupancy: Run requires a transaction in context")
	}

	span := trace.Tracer(cnst.TraceOccupancy).Start(ctx, "occupancy.run").
		WithAttrs(attribute.String(cnst.AttrSteps, describe(steps)))
	defer span.End()
	ctx = span.Ctx

	ids := lol.UniqSlice(RoomIDs(steps))
	sort.Strings(ids)

	status := make(map[string]database.RoomStatus, len(ids))
	if len(ids) > 0 {
		rooms, err := e.store.LockRooms(ctx, ids)
		if errors.Is(err, database.ErrRoomsMissing) {
			span.Fail(err)
			return nil, ErrRoomMissing
		}
		if err != nil {
			span.Fail(err)
			return nil, fmt.Errorf("lock rooms: %w", err)
		}
		for _, r := range rooms {
			status[r.ID] = r.Status
		}
	}

	if write != nil {
		if err := write(ctx); err != nil {
			span.Fail(err)
			return nil, err
		}
	}

	var transitions []Transition
	for _, step := range steps {
		to, err := e.apply(ctx, step)
		if err != nil {
			span.Fail(err)
			return nil, fmt.Errorf("%s: %w", step, err)
		}
		if to == "" {
			continue
		}
		if from := status[step.RoomID]; from != to {
			transitions = append(transitions, Transition{RoomID: step.RoomID, From: from, To: to})
			status[step.RoomID] = to
		}
	}

	if len(transitions) > 0 {
		e.logger.Debug("room status changed", zap.Int("count", len(transitions)), zap.String("steps", describe(steps)))
	}
	return transitions, nil
}

// apply returns the status written, or "" when the step left the room alone
func (e *Engine) apply(ctx context.Context, step Step) (database.RoomStatus, error) {
	switch step.Kind {
	case Occupy:
		if err := e.store.OccupyRoom(ctx, step.RoomID); err != nil {
			return "", err
		}
		return database.RoomOccupied, nil
	case VacateIfEmpty:
		wrote, err := e.store.VacateRoomIfEmpty(ctx, step.RoomID, step.ExcludeTenantID)
		if err != nil || !wrote {
			return "", err
		}
		return database.RoomVacant, nil
	default:
		return "", fmt.Errorf("unknown step kind %d", int(step.Kind))
	}
}

func describe(steps []Step) string {
	parts := make([]string, 0, len(steps))
	for _, s := range steps {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ",")
}
