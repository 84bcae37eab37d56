package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amoylab/rentmanager/internal/apiserver/database"
	"github.com/amoylab/rentmanager/internal/apiserver/notifier"
	"github.com/amoylab/rentmanager/internal/common/config"
	"github.com/amoylab/rentmanager/internal/common/dto"
	"github.com/amoylab/rentmanager/internal/common/errorx"
	"github.com/amoylab/rentmanager/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	alice = "user-alice"
	bob   = "user-bob"
)

type fixture struct {
	db      database.Database
	svc     *Service
	metrics *metrics.Metrics
	events  <-chan *notifier.RoomEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, ":memory:")
}

func newFixtureAt(t *testing.T, dbName string) *fixture {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: dbName}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	n := notifier.NewMemoryNotifier(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events, err := n.Watch(ctx)
	require.NoError(t, err)

	m := metrics.New(config.MetricsConfig{Namespace: "test"})
	return &fixture{db: db, svc: New(db, n, m, zap.NewNop()), metrics: m, events: events}
}

func (f *fixture) property(t *testing.T, owner, name string) *database.Property {
	t.Helper()
	p, err := f.svc.CreateProperty(context.Background(), owner, &dto.CreatePropertyRequest{Name: name})
	require.NoError(t, err)
	return p
}

func (f *fixture) room(t *testing.T, owner, name string) *database.Room {
	t.Helper()
	p := f.property(t, owner, "Nha "+name)
	r, err := f.svc.CreateRoom(context.Background(), owner, &dto.CreateRoomRequest{PropertyID: p.ID, Name: name, BaseRent: 2500000})
	require.NoError(t, err)
	return r
}

func (f *fixture) tenant(t *testing.T, owner, roomID string) *database.Tenant {
	t.Helper()
	req := &dto.CreateTenantRequest{FullName: "Nguyen Van A"}
	if roomID != "" {
		req.RoomID = &roomID
	}
	tn, err := f.svc.CreateTenant(context.Background(), owner, req)
	require.NoError(t, err)
	return tn
}

func (f *fixture) status(t *testing.T, roomID string) database.RoomStatus {
	t.Helper()
	r, err := f.db.GetRoom(context.Background(), roomID)
	require.NoError(t, err)
	return r.Status
}

func (f *fixture) deactivate(t *testing.T, tenantID string) {
	t.Helper()
	inactive := false
	_, err := f.svc.UpdateTenant(context.Background(), alice, tenantID, &dto.UpdateTenantRequest{IsActive: &inactive})
	require.NoError(t, err)
}

func assertCode(t *testing.T, err error, code errorx.Code) *errorx.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr := errorx.As(err)
	assert.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestCreateThenDeleteTenant_VacatesRoom(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")

	tn := f.tenant(t, alice, r.ID)
	assert.True(t, tn.IsActive)
	assert.NotNil(t, tn.MoveInDate)
	require.NotNil(t, tn.Room)
	assert.Equal(t, database.RoomOccupied, f.status(t, r.ID))

	require.NoError(t, f.svc.DeleteTenant(context.Background(), alice, tn.ID))
	assert.Equal(t, database.RoomVacant, f.status(t, r.ID))
}

func TestCreateInactiveTenant_LeavesRoomVacant(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")
	inactive := false

	_, err := f.svc.CreateTenant(context.Background(), alice, &dto.CreateTenantRequest{
		FullName: "Tran Thi B", RoomID: &r.ID, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, database.RoomVacant, f.status(t, r.ID))
}

func TestTwoTenants_RoomStaysOccupiedUntilBothLeave(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")
	a := f.tenant(t, alice, r.ID)
	b := f.tenant(t, alice, r.ID)

	f.deactivate(t, a.ID)
	assert.Equal(t, database.RoomOccupied, f.status(t, r.ID))

	f.deactivate(t, b.ID)
	assert.Equal(t, database.RoomVacant, f.status(t, r.ID))
}

func TestMoveTenantBetweenRooms(t *testing.T) {
	f := newFixture(t)
	a := f.room(t, alice, "A")
	b := f.room(t, alice, "B")
	tn := f.tenant(t, alice, a.ID)

	updated, err := f.svc.UpdateTenant(context.Background(), alice, tn.ID, &dto.UpdateTenantRequest{RoomID: dto.Some(b.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.RoomID)
	assert.Equal(t, b.ID, *updated.RoomID)

	assert.Equal(t, database.RoomVacant, f.status(t, a.ID))
	assert.Equal(t, database.RoomOccupied, f.status(t, b.ID))
}

func TestUpdateTenant_NullRoomUnassigns(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")
	tn := f.tenant(t, alice, r.ID)

	updated, err := f.svc.UpdateTenant(context.Background(), alice, tn.ID, &dto.UpdateTenantRequest{
		RoomID:      dto.Null[string](),
		MoveOutDate: dto.Some(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.RoomID)
	assert.True(t, updated.IsActive)
	assert.NotNil(t, updated.MoveOutDate)
	assert.Equal(t, database.RoomVacant, f.status(t, r.ID))
}

func TestUpdateTenant_UnchangedFieldsKeepRoomOccupied(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")
	tn := f.tenant(t, alice, r.ID)

	name := "Le Van C"
	updated, err := f.svc.UpdateTenant(context.Background(), alice, tn.ID, &dto.UpdateTenantRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, database.RoomOccupied, f.status(t, r.ID))
}

func TestAssignToForeignRoom_Forbidden(t *testing.T) {
	f := newFixture(t)
	mine := f.room(t, alice, "101")
	theirs := f.room(t, bob, "201")
	tn := f.tenant(t, alice, mine.ID)

	_, err := f.svc.UpdateTenant(context.Background(), alice, tn.ID, &dto.UpdateTenantRequest{RoomID: dto.Some(theirs.ID)})
	assertCode(t, err, errorx.CodeForbidden)

	got, err := f.db.GetTenant(context.Background(), tn.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, *got.RoomID)
	assert.Equal(t, database.RoomOccupied, f.status(t, mine.ID))
	assert.Equal(t, database.RoomVacant, f.status(t, theirs.ID))

	_, err = f.svc.CreateTenant(context.Background(), alice, &dto.CreateTenantRequest{FullName: "X", RoomID: &theirs.ID})
	assertCode(t, err, errorx.CodeForbidden)
	assert.Equal(t, database.RoomVacant, f.status(t, theirs.ID))
}

func TestForeignTenant_NotFound(t *testing.T) {
	f := newFixture(t)
	tn := f.tenant(t, bob, "")

	_, err := f.svc.GetTenant(context.Background(), alice, tn.ID)
	assertCode(t, err, errorx.CodeNotFound)
	_, err = f.svc.UpdateTenant(context.Background(), alice, tn.ID, &dto.UpdateTenantRequest{})
	assertCode(t, err, errorx.CodeNotFound)
	assertCode(t, f.svc.DeleteTenant(context.Background(), alice, tn.ID), errorx.CodeNotFound)
	assertCode(t, f.svc.DeleteTenant(context.Background(), alice, "missing"), errorx.CodeNotFound)
}

func TestDeleteRoomGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.room(t, alice, "101")
	tn := f.tenant(t, alice, r.ID)

	err := f.svc.DeleteRoom(ctx, alice, r.ID)
	apiErr := assertCode(t, err, errorx.CodeValidation)
	assert.Contains(t, apiErr.Details, "status")

	// stored status drifted to vacant while an active tenant remains
	vacant := dto.RoomStatusVacant
	_, err = f.svc.UpdateRoom(ctx, alice, r.ID, &dto.UpdateRoomRequest{Status: &vacant})
	require.NoError(t, err)

	err = f.svc.DeleteRoom(ctx, alice, r.ID)
	apiErr = assertCode(t, err, errorx.CodeValidation)
	assert.Contains(t, apiErr.Details, "tenants")

	f.deactivate(t, tn.ID)
	require.NoError(t, f.svc.DeleteRoom(ctx, alice, r.ID))

	_, err = f.db.GetRoom(ctx, r.ID)
	assert.Error(t, err)
	got, err := f.db.GetTenant(ctx, tn.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RoomID)
}

func TestDeleteRoom_ForeignOrMissing(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, bob, "101")

	assertCode(t, f.svc.DeleteRoom(context.Background(), alice, r.ID), errorx.CodeNotFound)
	assertCode(t, f.svc.DeleteRoom(context.Background(), alice, "missing"), errorx.CodeNotFound)
}

func TestRoomNameUniquePerProperty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.property(t, alice, "Nha 1")
	p2 := f.property(t, alice, "Nha 2")

	_, err := f.svc.CreateRoom(ctx, alice, &dto.CreateRoomRequest{PropertyID: p1.ID, Name: "101", BaseRent: 1})
	require.NoError(t, err)

	_, err = f.svc.CreateRoom(ctx, alice, &dto.CreateRoomRequest{PropertyID: p1.ID, Name: "101", BaseRent: 1})
	apiErr := assertCode(t, err, errorx.CodeConflict)
	assert.Equal(t, "101", apiErr.Params["Name"])

	_, err = f.svc.CreateRoom(ctx, alice, &dto.CreateRoomRequest{PropertyID: p2.ID, Name: "101", BaseRent: 1})
	assert.NoError(t, err)

	other, err := f.svc.CreateRoom(ctx, alice, &dto.CreateRoomRequest{PropertyID: p1.ID, Name: "102", BaseRent: 1})
	require.NoError(t, err)
	taken := "101"
	_, err = f.svc.UpdateRoom(ctx, alice, other.ID, &dto.UpdateRoomRequest{Name: &taken})
	assertCode(t, err, errorx.CodeConflict)
}

func TestCreateRoom_ForeignProperty(t *testing.T) {
	f := newFixture(t)
	p := f.property(t, bob, "Nha B")

	_, err := f.svc.CreateRoom(context.Background(), alice, &dto.CreateRoomRequest{PropertyID: p.ID, Name: "1", BaseRent: 1})
	assertCode(t, err, errorx.CodeForbidden)
}

func TestUpdateRoom_ClearsArea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.property(t, alice, "Nha")
	area := 20.5
	floor := 3
	r, err := f.svc.CreateRoom(ctx, alice, &dto.CreateRoomRequest{PropertyID: p.ID, Name: "301", Floor: &floor, Area: &area, BaseRent: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, r.Floor)

	updated, err := f.svc.UpdateRoom(ctx, alice, r.ID, &dto.UpdateRoomRequest{Area: dto.Null[float64]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Area)
	require.NotNil(t, updated.Property)
	assert.Equal(t, p.ID, updated.Property.ID)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.room(t, alice, "101")
	f.room(t, alice, "102")
	f.room(t, bob, "101")
	f.tenant(t, alice, r.ID)
	f.tenant(t, alice, "")

	rooms, page, err := f.svc.ListRooms(ctx, alice, &dto.ListRoomsQuery{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 1, Total: 2, TotalPages: 2}, page)

	rooms, _, err = f.svc.ListRooms(ctx, alice, &dto.ListRoomsQuery{Status: "occupied", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, r.ID, rooms[0].ID)

	tenants, page, err := f.svc.ListTenants(ctx, alice, &dto.ListTenantsQuery{IsActive: "true", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, tenants, 2)
	assert.EqualValues(t, 2, page.Total)

	props, err := f.svc.ListProperties(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, props, 2)
	for _, p := range props {
		assert.EqualValues(t, 1, p.RoomCount)
	}
}

func TestPropertyUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	addr := "12 Le Loi"
	p, err := f.svc.CreateProperty(ctx, alice, &dto.CreatePropertyRequest{Name: "Nha", Address: &addr})
	require.NoError(t, err)

	name := "Nha moi"
	updated, err := f.svc.UpdateProperty(ctx, alice, p.ID, &dto.UpdatePropertyRequest{Name: &name, Address: dto.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Nil(t, updated.Address)

	_, err = f.svc.GetProperty(ctx, bob, p.ID)
	assertCode(t, err, errorx.CodeNotFound)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")
	f.room(t, alice, "102")
	f.tenant(t, alice, r.ID)
	f.room(t, bob, "201")

	st, err := f.svc.DashboardStats(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, &dto.DashboardStats{
		TotalProperties: 2, TotalRooms: 2, OccupiedRooms: 1, VacantRooms: 1, ActiveTenants: 1,
	}, st)
}

func TestTransitionsArePublishedAndCounted(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, alice, "101")
	tn := f.tenant(t, alice, r.ID)

	select {
	case ev := <-f.events:
		assert.Equal(t, r.ID, ev.RoomID)
		assert.Equal(t, "vacant", ev.From)
		assert.Equal(t, "occupied", ev.To)
		assert.Equal(t, notifier.ReasonTenantCreated, ev.Reason)
		assert.Equal(t, tn.ID, ev.TenantID)
	case <-time.After(time.Second):
		t.Fatal("no room event published")
	}

	// a second tenant in an occupied room changes nothing
	f.tenant(t, alice, r.ID)
	select {
	case ev := <-f.events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}

	expected := `
# HELP test_room_status_transitions_total Room status changes applied by tenant mutations and reconciliation.
# TYPE test_room_status_transitions_total counter
test_room_status_transitions_total{from="vacant",reason="tenant_created",to="occupied"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "test_room_status_transitions_total"))
}

type brokenNotifier struct {
	notifier.MemoryNotifier
}

func (*brokenNotifier) Publish(context.Context, *notifier.RoomEvent) error {
	return errors.New("redis unavailable")
}

func TestPublishFailure_DoesNotFailRequest(t *testing.T) {
	f := newFixture(t)
	m := metrics.New(config.MetricsConfig{Namespace: "broken"})
	f.svc = New(f.db, &brokenNotifier{}, m, zap.NewNop())
	r := f.room(t, alice, "101")

	f.tenant(t, alice, r.ID)
	assert.Equal(t, database.RoomOccupied, f.status(t, r.ID))

	count, err := testutil.GatherAndCount(m.Registry(), "broken_room_event_publish_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
