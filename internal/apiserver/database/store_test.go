package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/amoylab/rentmanager/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedRoom(t *testing.T, db Database, owner, propName, roomName string) (*Property, *Room) {
	t.Helper()
	ctx := context.Background()
	p := &Property{OwnerID: owner, Name: propName}
	require.NoError(t, db.CreateProperty(ctx, p))
	r := &Room{PropertyID: p.ID, Name: roomName, BaseRent: 1500000}
	require.NoError(t, db.CreateRoom(ctx, r))
	return p, r
}

func strPtr(s string) *string { return &s }

func TestNewDatabase_Factory(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Type: "unknown"}, zap.NewNop())
	assert.Error(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, db.Ping(context.Background()))
	assert.NoError(t, db.Close())
}

func TestRoomDefaultsAndUniqueName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p, r := seedRoom(t, db, "owner-1", "Nha A", "101")

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, RoomVacant, r.Status)
	assert.Equal(t, 1, r.Floor)

	err := db.CreateRoom(ctx, &Room{PropertyID: p.ID, Name: "101", BaseRent: 1})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := db.RoomNameExists(ctx, p.ID, "101", "")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = db.RoomNameExists(ctx, p.ID, "101", r.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, other := seedRoom(t, db, "owner-1", "Nha B", "101")
	assert.NotEqual(t, r.ID, other.ID)
}

func TestOwners(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p, r := seedRoom(t, db, "owner-1", "Nha A", "101")
	tn := &Tenant{OwnerID: "owner-1", FullName: "An", IsActive: true}
	require.NoError(t, db.CreateTenant(ctx, tn))

	owner, err := db.PropertyOwner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", owner)

	owner, err = db.RoomOwner(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", owner)

	owner, err = db.TenantOwner(ctx, tn.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", owner)

	_, err = db.RoomOwner(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = db.PropertyOwner(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVacateRoomIfEmpty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, r := seedRoom(t, db, "o", "P", "101")
	require.NoError(t, db.OccupyRoom(ctx, r.ID))

	a := &Tenant{OwnerID: "o", FullName: "A", RoomID: &r.ID, IsActive: true}
	b := &Tenant{OwnerID: "o", FullName: "B", RoomID: &r.ID, IsActive: true}
	require.NoError(t, db.CreateTenant(ctx, a))
	require.NoError(t, db.CreateTenant(ctx, b))

	wrote, err := db.VacateRoomIfEmpty(ctx, r.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, wrote, "b is still active")

	require.NoError(t, db.UpdateTenant(ctx, b.ID, map[string]any{"is_active": false}))
	wrote, err = db.VacateRoomIfEmpty(ctx, r.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, wrote)

	got, err := db.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, RoomVacant, got.Status)
}

func TestReconcileRoom(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, r := seedRoom(t, db, "o", "P", "101")

	status, changed, err := db.ReconcileRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, status)

	require.NoError(t, db.CreateTenant(ctx, &Tenant{OwnerID: "o", FullName: "A", RoomID: &r.ID, IsActive: true}))
	status, changed, err = db.ReconcileRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, RoomOccupied, status)

	status, changed, err = db.ReconcileRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, status)
}

func TestLockRooms(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, r1 := seedRoom(t, db, "o", "P1", "101")
	_, r2 := seedRoom(t, db, "o", "P2", "102")

	err := db.Transaction(ctx, func(ctx context.Context) error {
		rooms, err := db.LockRooms(ctx, []string{r1.ID, r2.ID})
		require.NoError(t, err)
		assert.Len(t, rooms, 2)

		_, err = db.LockRooms(ctx, []string{r1.ID, "missing"})
		assert.ErrorIs(t, err, ErrRoomsMissing)
		return nil
	})
	require.NoError(t, err)
}

func TestTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, r := seedRoom(t, db, "o", "P", "101")

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, db.CreateTenant(ctx, &Tenant{OwnerID: "o", FullName: "A", RoomID: &r.ID, IsActive: true}))
		require.NoError(t, db.OccupyRoom(ctx, r.ID))
		return db.Transaction(ctx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	got, err := db.GetRoom(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, RoomVacant, got.Status)
	n, err := db.CountActiveTenants(ctx, r.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListRoomsFiltersAndPages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := &Property{OwnerID: "o", Name: "P"}
	require.NoError(t, db.CreateProperty(ctx, p))
	for i := 1; i <= 5; i++ {
		require.NoError(t, db.CreateRoom(ctx, &Room{PropertyID: p.ID, Name: fmt.Sprintf("Room %d", i), BaseRent: 1}))
	}
	seedRoom(t, db, "someone-else", "Q", "Room 9")

	rooms, total, err := db.ListRooms(ctx, RoomFilter{OwnerID: "o", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, rooms, 2)
	require.NotNil(t, rooms[0].Property)
	assert.Equal(t, "P", rooms[0].Property.Name)

	rooms, total, err = db.ListRooms(ctx, RoomFilter{OwnerID: "o", Search: "room 3", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Room 3", rooms[0].Name)

	_, total, err = db.ListRooms(ctx, RoomFilter{OwnerID: "o", Status: RoomOccupied, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)

	props, err := db.ListProperties(ctx, "o")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, int64(5), props[0].RoomCount)
}

func TestTenantsListDetailAndDetach(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, r := seedRoom(t, db, "o", "P", "101")

	active := &Tenant{OwnerID: "o", FullName: "Nguyen Van A", Phone: strPtr("0912345678"), RoomID: &r.ID, IsActive: true}
	inactive := &Tenant{OwnerID: "o", FullName: "Tran Thi B", RoomID: &r.ID, IsActive: false}
	require.NoError(t, db.CreateTenant(ctx, active))
	require.NoError(t, db.CreateTenant(ctx, inactive))
	require.NoError(t, db.CreateTenant(ctx, &Tenant{OwnerID: "other", FullName: "C", IsActive: true}))

	got, err := db.GetTenant(ctx, inactive.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	yes := true
	list, total, err := db.ListTenants(ctx, TenantFilter{OwnerID: "o", IsActive: &yes, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.NotNil(t, list[0].Room)
	require.NotNil(t, list[0].Room.Property)

	_, total, err = db.ListTenants(ctx, TenantFilter{OwnerID: "o", Search: "091234", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	detail, err := db.GetRoomDetail(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Tenants, 2)
	assert.True(t, detail.Tenants[0].IsActive)

	require.NoError(t, db.DeleteTenant(ctx, active.ID))
	assert.ErrorIs(t, db.DeleteTenant(ctx, active.ID), gorm.ErrRecordNotFound)

	require.NoError(t, db.DetachTenants(ctx, r.ID))
	require.NoError(t, db.DeleteRoom(ctx, r.ID))
	got, err = db.GetTenant(ctx, inactive.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RoomID)
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, r1 := seedRoom(t, db, "o", "P1", "101")
	seedRoom(t, db, "o", "P2", "201")
	require.NoError(t, db.OccupyRoom(ctx, r1.ID))
	require.NoError(t, db.CreateTenant(ctx, &Tenant{OwnerID: "o", FullName: "A", RoomID: &r1.ID, IsActive: true}))
	seedRoom(t, db, "x", "Other", "1")

	st, err := db.Stats(ctx, "o")
	require.NoError(t, err)
	assert.Equal(t, &Stats{TotalProperties: 2, TotalRooms: 2, OccupiedRooms: 1, ActiveTenants: 1}, st)
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := &Property{OwnerID: "o", Name: "P"}
	require.NoError(t, db.CreateProperty(ctx, p))
	for _, name := range []string{"50%", "101", "A!B"} {
		require.NoError(t, db.CreateRoom(ctx, &Room{PropertyID: p.ID, Name: name, BaseRent: 1}))
	}

	rooms, total, err := db.ListRooms(ctx, RoomFilter{OwnerID: "o", Search: "%", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "50%", rooms[0].Name)

	rooms, total, err = db.ListRooms(ctx, RoomFilter{OwnerID: "o", Search: "!", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "A!B", rooms[0].Name)

	require.NoError(t, db.CreateTenant(ctx, &Tenant{OwnerID: "o", FullName: "Le_Van", IsActive: true}))
	require.NoError(t, db.CreateTenant(ctx, &Tenant{OwnerID: "o", FullName: "LeXVan", IsActive: true}))

	tenants, total, err := db.ListTenants(ctx, TenantFilter{OwnerID: "o", Search: "e_v", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Le_Van", tenants[0].FullName)
}

func TestForUpdateLocksOnlyWhenSupported(t *testing.T) {
	pg, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=rent dbname=rent"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	ctx := context.Background()

	var rooms []*Room
	locked := &store{db: pg, lockRow: true}
	stmt := locked.forUpdate(ctx).Where("id IN ?", []string{"a", "b"}).Order("id").Find(&rooms).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")

	unlocked := &store{db: pg}
	stmt = unlocked.forUpdate(ctx).Where("id IN ?", []string{"a", "b"}).Order("id").Find(&rooms).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")

	assert.False(t, newTestDB(t).(*store).lockRow)
}
