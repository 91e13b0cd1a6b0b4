package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

func newTestFactory(t *testing.T) Factory {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	f := New(db)
	require.NoError(t, f.AutoMigrate())
	return f
}

func TestSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	require.NoError(t, Seed(ctx, f))
	require.NoError(t, Seed(ctx, f))

	catalog, err := f.Permissions().List(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, len(perm.All()))

	all, err := f.Roles().GetGlobalByName(ctx, SuperRoleName)
	require.NoError(t, err)
	grants, err := f.Roles().ListGrants(ctx, all.ID)
	require.NoError(t, err)
	assert.Len(t, grants, len(perm.All()))
}

func TestMembershipUniquePerProject(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	m := &model.Membership{UserID: "u1", ProjectID: "p1", RoleID: "r1"}
	require.NoError(t, f.Memberships().Create(ctx, m))

	// 同一用户在同一项目内只能有一条成员记录
	dup := &model.Membership{UserID: "u1", ProjectID: "p1", RoleID: "r2"}
	err := f.Memberships().Create(ctx, dup)
	assert.True(t, errors.IsCode(err, errors.ErrMembershipExists.Code))

	other := &model.Membership{UserID: "u1", ProjectID: "p2", RoleID: "r1"}
	assert.NoError(t, f.Memberships().Create(ctx, other))
}

func TestShareUpsert(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	row := &model.UserDashboard{UserID: "u1", DashboardID: "d1", CanRead: true}
	require.NoError(t, f.Shares().UpsertDashboard(ctx, row))

	row2 := &model.UserDashboard{UserID: "u1", DashboardID: "d1", CanRead: true, CanWrite: true}
	require.NoError(t, f.Shares().UpsertDashboard(ctx, row2))

	got, err := f.Shares().GetDashboard(ctx, "u1", "d1")
	require.NoError(t, err)
	assert.True(t, got.CanWrite)

	list, err := f.Shares().ListByDashboard(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRoleGrantsRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	require.NoError(t, Seed(ctx, f))

	role := model.NewProjectRole("Viewer", "read only", "p1")
	require.NoError(t, f.Roles().Create(ctx, role))

	viewID, err := perm.ViewDashboard.ID()
	require.NoError(t, err)
	require.NoError(t, f.Roles().AddGrants(ctx, role.ID, []string{viewID}))

	ok, err := f.Roles().HasGrant(ctx, role.ID, viewID)
	require.NoError(t, err)
	assert.True(t, ok)

	createID, err := perm.CreateDashboard.ID()
	require.NoError(t, err)
	ok, err = f.Roles().HasGrant(ctx, role.ID, createID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Roles().DeleteGrants(ctx, role.ID))
	grants, err := f.Roles().ListGrants(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestTXRollback(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	err := f.TX(ctx, func(tx Factory) error {
		if err := tx.Users().Create(ctx, &model.User{Username: "alice", Email: "a@example.com"}); err != nil {
			return err
		}
		return errors.ErrInternal
	})
	require.Error(t, err)

	_, getErr := f.Users().GetByUsername(ctx, "alice")
	assert.True(t, errors.IsCode(getErr, errors.ErrUserNotFound.Code))
}
