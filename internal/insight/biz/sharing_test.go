package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

func TestShareDashboardUpsert(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	shares := NewShareService(f)

	owner := mustCreateUser(t, f, "owner", false)
	reader := mustCreateUser(t, f, "reader", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, owner.ID))

	require.NoError(t, shares.ShareDashboard(ctx, reader.ID, d.ID, ShareGrant{CanRead: true}))

	// 再次共享同一资源只更新权限位
	require.NoError(t, shares.ShareDashboard(ctx, reader.ID, d.ID, ShareGrant{CanRead: true, CanWrite: true}))

	grants, err := shares.ListDashboardGrants(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 2) // owner + reader

	row, err := f.Shares().GetDashboard(ctx, reader.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, row.CanWrite)
}

func TestReShareKeepsOwnerGrant(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	shares := NewShareService(f)

	owner := mustCreateUser(t, f, "owner", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, owner.ID))

	// Sharing a dashboard with its own owner must not strip ownership.
	require.NoError(t, shares.ShareDashboard(ctx, owner.ID, d.ID, ShareGrant{CanRead: true}))

	row, err := f.Shares().GetDashboard(ctx, owner.ID, d.ID)
	require.NoError(t, err)
	assert.True(t, row.IsOwner)

	err = shares.RevokeDashboard(ctx, owner.ID, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))
}

func TestShareRevoke(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	shares := NewShareService(f)

	owner := mustCreateUser(t, f, "owner", false)
	reader := mustCreateUser(t, f, "reader", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, owner.ID))
	require.NoError(t, shares.ShareDashboard(ctx, reader.ID, d.ID, ShareGrant{CanRead: true}))

	require.NoError(t, shares.RevokeDashboard(ctx, reader.ID, d.ID))
	_, err := f.Shares().GetDashboard(ctx, reader.ID, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrShareNotFound.Code))

	// Owner grant stays.
	err = shares.RevokeDashboard(ctx, owner.ID, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))
}

func TestShareUnknownTargets(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	shares := NewShareService(f)

	owner := mustCreateUser(t, f, "owner", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, owner.ID))

	err := shares.ShareDashboard(ctx, "ghost", d.ID, ShareGrant{CanRead: true})
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))

	err = shares.ShareDashboard(ctx, owner.ID, "missing", ShareGrant{CanRead: true})
	assert.True(t, errors.IsCode(err, errors.ErrDashboardNotFound.Code))
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	shares := NewShareService(f)

	owner := mustCreateUser(t, f, "owner", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, owner.ID))

	require.NoError(t, shares.SetDashboardFavorite(ctx, owner.ID, d.ID, true))
	favs, err := shares.ListFavorites(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, d.ID, favs[0].ID)

	require.NoError(t, shares.SetDashboardFavorite(ctx, owner.ID, d.ID, false))
	favs, err = shares.ListFavorites(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestShareChart(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	shares := NewShareService(f)

	owner := mustCreateUser(t, f, "owner", false)
	reader := mustCreateUser(t, f, "reader", false)
	project := mustCreateProject(t, f, "analytics", owner.ID)

	c := &model.Chart{ProjectID: project.ID, Name: "revenue", ChartType: "line"}
	require.NoError(t, NewChartService(f).Create(ctx, c, owner.ID))

	require.NoError(t, shares.ShareChart(ctx, reader.ID, c.ID, ShareGrant{CanRead: true}))

	authz := NewAuthzService(f)
	assert.NoError(t, authz.CanReadChart(ctx, reader.ID, c.ID))
	err := authz.CanDeleteChart(ctx, reader.ID, c.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))

	require.NoError(t, shares.RevokeChart(ctx, reader.ID, c.ID))
	err = authz.CanReadChart(ctx, reader.ID, c.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))
}
