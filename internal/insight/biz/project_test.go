package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/pkg/errors"
)

func TestProjectCreateBootstrapsOwner(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)

	m, err := f.Memberships().Get(ctx, creator.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, m.IsOwner)

	all, err := f.Roles().GetGlobalByName(ctx, store.SuperRoleName)
	require.NoError(t, err)
	assert.Equal(t, all.ID, m.RoleID)
}

func TestProjectNameTaken(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewProjectService(f)

	creator := mustCreateUser(t, f, "creator", false)
	mustCreateProject(t, f, "analytics", creator.ID)

	err := svc.Create(ctx, &model.Project{Name: "analytics"}, creator.ID)
	assert.True(t, errors.IsCode(err, errors.ErrProjectNameTaken.Code))
}

func TestProjectDeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewProjectService(f)

	creator := mustCreateUser(t, f, "creator", false)
	member := mustCreateUser(t, f, "member", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)

	role := mustCreateRole(t, f, "Viewer", project.ID)
	mustAddMember(t, f, member.ID, project.ID, role.ID)

	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, creator.ID))

	require.NoError(t, svc.Delete(ctx, project.ID))

	_, err := f.Projects().Get(ctx, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrProjectNotFound.Code))

	_, err = f.Memberships().Get(ctx, member.ID, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrMembershipNotFound.Code))

	_, err = f.Roles().Get(ctx, role.ID)
	assert.True(t, errors.IsCode(err, errors.ErrRoleNotFound.Code))

	_, err = f.Dashboards().Get(ctx, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrDashboardNotFound.Code))

	// 全局角色不随项目删除
	_, err = f.Roles().GetGlobalByName(ctx, store.SuperRoleName)
	assert.NoError(t, err)
}

func TestProjectListVisible(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewProjectService(f)

	creator := mustCreateUser(t, f, "creator", false)
	other := mustCreateUser(t, f, "other", false)
	root := mustCreateUser(t, f, "root", true)

	p1 := mustCreateProject(t, f, "one", creator.ID)
	mustCreateProject(t, f, "two", other.ID)

	visible, err := svc.ListVisible(ctx, creator.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, p1.ID, visible[0].ID)

	all, err := svc.ListVisible(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
