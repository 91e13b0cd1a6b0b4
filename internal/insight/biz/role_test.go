package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

func strptr(s string) *string { return &s }

func TestRoleCreateRejectsUnknownKind(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)

	role := model.NewProjectRole("Viewer", "", project.ID)
	err := svc.Create(ctx, role, []string{"FLY_TO_MOON"})
	assert.True(t, errors.IsCode(err, errors.ErrUnknownPermission.Code))

	// Nothing was written.
	_, err = f.Roles().Get(ctx, role.ID)
	assert.True(t, errors.IsCode(err, errors.ErrRoleNotFound.Code))
}

func TestRoleUpdateReplacesGrants(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)
	role := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard, perm.ViewChart)

	updated, err := svc.Update(ctx, role.ID, strptr("Editor"), strptr("can edit"), []string{
		perm.EditDashboard.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Editor", updated.Name)
	require.Len(t, updated.Permissions, 1)
	assert.Equal(t, perm.EditDashboard.String(), updated.Permissions[0].Type)
}

func TestRoleUpdatePartial(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)
	role := model.NewProjectRole("Viewer", "read only", project.ID)
	require.NoError(t, svc.Create(ctx, role, []string{perm.ViewDashboard.String()}))

	// Grants-only update leaves name and description untouched.
	updated, err := svc.Update(ctx, role.ID, nil, nil, []string{perm.ViewChart.String()})
	require.NoError(t, err)
	assert.Equal(t, "Viewer", updated.Name)
	assert.Equal(t, "read only", updated.Description)
	require.Len(t, updated.Permissions, 1)
	assert.Equal(t, perm.ViewChart.String(), updated.Permissions[0].Type)

	// Rename-only update keeps the grant set.
	updated, err = svc.Update(ctx, role.ID, strptr("Watcher"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Watcher", updated.Name)
	assert.Equal(t, "read only", updated.Description)
	require.Len(t, updated.Permissions, 1)
}

func TestRoleUpdateAtomicOnUnknownKind(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)
	role := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard)

	_, err := svc.Update(ctx, role.ID, nil, nil, []string{
		perm.EditDashboard.String(),
		"FLY_TO_MOON",
	})
	assert.True(t, errors.IsCode(err, errors.ErrUnknownPermission.Code))

	// The failed replacement left the original grants intact.
	grants, err := f.Roles().ListGrants(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, perm.ViewDashboard.String(), grants[0].Type)
}

func TestRoleDeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	creator := mustCreateUser(t, f, "creator", false)
	member := mustCreateUser(t, f, "member", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)
	role := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard)
	mustAddMember(t, f, member.ID, project.ID, role.ID)

	require.NoError(t, svc.Delete(ctx, role.ID))

	// 角色删除后成员关系一并消失
	_, err := f.Memberships().Get(ctx, member.ID, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrMembershipNotFound.Code))

	grants, err := f.Roles().ListGrants(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestBuiltinRoleProtected(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	all, err := f.Roles().GetGlobalByName(ctx, store.SuperRoleName)
	require.NoError(t, err)

	err = svc.Delete(ctx, all.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))

	_, err = svc.Update(ctx, all.ID, strptr("renamed"), nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))
}

func TestRoleListVisible(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	creator := mustCreateUser(t, f, "creator", false)
	p1 := mustCreateProject(t, f, "one", creator.ID)
	p2 := mustCreateProject(t, f, "two", creator.ID)

	mustCreateRole(t, f, "Viewer", p1.ID, perm.ViewDashboard)
	mustCreateRole(t, f, "Other", p2.ID, perm.ViewDashboard)

	roles, err := svc.ListVisible(ctx, p1.ID)
	require.NoError(t, err)

	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	// Global ALL plus the project's own role; p2's role stays hidden.
	assert.Contains(t, names, store.SuperRoleName)
	assert.Contains(t, names, "Viewer")
	assert.NotContains(t, names, "Other")
}

func TestCatalogComplete(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewRoleService(f)

	catalog, err := svc.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, len(perm.All()))
}
