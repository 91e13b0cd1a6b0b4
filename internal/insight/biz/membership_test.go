package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

func TestMembershipAddDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewMembershipService(f)

	creator := mustCreateUser(t, f, "creator", false)
	member := mustCreateUser(t, f, "member", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)
	role := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard)

	_, err := svc.Add(ctx, member.ID, project.ID, role.ID, false)
	require.NoError(t, err)

	_, err = svc.Add(ctx, member.ID, project.ID, role.ID, false)
	assert.True(t, errors.IsCode(err, errors.ErrMembershipExists.Code))
}

func TestMembershipRoleScopeMismatch(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewMembershipService(f)

	creator := mustCreateUser(t, f, "creator", false)
	member := mustCreateUser(t, f, "member", false)
	p1 := mustCreateProject(t, f, "one", creator.ID)
	p2 := mustCreateProject(t, f, "two", creator.ID)
	foreign := mustCreateRole(t, f, "Viewer", p2.ID, perm.ViewDashboard)

	// 角色属于另一个项目
	_, err := svc.Add(ctx, member.ID, p1.ID, foreign.ID, false)
	assert.True(t, errors.IsCode(err, errors.ErrRoleScopeInvalid.Code))
}

func TestMembershipSetRole(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewMembershipService(f)

	creator := mustCreateUser(t, f, "creator", false)
	member := mustCreateUser(t, f, "member", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)
	viewer := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard)
	editor := mustCreateRole(t, f, "Editor", project.ID, perm.EditDashboard)

	_, err := svc.Add(ctx, member.ID, project.ID, viewer.ID, false)
	require.NoError(t, err)

	m, err := svc.SetRole(ctx, member.ID, project.ID, editor.ID)
	require.NoError(t, err)
	assert.Equal(t, editor.ID, m.RoleID)

	authz := NewAuthzService(f)
	assert.NoError(t, authz.Can(ctx, member.ID, perm.EditDashboard, project.ID))
	err = authz.Can(ctx, member.ID, perm.ViewDashboard, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrMissingPermission.Code))
}

func TestMembershipLastOwnerStays(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	svc := NewMembershipService(f)

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)

	err := svc.Remove(ctx, creator.ID, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))

	member := mustCreateUser(t, f, "member", false)
	role := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard)
	mustAddMember(t, f, member.ID, project.ID, role.ID)

	assert.NoError(t, svc.Remove(ctx, member.ID, project.ID))
}
