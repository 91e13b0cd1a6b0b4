package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

func TestCanRequiresIdentity(t *testing.T) {
	f := newTestFactory(t)
	authz := NewAuthzService(f)

	err := authz.Can(context.Background(), "", perm.ViewDashboard, "p1")
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized.Code))

	err = authz.Can(context.Background(), "ghost", perm.ViewDashboard, "p1")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
}

func TestCanSuperUserBypassesEverything(t *testing.T) {
	f := newTestFactory(t)
	authz := NewAuthzService(f)

	root := mustCreateUser(t, f, "root", true)

	// 超级用户无需任何项目成员关系
	assert.NoError(t, authz.Can(context.Background(), root.ID, perm.DeleteProject, ""))
	assert.NoError(t, authz.Can(context.Background(), root.ID, perm.ViewDashboard, "nonexistent"))
}

func TestCanProjectScopedGrant(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	authz := NewAuthzService(f)

	owner := mustCreateUser(t, f, "owner", false)
	viewer := mustCreateUser(t, f, "viewer", false)
	outsider := mustCreateUser(t, f, "outsider", false)

	project := mustCreateProject(t, f, "analytics", owner.ID)
	role := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard, perm.ViewChart)
	mustAddMember(t, f, viewer.ID, project.ID, role.ID)

	assert.NoError(t, authz.Can(ctx, viewer.ID, perm.ViewDashboard, project.ID))

	// Role lacks the grant.
	err := authz.Can(ctx, viewer.ID, perm.CreateDashboard, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrMissingPermission.Code))

	// No membership in the target project.
	err = authz.Can(ctx, outsider.ID, perm.ViewDashboard, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrNoProjectAccess.Code))
}

func TestCanProjectIndependent(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	authz := NewAuthzService(f)

	owner := mustCreateUser(t, f, "owner", false)
	member := mustCreateUser(t, f, "member", false)
	drifter := mustCreateUser(t, f, "drifter", false)

	project := mustCreateProject(t, f, "analytics", owner.ID)
	viewer := mustCreateRole(t, f, "Viewer", project.ID, perm.ViewDashboard)
	mustAddMember(t, f, member.ID, project.ID, viewer.ID)

	// The creator holds the built-in ALL role, which carries
	// CREATE_PROJECT, regardless of which project the check names.
	assert.NoError(t, authz.Can(ctx, owner.ID, perm.CreateProject, ""))

	// A member whose only role lacks the grant is denied.
	err := authz.Can(ctx, member.ID, perm.CreateProject, "")
	assert.True(t, errors.IsCode(err, errors.ErrMissingPermission.Code))

	// No memberships at all.
	err = authz.Can(ctx, drifter.ID, perm.CreateProject, "")
	assert.True(t, errors.IsCode(err, errors.ErrNoRolesAssigned.Code))
}

func TestProjectBootstrapScenario(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	authz := NewAuthzService(f)
	roles := NewRoleService(f)
	memberships := NewMembershipService(f)

	alice := mustCreateUser(t, f, "alice", false)
	bob := mustCreateUser(t, f, "bob", false)

	// Creating "alpha" enrolls alice as owner under the built-in ALL role.
	alpha := mustCreateProject(t, f, "alpha", alice.ID)
	m, err := memberships.Get(ctx, alice.ID, alpha.ID)
	require.NoError(t, err)
	assert.True(t, m.IsOwner)

	viewer := model.NewProjectRole("Viewer", "", alpha.ID)
	require.NoError(t, roles.Create(ctx, viewer, []string{perm.ViewDashboard.String()}))
	_, err = memberships.Add(ctx, bob.ID, alpha.ID, viewer.ID, false)
	require.NoError(t, err)

	err = authz.Can(ctx, bob.ID, perm.CreateDashboard, alpha.ID)
	assert.True(t, errors.IsCode(err, errors.ErrMissingPermission.Code))

	assert.NoError(t, authz.Can(ctx, alice.ID, perm.CreateDashboard, alpha.ID))
}

func TestDashboardGrantChecks(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	authz := NewAuthzService(f)

	owner := mustCreateUser(t, f, "owner", false)
	reader := mustCreateUser(t, f, "reader", false)
	stranger := mustCreateUser(t, f, "stranger", false)
	root := mustCreateUser(t, f, "root", true)

	project := mustCreateProject(t, f, "analytics", owner.ID)
	d := &model.Dashboard{ProjectID: project.ID, Name: "sales"}
	require.NoError(t, NewDashboardService(f).Create(ctx, d, owner.ID))

	shares := NewShareService(f)
	require.NoError(t, shares.ShareDashboard(ctx, reader.ID, d.ID, ShareGrant{CanRead: true}))

	assert.NoError(t, authz.CanReadDashboard(ctx, owner.ID, d.ID))
	assert.NoError(t, authz.CanWriteDashboard(ctx, owner.ID, d.ID))
	assert.NoError(t, authz.CanDeleteDashboard(ctx, owner.ID, d.ID))

	assert.NoError(t, authz.CanReadDashboard(ctx, reader.ID, d.ID))
	err := authz.CanWriteDashboard(ctx, reader.ID, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))

	// 未共享即无权限
	err = authz.CanReadDashboard(ctx, stranger.ID, d.ID)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden.Code))

	assert.NoError(t, authz.CanDeleteDashboard(ctx, root.ID, d.ID))
}

func TestRequireProjectRole(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	authz := NewAuthzService(f)

	owner := mustCreateUser(t, f, "owner", false)
	member := mustCreateUser(t, f, "member", false)

	project := mustCreateProject(t, f, "analytics", owner.ID)
	admin := mustCreateRole(t, f, AdminRoleName, project.ID, perm.ViewDashboard)
	mustAddMember(t, f, member.ID, project.ID, admin.ID)

	assert.NoError(t, authz.RequireProjectRole(ctx, member.ID, project.ID, AdminRoleName))

	err := authz.RequireProjectRole(ctx, member.ID, project.ID, "auditor")
	assert.True(t, errors.IsCode(err, errors.ErrNotProjectAdmin.Code))
}
