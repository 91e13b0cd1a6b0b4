package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/auth/jwt"
	"github.com/kart-io/insight/pkg/errors"
)

func newTestUserService(t *testing.T) (*UserService, *jwt.JWT) {
	t.Helper()
	authn, err := jwt.New(jwt.WithKey("insight-test-signing-key-0123456789"), jwt.WithStore(jwt.NewMemoryStore()))
	require.NoError(t, err)
	return NewUserService(newTestFactory(t), authn), authn
}

func TestUserLogin(t *testing.T) {
	ctx := context.Background()
	svc, authn := newTestUserService(t)

	u := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Create(ctx, u, "s3cret-pass"))

	token, user, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)

	claims, err := authn.Verify(ctx, token.GetAccessToken())
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
}

func TestUserLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	u := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Create(ctx, u, "s3cret-pass"))

	_, _, err := svc.Login(ctx, "alice", "wrong")
	assert.True(t, errors.IsCode(err, errors.ErrPasswordIncorrect.Code))

	// 不存在的用户返回同样的错误，避免用户名探测
	_, _, err = svc.Login(ctx, "ghost", "whatever")
	assert.True(t, errors.IsCode(err, errors.ErrPasswordIncorrect.Code))
}

func TestUserLogout(t *testing.T) {
	ctx := context.Background()
	svc, authn := newTestUserService(t)

	u := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Create(ctx, u, "s3cret-pass"))

	token, _, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token.GetAccessToken()))
	_, err = authn.Verify(ctx, token.GetAccessToken())
	assert.True(t, errors.IsCode(err, errors.ErrTokenRevoked.Code))
}

func TestUserChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	u := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Create(ctx, u, "old-password"))

	err := svc.ChangePassword(ctx, u.ID, "bad-old", "new-password")
	assert.True(t, errors.IsCode(err, errors.ErrPasswordIncorrect.Code))

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "old-password", "new-password"))
	_, _, err = svc.Login(ctx, "alice", "new-password")
	assert.NoError(t, err)
}

func TestUserCreateInProject(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	f := svc.ds

	creator := mustCreateUser(t, f, "creator", false)
	analytics := mustCreateProject(t, f, "analytics", creator.ID)
	other := mustCreateProject(t, f, "other", creator.ID)
	viewer := mustCreateRole(t, f, "Viewer", analytics.ID, perm.ViewDashboard)
	foreign := mustCreateRole(t, f, "Foreign", other.ID, perm.ViewDashboard)

	// Role from another project: nothing is written.
	bad := &model.User{Username: "bob", Email: "bob@example.com"}
	err := svc.CreateInProject(ctx, bad, "pw-123456", analytics.ID, foreign.ID)
	assert.True(t, errors.IsCode(err, errors.ErrRoleScopeInvalid.Code))
	_, err = f.Users().GetByUsername(ctx, "bob")
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))

	u := &model.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, svc.CreateInProject(ctx, u, "pw-123456", analytics.ID, viewer.ID))

	m, err := f.Memberships().Get(ctx, u.ID, analytics.ID)
	require.NoError(t, err)
	assert.Equal(t, viewer.ID, m.RoleID)
}

func TestUserDeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	f := svc.ds

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)

	require.NoError(t, svc.Delete(ctx, creator.ID))

	_, err := f.Users().Get(ctx, creator.ID)
	assert.True(t, errors.IsCode(err, errors.ErrUserNotFound.Code))
	_, err = f.Memberships().Get(ctx, creator.ID, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrMembershipNotFound.Code))
}

func TestUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	require.NoError(t, svc.Create(ctx, &model.User{Username: "alice", Email: "a@example.com"}, "pw"))
	err := svc.Create(ctx, &model.User{Username: "alice", Email: "b@example.com"}, "pw")
	assert.True(t, errors.IsCode(err, errors.ErrUserExists.Code))
}

func TestIssueAPIKey(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	f := svc.ds

	creator := mustCreateUser(t, f, "creator", false)
	project := mustCreateProject(t, f, "analytics", creator.ID)

	key, err := svc.IssueAPIKey(ctx, creator.ID, project.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, key.Key)

	// One key per user and project.
	_, err = svc.IssueAPIKey(ctx, creator.ID, project.ID)
	assert.True(t, errors.IsCode(err, errors.ErrAPIKeyExists.Code))

	got, err := svc.GetAPIKey(ctx, creator.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, key.Key, got.Key)
}
