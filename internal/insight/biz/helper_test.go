package biz

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kart-io/insight/internal/insight/store"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
)

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	f := store.New(db)
	require.NoError(t, f.AutoMigrate())
	require.NoError(t, store.Seed(context.Background(), f))
	return f
}

func mustCreateUser(t *testing.T, f store.Factory, username string, super bool) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com", IsSuper: super}
	require.NoError(t, f.Users().Create(context.Background(), u))
	return u
}

func mustCreateProject(t *testing.T, f store.Factory, name, creatorID string) *model.Project {
	t.Helper()
	p := &model.Project{Name: name}
	require.NoError(t, NewProjectService(f).Create(context.Background(), p, creatorID))
	return p
}

// mustCreateRole creates a project role carrying the given permission
// kinds.
func mustCreateRole(t *testing.T, f store.Factory, name, projectID string, kinds ...perm.Kind) *model.Role {
	t.Helper()
	role := model.NewProjectRole(name, "", projectID)
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, k.String())
	}
	require.NoError(t, NewRoleService(f).Create(context.Background(), role, names))
	return role
}

func mustAddMember(t *testing.T, f store.Factory, userID, projectID, roleID string) {
	t.Helper()
	_, err := NewMembershipService(f).Add(context.Background(), userID, projectID, roleID, false)
	require.NoError(t, err)
}
