package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/insight/pkg/errors"
)

func TestRoleScope(t *testing.T) {
	global := NewGlobalRole("ALL", "full access")
	assert.NoError(t, global.Validate())
	assert.True(t, global.IsGlobal)
	assert.Nil(t, global.ProjectID)

	scoped := NewProjectRole("Viewer", "read only", "project-1")
	assert.NoError(t, scoped.Validate())
	assert.False(t, scoped.IsGlobal)
	assert.Equal(t, "project-1", *scoped.ProjectID)
}

func TestRoleScopeInvalid(t *testing.T) {
	// 既不是全局角色也未绑定项目
	r := &Role{Name: "orphan"}
	err := r.Validate()
	assert.True(t, errors.IsCode(err, errors.ErrRoleScopeInvalid.Code))

	pid := "project-1"
	both := &Role{Name: "both", IsGlobal: true, ProjectID: &pid}
	err = both.Validate()
	assert.True(t, errors.IsCode(err, errors.ErrRoleScopeInvalid.Code))
}
