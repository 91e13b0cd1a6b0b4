package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username string `validate:"omitempty,username"`
	Password string `validate:"omitempty,password"`
	Slug     string `validate:"omitempty,slug"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, v.RegisterValidation(TagUsername, validateUsername))
	require.NoError(t, v.RegisterValidation(TagPassword, validatePassword))
	require.NoError(t, v.RegisterValidation(TagSlug, validateSlug))
	return v
}

func TestUsernameRule(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(sample{Username: "alice_01"}))
	assert.Error(t, v.Struct(sample{Username: "1alice"}))
	assert.Error(t, v.Struct(sample{Username: "ab"}))
}

func TestPasswordRule(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(sample{Password: "passw0rd"}))
	assert.Error(t, v.Struct(sample{Password: "short1"}))
	// 只有字母或只有数字都不行
	assert.Error(t, v.Struct(sample{Password: "allletters"}))
	assert.Error(t, v.Struct(sample{Password: "12345678"}))
}

func TestSlugRule(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(sample{Slug: "my-project-1"}))
	assert.Error(t, v.Struct(sample{Slug: "My Project"}))
}
