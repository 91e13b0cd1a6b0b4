package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeCode(t *testing.T) {
	tests := []struct {
		name     string
		service  int
		category int
		sequence int
		want     int
	}{
		{"common request", ServiceCommon, CategoryRequest, 1, 1001},
		{"platform permission", ServicePlatform, CategoryPermission, 2, 3003002},
		{"database", ServiceInfraDB, CategoryDatabase, 1, 1008001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeCode(tt.service, tt.category, tt.sequence))

			svc, cat, seq := ParseCode(tt.want)
			assert.Equal(t, tt.service, svc)
			assert.Equal(t, tt.category, cat)
			assert.Equal(t, tt.sequence, seq)
		})
	}
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrDatabase.WithCause(cause)

	// Base errno must not be mutated.
	assert.Nil(t, ErrDatabase.Unwrap())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, ErrDatabase))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrnoWithMessage(t *testing.T) {
	err := ErrNoProjectAccess.WithMessage("user alice has no access to project p1")

	assert.Equal(t, ErrNoProjectAccess.Code, err.Code)
	assert.Equal(t, http.StatusForbidden, err.HTTPStatus())
	assert.Equal(t, "user alice has no access to project p1", err.MessageEN)
	// Chinese message carries over.
	assert.Equal(t, ErrNoProjectAccess.MessageZH, err.MessageZH)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	e := FromError(ErrUserNotFound)
	assert.Same(t, ErrUserNotFound, e)

	wrapped := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, wrapped.Code)
}

func TestLookup(t *testing.T) {
	e, ok := Lookup(ErrMissingPermission.Code)
	require.True(t, ok)
	assert.Equal(t, ErrMissingPermission, e)

	_, ok = Lookup(9999999)
	assert.False(t, ok)
}

func TestMessageLang(t *testing.T) {
	assert.Equal(t, "禁止访问", ErrForbidden.Message("zh-CN"))
	assert.Equal(t, "Forbidden", ErrForbidden.Message("en"))
}
