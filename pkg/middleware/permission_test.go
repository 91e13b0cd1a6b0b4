package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/errors"
)

type fakeAuthorizer struct {
	deny *errors.Errno
}

func (f *fakeAuthorizer) Can(ctx context.Context, userID string, kind perm.Kind, projectID string) error {
	if f.deny != nil {
		return f.deny
	}
	return nil
}

func newPermissionEngine(authz Authorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.DELETE("/projects/:id/roles/:role",
		RequirePermission(authz, perm.DeleteRole, "id"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return engine
}

func TestRequirePermissionAllows(t *testing.T) {
	engine := newPermissionEngine(&fakeAuthorizer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/projects/p1/roles/r1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionAbortsOnDeny(t *testing.T) {
	engine := newPermissionEngine(&fakeAuthorizer{deny: errors.ErrMissingPermission})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/projects/p1/roles/r1", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "required permission")
}
