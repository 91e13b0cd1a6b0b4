package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
)

// Authorizer decides whether a user may perform an action within a project.
type Authorizer interface {
	Can(ctx context.Context, userID string, kind perm.Kind, projectID string) error
}

// RequirePermission aborts the request unless the authenticated caller
// holds the permission within the project named by the route parameter.
// The deny reason is written before the handler runs.
func RequirePermission(authz Authorizer, kind perm.Kind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := auth.SubjectFromContext(c.Request.Context())
		if err := authz.Can(c.Request.Context(), caller, kind, c.Param(param)); err != nil {
			abortWith(c, errors.FromError(err))
			return
		}
		c.Next()
	}
}
