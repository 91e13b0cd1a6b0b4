package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
	"github.com/kart-io/insight/pkg/response"
)

func abortWith(c *gin.Context, errno *errors.Errno) {
	resp := response.Err(errno).WithRequestID(GetRequestID(c.Request.Context()))
	c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
}

// Auth verifies the bearer token and injects the verified claims into
// the request context. Requests without a valid token are rejected.
func Auth(authn auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			abortWith(c, errors.ErrUnauthorized)
			return
		}

		claims, err := authn.Verify(c.Request.Context(), token)
		if err != nil {
			abortWith(c, errors.FromError(err))
			return
		}

		ctx := auth.InjectAuth(c.Request.Context(), claims, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
