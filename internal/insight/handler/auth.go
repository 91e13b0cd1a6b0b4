// Package handler implements the HTTP handlers of the insight service.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/pkg/httputils"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
)

// AuthHandler handles login, logout and password changes.
type AuthHandler struct {
	users *biz.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *biz.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the user profile.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   int64       `json:"expires_at"`
	User        interface{} `json:"user"`
}

// Login verifies credentials and issues a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	token, user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logger.Warnf("Login failed for %q: %v", req.Username, err)
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, &LoginResponse{
		AccessToken: token.GetAccessToken(),
		TokenType:   token.GetTokenType(),
		ExpiresAt:   token.GetExpiresAt(),
		User:        user,
	})
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := auth.TokenFromContext(c.Request.Context())
	if token == "" {
		httputils.WriteResponse(c, errors.ErrUnauthorized, nil)
		return
	}

	if err := h.users.Logout(c.Request.Context(), token); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ChangePasswordRequest is the request body for a password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,password"`
}

// ChangePassword updates the caller's own password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	userID := auth.SubjectFromContext(c.Request.Context())
	if err := h.users.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Profile returns the caller's own account.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := auth.SubjectFromContext(c.Request.Context())
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, user)
}
