package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/internal/pkg/httputils"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
	"github.com/kart-io/insight/pkg/response"
)

// UserHandler handles user administration.
type UserHandler struct {
	users *biz.UserService
	authz *biz.AuthzService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *biz.UserService, authz *biz.AuthzService) *UserHandler {
	return &UserHandler{users: users, authz: authz}
}

// CreateUserRequest is the request body for creating a user. When
// ProjectID and RoleID are set the user is enrolled in that project in
// the same transaction.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,username"`
	Password  string `json:"password" binding:"required,password"`
	Email     string `json:"email" binding:"required,email"`
	IsSuper   bool   `json:"is_super"`
	ProjectID string `json:"project_id"`
	RoleID    string `json:"role_id"`
}

// Create registers a new user. Requires the CREATE_USER permission in
// the target project; creating a super user requires a super caller.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if req.IsSuper {
		if err := h.authz.RequireSuper(c.Request.Context(), caller); err != nil {
			httputils.WriteResponse(c, err, nil)
			return
		}
	}

	projectID := req.ProjectID
	if projectID == "" {
		projectID = c.Query("project")
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.CreateUser, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		IsSuper:  req.IsSuper,
	}

	var err error
	if req.ProjectID != "" && req.RoleID != "" {
		err = h.users.CreateInProject(c.Request.Context(), user, req.Password, req.ProjectID, req.RoleID)
	} else {
		err = h.users.Create(c.Request.Context(), user, req.Password)
	}
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, user)
}

// Get retrieves a user by id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, user)
}

// List lists users with pagination. The super=true filter lists super
// users and is itself restricted to super callers.
func (h *UserHandler) List(c *gin.Context) {
	if c.Query("super") == "true" {
		caller := auth.SubjectFromContext(c.Request.Context())
		if err := h.authz.RequireSuper(c.Request.Context(), caller); err != nil {
			httputils.WriteResponse(c, err, nil)
			return
		}
		list, err := h.users.ListSupers(c.Request.Context())
		if err != nil {
			httputils.WriteResponse(c, err, nil)
			return
		}
		httputils.WriteResponse(c, nil, list)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, list, err := h.users.List(c.Request.Context(), (page-1)*pageSize, pageSize)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, response.Page(list, total, page, pageSize))
}

// UpdateUserRequest is the request body for updating a user.
type UpdateUserRequest struct {
	Username string `json:"username" binding:"required,username"`
	Email    string `json:"email" binding:"required,email"`
}

// Update updates a user's profile. Requires EDIT_USER.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.EditUser, c.Query("project")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	user.Username = req.Username
	user.Email = req.Email

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, user)
}

// Delete removes a user. Requires DELETE_USER.
func (h *UserHandler) Delete(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.DeleteUser, c.Query("project")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// IssueAPIKey mints an API key for the caller within a project.
func (h *UserHandler) IssueAPIKey(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	key, err := h.users.IssueAPIKey(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, key)
}

// GetAPIKey retrieves the caller's API key within a project.
func (h *UserHandler) GetAPIKey(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	key, err := h.users.GetAPIKey(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, key)
}
