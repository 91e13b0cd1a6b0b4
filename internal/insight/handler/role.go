package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/pkg/httputils"
	"github.com/kart-io/insight/pkg/errors"
)

// RoleHandler handles roles and the permission catalog. Permission
// checks for the mutating routes are applied by the router via
// middleware.RequirePermission.
type RoleHandler struct {
	roles *biz.RoleService
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles *biz.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// CreateRoleRequest is the request body for creating a role.
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// Create creates a role scoped to the project in the path.
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	role := model.NewProjectRole(req.Name, req.Description, c.Param("id"))
	if err := h.roles.Create(c.Request.Context(), role, req.Permissions); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, role)
}

// List lists the roles assignable within the project.
func (h *RoleHandler) List(c *gin.Context) {
	list, err := h.roles.ListVisible(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// Get retrieves a role with its grants.
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roles.Get(c.Request.Context(), c.Param("role"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, role)
}

// UpdateRoleRequest is the request body for updating a role. Omitted
// fields keep their current value; an omitted permissions list keeps
// the grants, an empty one clears them.
type UpdateRoleRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
}

// Update changes a role's fields and, if given, replaces its grants.
func (h *RoleHandler) Update(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	role, err := h.roles.Update(c.Request.Context(), c.Param("role"), req.Name, req.Description, req.Permissions)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, role)
}

// Delete removes a role.
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.roles.Delete(c.Request.Context(), c.Param("role")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Catalog lists the immutable permission catalog.
func (h *RoleHandler) Catalog(c *gin.Context) {
	list, err := h.roles.Catalog(c.Request.Context())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}
