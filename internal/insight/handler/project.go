package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/model"
	"github.com/kart-io/insight/internal/perm"
	"github.com/kart-io/insight/internal/pkg/httputils"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
)

// ProjectHandler handles projects and their members.
type ProjectHandler struct {
	projects    *biz.ProjectService
	memberships *biz.MembershipService
	authz       *biz.AuthzService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *biz.ProjectService, memberships *biz.MembershipService, authz *biz.AuthzService) *ProjectHandler {
	return &ProjectHandler{projects: projects, memberships: memberships, authz: authz}
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create creates a project. CREATE_PROJECT is project-independent: any
// role the caller holds anywhere may carry it.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.CreateProject, ""); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	project := &model.Project{Name: req.Name, Description: req.Description}
	if err := h.projects.Create(c.Request.Context(), project, caller); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, project)
}

// List lists the projects visible to the caller.
func (h *ProjectHandler) List(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	list, err := h.projects.ListVisible(c.Request.Context(), caller)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// Get retrieves a project the caller belongs to.
func (h *ProjectHandler) Get(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	projectID := c.Param("id")

	if err := h.requireMember(c, caller, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, project)
}

// Update updates a project. The router requires EDIT_PROJECT within it.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	project := &model.Project{ID: c.Param("id"), Name: req.Name, Description: req.Description}
	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, project)
}

// Delete removes a project. DELETE_PROJECT is project-independent.
func (h *ProjectHandler) Delete(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.DeleteProject, ""); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// AddMemberRequest is the request body for enrolling a member.
type AddMemberRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	RoleID  string `json:"role_id" binding:"required"`
	IsOwner bool   `json:"is_owner"`
}

// AddMember enrolls a user in the project. The router requires
// EDIT_PROJECT.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	m, err := h.memberships.Add(c.Request.Context(), req.UserID, c.Param("id"), req.RoleID, req.IsOwner)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, m)
}

// SetMemberRoleRequest is the request body for changing a member role.
type SetMemberRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

// SetMemberRole changes the role a member holds. The router requires
// EDIT_PROJECT.
func (h *ProjectHandler) SetMemberRole(c *gin.Context) {
	var req SetMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	m, err := h.memberships.SetRole(c.Request.Context(), c.Param("user"), c.Param("id"), req.RoleID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, m)
}

// RemoveMember drops a user from the project. The router requires
// EDIT_PROJECT.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	if err := h.memberships.Remove(c.Request.Context(), c.Param("user"), c.Param("id")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ListMembers lists the members of the project.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	projectID := c.Param("id")

	if err := h.requireMember(c, caller, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.memberships.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// ListOwners lists the owner members of the project.
func (h *ProjectHandler) ListOwners(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	projectID := c.Param("id")

	if err := h.requireMember(c, caller, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.memberships.ListOwners(c.Request.Context(), projectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// requireMember denies unless the project is visible to the caller,
// meaning they are a member or a super user.
func (h *ProjectHandler) requireMember(c *gin.Context, caller, projectID string) error {
	if _, err := h.projects.Get(c.Request.Context(), projectID); err != nil {
		return err
	}

	visible, err := h.projects.ListVisible(c.Request.Context(), caller)
	if err != nil {
		return err
	}
	for _, p := range visible {
		if p.ID == projectID {
			return nil
		}
	}
	return errors.ErrNoProjectAccess
}
