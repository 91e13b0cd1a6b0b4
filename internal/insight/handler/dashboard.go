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

// DashboardHandler handles dashboards, chart placement and sharing.
type DashboardHandler struct {
	dashboards *biz.DashboardService
	shares     *biz.ShareService
	authz      *biz.AuthzService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboards *biz.DashboardService, shares *biz.ShareService, authz *biz.AuthzService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, shares: shares, authz: authz}
}

// CreateDashboardRequest is the request body for creating a dashboard.
type CreateDashboardRequest struct {
	ProjectID   string `json:"project_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create creates a dashboard. Requires CREATE_DASHBOARD in the project.
func (h *DashboardHandler) Create(c *gin.Context) {
	var req CreateDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.CreateDashboard, req.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	d := &model.Dashboard{ProjectID: req.ProjectID, Name: req.Name, Description: req.Description}
	if err := h.dashboards.Create(c.Request.Context(), d, caller); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, d)
}

// List lists the dashboards of a project the caller can read.
func (h *DashboardHandler) List(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	projectID := c.Query("project")

	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewDashboard, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.dashboards.ListReadable(c.Request.Context(), projectID, caller)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// Get retrieves a dashboard the caller holds a read grant on.
func (h *DashboardHandler) Get(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	d, err := h.dashboards.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewDashboard, d.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.CanReadDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, d)
}

// UpdateDashboardRequest is the request body for updating a dashboard.
type UpdateDashboardRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Update updates a dashboard. Requires EDIT_DASHBOARD in its project
// and a write grant on the dashboard.
func (h *DashboardHandler) Update(c *gin.Context) {
	var req UpdateDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	d, err := h.dashboards.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.EditDashboard, d.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.CanWriteDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	d.Name = req.Name
	d.Description = req.Description
	if err := h.dashboards.Update(c.Request.Context(), d); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, d)
}

// Delete removes a dashboard. Requires DELETE_DASHBOARD in its project
// and a delete grant on the dashboard.
func (h *DashboardHandler) Delete(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	d, err := h.dashboards.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.DeleteDashboard, d.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.CanDeleteDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.dashboards.Delete(c.Request.Context(), id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// AttachChartRequest is the request body for placing a chart.
type AttachChartRequest struct {
	ChartID string `json:"chart_id" binding:"required"`
}

// AttachChart places a chart on the dashboard. Requires a write grant.
func (h *DashboardHandler) AttachChart(c *gin.Context) {
	var req AttachChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanWriteDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.dashboards.AttachChart(c.Request.Context(), id, req.ChartID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// DetachChart removes a chart from the dashboard. Requires a write
// grant.
func (h *DashboardHandler) DetachChart(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanWriteDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.dashboards.DetachChart(c.Request.Context(), id, c.Param("chart")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ListCharts lists the charts placed on the dashboard. Requires a read
// grant.
func (h *DashboardHandler) ListCharts(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanReadDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	charts, err := h.dashboards.ListCharts(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, charts)
}

// ShareRequest is the request body for sharing a resource.
type ShareRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	CanRead   bool   `json:"can_read"`
	CanWrite  bool   `json:"can_write"`
	CanDelete bool   `json:"can_delete"`
}

// Share grants a user access to the dashboard. Requires the
// ADD_USER_DASHBOARD permission in the project and an owner grant.
func (h *DashboardHandler) Share(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	d, err := h.dashboards.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.ShareDashboard, d.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.CanWriteDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	grant := biz.ShareGrant{CanRead: req.CanRead, CanWrite: req.CanWrite, CanDelete: req.CanDelete}
	if err := h.shares.ShareDashboard(c.Request.Context(), req.UserID, id, grant); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Revoke removes a user's grant on the dashboard.
func (h *DashboardHandler) Revoke(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanWriteDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.shares.RevokeDashboard(c.Request.Context(), c.Param("user"), id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ListGrants lists the per-user grants on the dashboard.
func (h *DashboardHandler) ListGrants(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanReadDashboard(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	grants, err := h.shares.ListDashboardGrants(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, grants)
}

// FavoriteRequest is the request body for toggling a favorite.
type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

// SetFavorite toggles the caller's favorite flag on the dashboard.
func (h *DashboardHandler) SetFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.shares.SetDashboardFavorite(c.Request.Context(), caller, c.Param("id"), req.Favorite); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ListFavorites lists the caller's favorite dashboards.
func (h *DashboardHandler) ListFavorites(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	list, err := h.shares.ListFavorites(c.Request.Context(), caller)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}
