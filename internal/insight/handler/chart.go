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

// ChartHandler handles charts and chart sharing.
type ChartHandler struct {
	charts *biz.ChartService
	shares *biz.ShareService
	authz  *biz.AuthzService
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(charts *biz.ChartService, shares *biz.ShareService, authz *biz.AuthzService) *ChartHandler {
	return &ChartHandler{charts: charts, shares: shares, authz: authz}
}

// CreateChartRequest is the request body for creating a chart.
type CreateChartRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	ChartType string `json:"chart_type"`
	Query     string `json:"query"`
}

// Create creates a chart. Requires CREATE_CHART in the project.
func (h *ChartHandler) Create(c *gin.Context) {
	var req CreateChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.CreateChart, req.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	chart := &model.Chart{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		ChartType: req.ChartType,
		Query:     req.Query,
	}
	if err := h.charts.Create(c.Request.Context(), chart, caller); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, chart)
}

// List lists the charts of a project the caller can read.
func (h *ChartHandler) List(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	projectID := c.Query("project")

	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewChart, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.charts.ListReadable(c.Request.Context(), projectID, caller)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// Get retrieves a chart the caller holds a read grant on.
func (h *ChartHandler) Get(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	chart, err := h.charts.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewChart, chart.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.CanReadChart(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, chart)
}

// UpdateChartRequest is the request body for updating a chart.
type UpdateChartRequest struct {
	Name      string `json:"name" binding:"required"`
	ChartType string `json:"chart_type"`
	Query     string `json:"query"`
}

// Update updates a chart. Requires a write grant on it.
func (h *ChartHandler) Update(c *gin.Context) {
	var req UpdateChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanWriteChart(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	chart, err := h.charts.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	chart.Name = req.Name
	chart.ChartType = req.ChartType
	chart.Query = req.Query

	if err := h.charts.Update(c.Request.Context(), chart); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, chart)
}

// Delete removes a chart. Requires DELETE_CHART in its project and a
// delete grant on it.
func (h *ChartHandler) Delete(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	chart, err := h.charts.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.DeleteChart, chart.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.CanDeleteChart(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.charts.Delete(c.Request.Context(), id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Share grants a user access to the chart. Requires a write grant.
func (h *ChartHandler) Share(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanWriteChart(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	grant := biz.ShareGrant{CanRead: req.CanRead, CanWrite: req.CanWrite, CanDelete: req.CanDelete}
	if err := h.shares.ShareChart(c.Request.Context(), req.UserID, id, grant); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Revoke removes a user's grant on the chart.
func (h *ChartHandler) Revoke(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanWriteChart(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.shares.RevokeChart(c.Request.Context(), c.Param("user"), id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// SetFavorite toggles the caller's favorite flag on the chart.
func (h *ChartHandler) SetFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.shares.SetChartFavorite(c.Request.Context(), caller, c.Param("id"), req.Favorite); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ListGrants lists the per-user grants on the chart.
func (h *ChartHandler) ListGrants(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")
	if err := h.authz.CanReadChart(c.Request.Context(), caller, id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	grants, err := h.shares.ListChartGrants(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, grants)
}
