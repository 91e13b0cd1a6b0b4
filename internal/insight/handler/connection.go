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

// ConnectionHandler handles datasource connections.
type ConnectionHandler struct {
	connections *biz.ConnectionService
	authz       *biz.AuthzService
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(connections *biz.ConnectionService, authz *biz.AuthzService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, authz: authz}
}

// CreateConnectionRequest is the request body for registering a
// datasource.
type CreateConnectionRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Driver    string `json:"driver" binding:"required,oneof=mysql postgres postgresql"`
	Host      string `json:"host" binding:"required"`
	Port      int    `json:"port" binding:"required"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Database  string `json:"database" binding:"required"`
	Consented bool   `json:"consented"`
}

// Create registers a connection. Requires ADD_DATASOURCE in the
// project.
func (h *ConnectionHandler) Create(c *gin.Context) {
	var req CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	if err := h.authz.Can(c.Request.Context(), caller, perm.AddDatasource, req.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	conn := &model.Connection{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Driver:    req.Driver,
		Host:      req.Host,
		Port:      req.Port,
		Username:  req.Username,
		Password:  req.Password,
		Database:  req.Database,
		Consented: req.Consented,
	}
	if err := h.connections.Create(c.Request.Context(), conn); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, conn)
}

// List lists the connections of a project. Requires VIEW_DATASOURCE.
func (h *ConnectionHandler) List(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	projectID := c.Query("project")

	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewDatasource, projectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.connections.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// Get retrieves a connection. Requires VIEW_DATASOURCE in its project.
func (h *ConnectionHandler) Get(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())

	conn, err := h.connections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewDatasource, conn.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, conn)
}

// UpdateConnectionRequest is the request body for updating a
// connection.
type UpdateConnectionRequest struct {
	Name      string `json:"name" binding:"required"`
	Driver    string `json:"driver" binding:"required,oneof=mysql postgres postgresql"`
	Host      string `json:"host" binding:"required"`
	Port      int    `json:"port" binding:"required"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Database  string `json:"database" binding:"required"`
	Consented bool   `json:"consented"`
}

// Update updates a connection. Requires EDIT_DATASOURCE.
func (h *ConnectionHandler) Update(c *gin.Context) {
	var req UpdateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	current, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.EditDatasource, current.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	conn := &model.Connection{
		ID:        id,
		Name:      req.Name,
		Driver:    req.Driver,
		Host:      req.Host,
		Port:      req.Port,
		Username:  req.Username,
		Password:  req.Password,
		Database:  req.Database,
		Consented: req.Consented,
	}
	if err := h.connections.Update(c.Request.Context(), conn); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, conn)
}

// Delete removes a connection. Requires DELETE_DATASOURCE.
func (h *ConnectionHandler) Delete(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.DeleteDatasource, conn.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.connections.Delete(c.Request.Context(), id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// Tables lists the probed tables visible to the caller, with the
// caller's role bans applied.
func (h *ConnectionHandler) Tables(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	tables, err := h.connections.VisibleTables(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, tables)
}

// Refresh re-probes the schema. Requires EDIT_DATASOURCE.
func (h *ConnectionHandler) Refresh(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.EditDatasource, conn.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	tables, err := h.connections.Refresh(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, tables)
}

// SetTableBansRequest is the request body for banning tables.
type SetTableBansRequest struct {
	RoleID string   `json:"role_id" binding:"required"`
	Tables []string `json:"tables"`
}

// SetTableBans replaces the banned tables of a role on the connection.
// Requires EDIT_DATASOURCE.
func (h *ConnectionHandler) SetTableBans(c *gin.Context) {
	var req SetTableBansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.EditDatasource, conn.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.connections.SetTableBans(c.Request.Context(), req.RoleID, id, req.Tables); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// RelateRequest is the request body for relating two connections.
type RelateRequest struct {
	RelatedID string `json:"related_id" binding:"required"`
}

// Relate records that two connections expose related data. Requires
// EDIT_DATASOURCE.
func (h *ConnectionHandler) Relate(c *gin.Context) {
	var req RelateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.EditDatasource, conn.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	if err := h.connections.Relate(c.Request.Context(), id, req.RelatedID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, nil)
}

// ListRelated lists the connections related to this one. Requires
// VIEW_DATASOURCE.
func (h *ConnectionHandler) ListRelated(c *gin.Context) {
	caller := auth.SubjectFromContext(c.Request.Context())
	id := c.Param("id")

	conn, err := h.connections.Get(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	if err := h.authz.Can(c.Request.Context(), caller, perm.ViewDatasource, conn.ProjectID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	list, err := h.connections.ListRelated(c.Request.Context(), id)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}
