package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/internal/insight/biz"
	"github.com/kart-io/insight/internal/pkg/httputils"
	"github.com/kart-io/insight/pkg/auth"
	"github.com/kart-io/insight/pkg/errors"
)

// QueryHandler handles natural language query generation.
type QueryHandler struct {
	queries *biz.QueryService
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queries *biz.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

// GenerateRequest is the request body for query generation.
type GenerateRequest struct {
	ConnectionID string `json:"connection_id" binding:"required"`
	Question     string `json:"question" binding:"required"`
}

// Generate turns the question into SQL against the connection. The
// service enforces the project admin gate.
func (h *QueryHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithCause(err), nil)
		return
	}

	caller := auth.SubjectFromContext(c.Request.Context())
	result, err := h.queries.Generate(c.Request.Context(), caller, req.ConnectionID, req.Question)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, result)
}
