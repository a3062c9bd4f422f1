package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mrag/internal/pkg/errcode"
	"github.com/xxxsen/mrag/internal/pkg/response"
	"github.com/xxxsen/mrag/internal/service"
)

type QueryHandler struct {
	queries *service.QueryService
}

func NewQueryHandler(queries *service.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

type queryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

func (h *QueryHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.SessionID == "" || req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "session_id and query are required")
		return
	}
	result, err := h.queries.Process(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
