package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mrag/internal/model"
	"github.com/xxxsen/mrag/internal/pkg/errcode"
	"github.com/xxxsen/mrag/internal/pkg/response"
	"github.com/xxxsen/mrag/internal/service"
)

type DocumentHandler struct {
	stats *service.StatsService
}

func NewDocumentHandler(stats *service.StatsService) *DocumentHandler {
	return &DocumentHandler{stats: stats}
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, errcode.ErrInvalid, "id required")
		return
	}
	doc, err := h.stats.GetDocument(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	contentType := c.Query("type")
	switch contentType {
	case "", model.ContentTypePaper, model.ContentTypeVideo, model.ContentTypePodcast:
	default:
		response.Error(c, errcode.ErrInvalid, "unknown content type")
		return
	}
	limit, _ := strconv.ParseUint(c.DefaultQuery("limit", "50"), 10, 32)
	offset, _ := strconv.ParseUint(c.DefaultQuery("offset", "0"), 10, 32)
	docs, err := h.stats.ListDocuments(c.Request.Context(), contentType, uint(limit), uint(offset))
	if err != nil {
		handleError(c, err)
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	response.Success(c, gin.H{"items": docs})
}

func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Collection(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
