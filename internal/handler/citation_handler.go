package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mrag/internal/pkg/errcode"
	"github.com/xxxsen/mrag/internal/pkg/response"
	"github.com/xxxsen/mrag/internal/service"
)

type CitationHandler struct {
	citations *service.CitationService
}

func NewCitationHandler(citations *service.CitationService) *CitationHandler {
	return &CitationHandler{citations: citations}
}

func (h *CitationHandler) Report(c *gin.Context) {
	topLimit, _ := strconv.Atoi(c.DefaultQuery("top", "10"))
	recentLimit, _ := strconv.Atoi(c.DefaultQuery("recent", "10"))
	report, err := h.citations.Report(c.Request.Context(), topLimit, recentLimit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}

func (h *CitationHandler) Bibliography(c *gin.Context) {
	format := c.DefaultQuery("format", service.BibliographyFormatBibTeX)
	if format != service.BibliographyFormatBibTeX && format != service.BibliographyFormatAPA {
		response.Error(c, errcode.ErrInvalid, "format must be bibtex or apa")
		return
	}
	bibliography, err := h.citations.Bibliography(c.Request.Context(), format)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"format": format, "bibliography": bibliography})
}
