package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mrag/internal/pkg/errcode"
	"github.com/xxxsen/mrag/internal/pkg/response"
	"github.com/xxxsen/mrag/internal/service"
)

type ExportHandler struct {
	export *service.ExportService
}

func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Export writes the session transcript in the requested format. HTML
// and markdown are returned as raw bodies, not JSON envelopes, so the
// result can be saved or rendered directly.
func (h *ExportHandler) Export(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session id required")
		return
	}
	format := c.DefaultQuery("format", "markdown")
	switch format {
	case "markdown":
		markdown, err := h.export.TranscriptMarkdown(sessionID)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
	case "html":
		html, err := h.export.TranscriptHTML(sessionID)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
	default:
		response.Error(c, errcode.ErrInvalid, "format must be markdown or html")
	}
}
