package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/mrag/internal/middleware"
)

type RouterDeps struct {
	Queries        *QueryHandler
	Citations      *CitationHandler
	Documents      *DocumentHandler
	Export         *ExportHandler
	QueryRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	queryGroup := api.Group("")
	queryGroup.Use(middleware.RateLimit(deps.QueryRateLimit))
	queryGroup.POST("/research/query", deps.Queries.Query)

	api.GET("/citations/report", deps.Citations.Report)
	api.GET("/citations/bibliography", deps.Citations.Bibliography)

	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/stats", deps.Documents.Stats)
	api.GET("/documents/:id", deps.Documents.Get)

	api.GET("/sessions/:id/export", deps.Export.Export)
}
