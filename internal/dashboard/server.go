// Package dashboard is the read-only reporting surface over the run files:
// it lists runs, searches rows in memory and renders the chart page. It
// never triggers scrapes and never mutates run files.
package dashboard

import (
	"github.com/gin-gonic/gin"

	"go-scraper/internal/storage"
)

// NewRouter wires the dashboard routes over store.
func NewRouter(store *storage.Store) *gin.Engine {
	h := &handlers{store: store}

	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/runs", h.listRuns)
		api.GET("/runs/:name", h.viewRun)
		api.GET("/search", h.search)
		api.GET("/stats", h.stats)
		api.POST("/combine", h.combine)
	}
	r.GET("/charts", h.charts)
	r.GET("/report", h.report)

	return r
}
