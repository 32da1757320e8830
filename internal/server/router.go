// Package server exposes the session core over a thin administrative HTTP
// API consumed by the dashboard front end.
package server

import (
	"github.com/gin-gonic/gin"

	healthhandler "hr-admin-platform/backend/internal/health/handler"
)

// NewRouter builds the gin engine with all admin API routes.
// health may be nil; the probe routes are then omitted.
func NewRouter(h *Handlers, health *healthhandler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if health != nil {
		r.GET("/healthz", health.Live)
		r.GET("/readyz", health.Ready)
	}

	api := r.Group("/api", Identity())
	{
		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions", h.ListMySessions)
		api.POST("/sessions/:id/terminate", h.TerminateSession)
		api.GET("/compliance", h.GetCompliance)
		api.POST("/audit", h.LogAction)
	}

	admin := api.Group("/admin", RequireSystemAdmin())
	{
		admin.GET("/sessions", h.ListSessions)
		admin.POST("/sessions/cleanup", h.CleanupSessions)
		admin.GET("/statistics", h.GetStatistics)
		admin.GET("/audit", h.ListAuditLog)
		admin.GET("/settings", h.ListSettings)
		admin.PUT("/settings/:id", h.UpdateSetting)
	}

	return r
}
