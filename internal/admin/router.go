// Package admin is the operator-facing HTTP surface: liveness/readiness
// probes plus the row-unlock escape hatch, wired the way the teacher
// wires its job/auth API — a gin.Engine assembled in one NewRouter call
// with request-id middleware on every route and auth on the /admin/rows
// group.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/averyhale/ytprem-scheduler/internal/admin/handler"
	"github.com/averyhale/ytprem-scheduler/internal/admin/middleware"
	"github.com/averyhale/ytprem-scheduler/internal/health"
)

func NewRouter(logger *slog.Logger, checker *health.Checker, rowHandler *handler.RowHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, checker.Liveness(c.Request.Context()))
	})
	r.GET("/readyz", func(c *gin.Context) {
		result := checker.Readiness(c.Request.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, result)
	})

	rows := r.Group("/admin/rows", middleware.Auth(jwtKey))
	rows.POST("/unlock", rowHandler.Unlock)

	return r
}
