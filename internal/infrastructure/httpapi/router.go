// Package httpapi exposes routing and the intake workflow over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/intakerouter/pkg/application"
	"github.com/gin-gonic/gin"
)

// Services are the application services the API serves. Intakes may be nil
// when no workspace is available; only stateless routing is served then.
type Services struct {
	Intakes *application.IntakeService
	Routing *application.RoutingService
	Policy  *application.PolicyService
}

// NewRouter builds the gin engine with middleware and routes registered.
func NewRouter(svc Services, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestID(), logging(logger), recovery(logger))

	h := &handler{svc: svc}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	api.POST("/route", h.route)
	api.GET("/policy", h.policy)

	if svc.Intakes != nil {
		api.GET("/intakes", h.listIntakes)
		api.POST("/intakes", h.createIntake)
		api.GET("/intakes/:id", h.getIntake)
		api.PUT("/intakes/:id/spec", h.saveSpec)
		api.POST("/intakes/:id/route", h.routeIntake)
		api.GET("/intakes/:id/routing", h.getRouting)
		api.GET("/intakes/:id/routing/history", h.routingHistory)
		api.POST("/intakes/:id/transitions", h.transition)
		api.POST("/intakes/:id/approvals", h.recordDecision)
		api.GET("/queue", h.queue)
		api.PUT("/policy", h.updatePolicy)
	}
	return r
}
