// Package api implements the HTTP surface over the scenario engine core.
// It is a thin adapter: every handler delegates to the overlay engine, the
// constraint engine, or the scenario manager and maps their plain
// booleans/counts to HTTP status codes via internal/pkg/errors. The core
// itself never imports this package.
package api

import (
	"github.com/gin-gonic/gin"

	"scenarioplan.dev/engine/internal/engine"
	"scenarioplan.dev/engine/internal/overlay"
	"scenarioplan.dev/engine/internal/scenario"
)

// Server holds the core collaborators the HTTP handlers call into.
// Manual DI, no framework — ServerDeps is built once in the composition
// root and passed to NewServer.
type Server struct {
	overlay   *overlay.Engine
	engine    *engine.Engine
	scenarios *scenario.Manager
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Overlay   *overlay.Engine
	Engine    *engine.Engine
	Scenarios *scenario.Manager
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		overlay:   deps.Overlay,
		engine:    deps.Engine,
		scenarios: deps.Scenarios,
	}
}

// RegisterRoutes mounts every route in the §8 HTTP mapping under group.
func (s *Server) RegisterRoutes(group gin.IRouter) {
	group.GET("/health/live", s.GetLiveness)

	group.GET("/features", s.ListFeatures)
	group.GET("/features/:id", s.GetFeature)
	group.POST("/features/dates", s.UpdateFeatureDates)
	group.PATCH("/features/:id/field", s.UpdateFeatureField)
	group.POST("/features/:id/revert", s.RevertFeature)

	group.POST("/scenarios", s.CloneScenario)
	group.POST("/scenarios/:id/activate", s.ActivateScenario)
	group.PATCH("/scenarios/:id", s.RenameScenario)
	group.DELETE("/scenarios/:id", s.DeleteScenario)
}
