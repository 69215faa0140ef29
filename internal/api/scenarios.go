package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "scenarioplan.dev/engine/internal/pkg/errors"
	"scenarioplan.dev/engine/internal/scenario"
)

// cloneScenarioRequest is the POST /scenarios request body.
type cloneScenarioRequest struct {
	SourceID string `json:"sourceId" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// CloneScenario handles POST /scenarios.
func (s *Server) CloneScenario(c *gin.Context) {
	var req cloneScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("INVALID_BODY", err.Error()))
		return
	}

	sc, ok := s.scenarios.CloneScenario(req.SourceID, req.Name)
	if !ok {
		_ = c.Error(apperrors.NotFound("SCENARIO_NOT_FOUND", "source scenario not found: "+req.SourceID))
		return
	}
	c.JSON(http.StatusCreated, scenarioResponse(sc))
}

// ActivateScenario handles POST /scenarios/:id/activate.
func (s *Server) ActivateScenario(c *gin.Context) {
	id := c.Param("id")
	sc, ok := s.scenarios.ActivateScenario(id)
	if !ok {
		_ = c.Error(apperrors.NotFound("SCENARIO_NOT_FOUND", "scenario not found: "+id))
		return
	}
	c.JSON(http.StatusOK, scenarioResponse(sc))
}

type renameScenarioRequest struct {
	Name string `json:"name" binding:"required"`
}

// RenameScenario handles PATCH /scenarios/:id.
func (s *Server) RenameScenario(c *gin.Context) {
	id := c.Param("id")
	var req renameScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("INVALID_BODY", err.Error()))
		return
	}

	if ok := s.scenarios.RenameScenario(id, req.Name); !ok {
		_ = c.Error(apperrors.NotFound("SCENARIO_NOT_FOUND", "scenario not found or immutable: "+id))
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteScenario handles DELETE /scenarios/:id.
func (s *Server) DeleteScenario(c *gin.Context) {
	id := c.Param("id")
	if ok := s.scenarios.DeleteScenario(id); !ok {
		_ = c.Error(apperrors.Conflict("SCENARIO_NOT_DELETABLE", "scenario not found, immutable, or active: "+id))
		return
	}
	c.Status(http.StatusNoContent)
}

func scenarioResponse(sc *scenario.Scenario) gin.H {
	sc.Lock()
	isChanged := sc.IsChanged
	sc.Unlock()
	return gin.H{
		"id":        sc.ID,
		"name":      sc.Name,
		"isChanged": isChanged,
	}
}
