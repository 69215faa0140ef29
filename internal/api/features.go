package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"scenarioplan.dev/engine/internal/domain"
	"scenarioplan.dev/engine/internal/engine"
	apperrors "scenarioplan.dev/engine/internal/pkg/errors"
)

// ListFeatures handles GET /features — the effective view of every
// baseline feature merged against the active scenario.
func (s *Server) ListFeatures(c *gin.Context) {
	c.JSON(http.StatusOK, s.overlay.GetEffectiveFeatures())
}

// GetFeature handles GET /features/:id.
func (s *Server) GetFeature(c *gin.Context) {
	id := c.Param("id")
	feature, ok := s.overlay.GetEffectiveFeatureById(id)
	if !ok {
		_ = c.Error(apperrors.ErrFeatureNotFoundf(id))
		return
	}
	c.JSON(http.StatusOK, feature)
}

// dateUpdateRequest is one requested feature date change in a batch.
type dateUpdateRequest struct {
	ID           string `json:"id" binding:"required"`
	Start        string `json:"start" binding:"required"`
	End          string `json:"end" binding:"required"`
	FromEpicMove bool   `json:"fromEpicMove"`
}

// updateDatesRequest is the POST /features/dates request body.
type updateDatesRequest struct {
	Updates []dateUpdateRequest `json:"updates" binding:"required,min=1"`
}

// UpdateFeatureDates handles POST /features/dates — batched optimistic
// date updates under epic/child containment (engine.Engine.UpdateFeatureDates).
func (s *Server) UpdateFeatureDates(c *gin.Context) {
	var req updateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("INVALID_BODY", err.Error()))
		return
	}

	updates := make([]engine.Update, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = engine.Update{ID: u.ID, Start: u.Start, End: u.End, FromEpicMove: u.FromEpicMove}
	}

	applied := s.engine.UpdateFeatureDates(updates, nil)
	c.JSON(http.StatusAccepted, gin.H{"applied": applied})
}

// updateFieldRequest is the PATCH /features/:id/field request body.
type updateFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

// UpdateFeatureField handles PATCH /features/:id/field — the single-field
// mutator. value must be a string for start/end, or an array of
// {team, capacity} objects for capacity.
func (s *Server) UpdateFeatureField(c *gin.Context) {
	id := c.Param("id")
	var req updateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("INVALID_BODY", err.Error()))
		return
	}

	value, err := coerceFieldValue(req.Field, req.Value)
	if err != nil {
		_ = c.Error(apperrors.ErrInvalidFieldf(req.Field))
		return
	}

	ok := s.engine.UpdateFeatureField(id, req.Field, value)
	if !ok {
		_ = c.Error(resolveFieldUpdateError(s, id, req.Field))
		return
	}
	c.Status(http.StatusNoContent)
}

// RevertFeature handles POST /features/:id/revert.
func (s *Server) RevertFeature(c *gin.Context) {
	id := c.Param("id")
	if ok := s.engine.RevertFeature(id); !ok {
		_ = c.Error(apperrors.ErrScenarioInactivef())
		return
	}
	c.Status(http.StatusNoContent)
}

// coerceFieldValue converts a decoded JSON value into the type
// engine.UpdateFeatureField expects for field.
func coerceFieldValue(field string, raw any) (any, error) {
	switch field {
	case "start", "end":
		s, ok := raw.(string)
		if !ok {
			return nil, apperrors.ErrInvalidFieldf(field)
		}
		return s, nil
	case "capacity":
		entries, ok := raw.([]any)
		if !ok {
			return nil, apperrors.ErrInvalidFieldf(field)
		}
		out := make([]domain.CapacityEntry, 0, len(entries))
		for _, e := range entries {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, apperrors.ErrInvalidFieldf(field)
			}
			team, _ := m["team"].(string)
			capacity, _ := m["capacity"].(float64)
			out = append(out, domain.CapacityEntry{Team: team, Capacity: capacity})
		}
		return out, nil
	default:
		return nil, apperrors.ErrInvalidFieldf(field)
	}
}

// resolveFieldUpdateError distinguishes an unknown feature from an inactive
// scenario from an invalid field after UpdateFeatureField has already
// declined the write — it returns a plain bool, so the adapter resolves the
// exact cause with one more read against the overlay view.
func resolveFieldUpdateError(s *Server, id, field string) error {
	if field != "start" && field != "end" && field != "capacity" {
		return apperrors.ErrInvalidFieldf(field)
	}
	if _, ok := s.overlay.GetEffectiveFeatureById(id); !ok {
		return apperrors.ErrFeatureNotFoundf(id)
	}
	return apperrors.ErrScenarioInactivef()
}
