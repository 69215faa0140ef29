package errors

import "net/http"

// Error code constants for the engine's three failure kinds (spec §7).
// Each constructor below sets the code, a short message naming the
// offending id or field, and the HTTP status the adapter responds with.
const (
	CodeFeatureNotFound  = "FEATURE_NOT_FOUND"
	CodeScenarioInactive = "SCENARIO_INACTIVE"
	CodeInvalidField     = "INVALID_FIELD"
)

// ErrFeatureNotFoundf creates a feature-not-found error.
func ErrFeatureNotFoundf(featureID string) *AppError {
	return &AppError{
		Code:       CodeFeatureNotFound,
		Message:    "feature not found: " + featureID,
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrScenarioInactivef creates a no-active-scenario error.
func ErrScenarioInactivef() *AppError {
	return &AppError{
		Code:       CodeScenarioInactive,
		Message:    "no active non-baseline scenario",
		HTTPStatus: http.StatusConflict,
	}
}

// ErrInvalidFieldf creates an error for an unsupported single-field update target.
func ErrInvalidFieldf(field string) *AppError {
	return &AppError{
		Code:       CodeInvalidField,
		Message:    "field is not updatable: " + field,
		HTTPStatus: http.StatusBadRequest,
	}
}
