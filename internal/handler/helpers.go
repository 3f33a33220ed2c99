package handler

import (
	"errors"
	"fmt"
	"net/http"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	"lexlib/internal/httputil"

	"github.com/google/uuid"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var transitionErr *domain.TransitionError

	switch {
	case errors.As(err, &transitionErr):
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, transitionErr.Error(), map[string]interface{}{
			"material_id": transitionErr.MaterialID,
			"from":        transitionErr.From,
			"to":          transitionErr.To,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409
// If the error is a ConflictError, it calls fetchFn to retrieve the existing resource
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
		existing, fetchErr := fetchFn(conflictErr.ResourceID)
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}

		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	handleError(w, err)
}

// queryStatus reads the optional ?status= filter
func queryStatus(r *http.Request) (*models.Status, error) {
	raw := httputil.QueryString(r, "status")
	if raw == nil {
		return nil, nil
	}
	status := models.Status(*raw)
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", *raw)
	}
	return &status, nil
}

// queryUUID reads an optional UUID query parameter
func queryUUID(r *http.Request, name string) (*string, error) {
	raw := httputil.QueryString(r, name)
	if raw == nil {
		return nil, nil
	}
	if err := validUUID(*raw); err != nil {
		return nil, fmt.Errorf("%s must be a UUID", name)
	}
	return raw, nil
}

func validUUID(s string) error {
	_, err := uuid.Parse(s)
	return err
}
