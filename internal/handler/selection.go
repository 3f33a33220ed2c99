package handler

import (
	"log/slog"
	"net/http"

	models "lexlib/internal/domain/models/library"
	"lexlib/internal/domain/repositories"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// SelectionHandler handles the admin table selection used for bulk status changes
type SelectionHandler struct {
	selectionService librarySvc.SelectionService
	logger           *slog.Logger
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(selectionService librarySvc.SelectionService, logger *slog.Logger) *SelectionHandler {
	return &SelectionHandler{
		selectionService: selectionService,
		logger:           logger,
	}
}

// selectionKey builds the key from the path, the auth context and a status
func selectionKey(r *http.Request, status models.Status) (repositories.SelectionKey, error) {
	documentID, err := httputil.PathUUID(r, "id")
	if err != nil {
		return repositories.SelectionKey{}, err
	}
	return repositories.SelectionKey{
		UserID:     httputil.GetUserID(r),
		DocumentID: documentID,
		Status:     status,
	}, nil
}

// statusFromQuery reads the required ?status= of selection reads and clears
func statusFromQuery(w http.ResponseWriter, r *http.Request) (models.Status, bool) {
	status, err := queryStatus(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	if status == nil {
		httputil.RespondError(w, http.StatusBadRequest, "status is required")
		return "", false
	}
	return *status, true
}

// GetSelection returns the stored selection
// GET /api/documents/{id}/selection?status=
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFromQuery(w, r)
	if !ok {
		return
	}
	key, err := selectionKey(r, status)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.selectionService.GetSelection(r.Context(), key)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// Toggle flips one material in the selection with cascade
// POST /api/documents/{id}/selection/toggle
func (h *SelectionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.ToggleSelectionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := selectionKey(r, req.Status)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.selectionService.Toggle(r.Context(), key, req.MaterialID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// ClearSelection empties the stored selection
// DELETE /api/documents/{id}/selection?status=
func (h *SelectionHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	status, ok := statusFromQuery(w, r)
	if !ok {
		return
	}
	key, err := selectionKey(r, status)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.selectionService.ClearSelection(r.Context(), key); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ApplyStatus moves every selected material to target_status and clears the selection
// POST /api/documents/{id}/selection/status
func (h *SelectionHandler) ApplyStatus(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.ApplySelectionStatusRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := selectionKey(r, req.Status)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	materials, err := h.selectionService.ApplyStatus(r.Context(), key, req.TargetStatus)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, materials)
}
