package handler

import (
	"log/slog"
	"net/http"

	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// MaterialHandler handles material HTTP requests, including reordering and
// bulk status transitions
type MaterialHandler struct {
	materialService librarySvc.MaterialService
	logger          *slog.Logger
}

// NewMaterialHandler creates a new material handler
func NewMaterialHandler(materialService librarySvc.MaterialService, logger *slog.Logger) *MaterialHandler {
	return &MaterialHandler{
		materialService: materialService,
		logger:          logger,
	}
}

// CreateMaterial creates a material in a document
// POST /api/documents/{id}/materials
func (h *MaterialHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	documentID, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.CreateMaterialRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = documentID

	material, err := h.materialService.CreateMaterial(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, material)
}

// GetMaterial retrieves a material by ID
// GET /api/materials/{id}
func (h *MaterialHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	material, err := h.materialService.GetMaterial(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, material)
}

// UpdateMaterial edits or moves a material
// PATCH /api/materials/{id}
func (h *MaterialHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.UpdateMaterialRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	material, err := h.materialService.UpdateMaterial(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, material)
}

// DeleteMaterial deletes a material and its descendants
// DELETE /api/materials/{id}
func (h *MaterialHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.materialService.DeleteMaterial(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// RenderMaterial returns the sanitized HTML of an article
// GET /api/materials/{id}/html
func (h *MaterialHandler) RenderMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rendered, err := h.materialService.RenderMaterial(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, rendered)
}

// Reorder applies a drag-and-drop drop event
// POST /api/documents/{id}/reorder
// Returns 200 with {"moved": false} when the drop changes nothing
func (h *MaterialHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	documentID, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.ReorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = documentID

	result, err := h.materialService.Reorder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// UpdatePosition applies a precomputed [old, new] position pair
// PATCH /api/documents/{id}/positions
func (h *MaterialHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	documentID, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.UpdatePositionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.DocumentID = documentID

	result, err := h.materialService.UpdatePosition(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// TransitionStatus moves a batch of materials to a new status
// POST /api/materials/status
func (h *MaterialHandler) TransitionStatus(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.StatusTransitionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	materials, err := h.materialService.TransitionStatus(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, materials)
}
