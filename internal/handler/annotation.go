package handler

import (
	"log/slog"
	"net/http"

	models "lexlib/internal/domain/models/library"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// AnnotationHandler handles reader bookmarks and notes
type AnnotationHandler struct {
	annotationService librarySvc.AnnotationService
	logger            *slog.Logger
}

// NewAnnotationHandler creates a new annotation handler
func NewAnnotationHandler(annotationService librarySvc.AnnotationService, logger *slog.Logger) *AnnotationHandler {
	return &AnnotationHandler{
		annotationService: annotationService,
		logger:            logger,
	}
}

// ListAnnotations lists the caller's annotations
// GET /api/annotations?document_id=
func (h *AnnotationHandler) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	documentID, err := queryUUID(r, "document_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	annotations, err := h.annotationService.ListAnnotations(r.Context(), httputil.GetUserID(r), documentID)
	if err != nil {
		handleError(w, err)
		return
	}
	if annotations == nil {
		annotations = []models.Annotation{}
	}

	httputil.RespondJSON(w, http.StatusOK, annotations)
}

// CreateAnnotation bookmarks or annotates a material
// POST /api/annotations
func (h *AnnotationHandler) CreateAnnotation(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.CreateAnnotationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)

	annotation, err := h.annotationService.CreateAnnotation(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, annotation)
}

// UpdateAnnotation edits a note
// PATCH /api/annotations/{id}
func (h *AnnotationHandler) UpdateAnnotation(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.UpdateAnnotationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	annotation, err := h.annotationService.UpdateAnnotation(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, annotation)
}

// DeleteAnnotation deletes one of the caller's annotations
// DELETE /api/annotations/{id}
func (h *AnnotationHandler) DeleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.annotationService.DeleteAnnotation(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
