package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	models "lexlib/internal/domain/models/library"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService librarySvc.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService librarySvc.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// ListDocuments lists documents, optionally filtered
// GET /api/documents?catalogue_id=&type_id=&published=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var filter models.DocumentFilter
	var err error

	if filter.CatalogueID, err = queryUUID(r, "catalogue_id"); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.DocumentTypeID, err = queryUUID(r, "type_id"); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if raw := httputil.QueryString(r, "published"); raw != nil {
		published, err := strconv.ParseBool(*raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "published must be a boolean")
			return
		}
		filter.Published = &published
	}

	docs, err := h.docService.ListDocuments(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

// CreateDocument creates a new document
// POST /api/documents
// Returns 201 if created, 409 with the existing document if the ref is taken
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.DocumentDetails, error) {
			return h.docService.GetDocumentDetails(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument returns the document with its flat material list
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	details, err := h.docService.GetDocumentDetails(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, details)
}

// UpdateDocument updates a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document and its materials
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
