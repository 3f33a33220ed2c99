package handler

import (
	"log/slog"
	"net/http"

	models "lexlib/internal/domain/models/library"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// CatalogueHandler handles catalogue and document type HTTP requests
type CatalogueHandler struct {
	catalogueService librarySvc.CatalogueService
	logger           *slog.Logger
}

// NewCatalogueHandler creates a new catalogue handler
func NewCatalogueHandler(catalogueService librarySvc.CatalogueService, logger *slog.Logger) *CatalogueHandler {
	return &CatalogueHandler{
		catalogueService: catalogueService,
		logger:           logger,
	}
}

// ListCatalogues lists catalogues in display order
// GET /api/catalogues
func (h *CatalogueHandler) ListCatalogues(w http.ResponseWriter, r *http.Request) {
	catalogues, err := h.catalogueService.ListCatalogues(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if catalogues == nil {
		catalogues = []models.Catalogue{}
	}

	httputil.RespondJSON(w, http.StatusOK, catalogues)
}

// CreateCatalogue creates a catalogue
// POST /api/catalogues
func (h *CatalogueHandler) CreateCatalogue(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.CreateCatalogueRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	catalogue, err := h.catalogueService.CreateCatalogue(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*models.Catalogue, error) {
			return h.catalogueService.GetCatalogue(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, catalogue)
}

// GetCatalogue retrieves a catalogue
// GET /api/catalogues/{id}
func (h *CatalogueHandler) GetCatalogue(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	catalogue, err := h.catalogueService.GetCatalogue(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, catalogue)
}

// UpdateCatalogue updates a catalogue
// PATCH /api/catalogues/{id}
func (h *CatalogueHandler) UpdateCatalogue(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req librarySvc.UpdateCatalogueRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	catalogue, err := h.catalogueService.UpdateCatalogue(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, catalogue)
}

// DeleteCatalogue deletes a catalogue; its documents are kept uncatalogued
// DELETE /api/catalogues/{id}
func (h *CatalogueHandler) DeleteCatalogue(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalogueService.DeleteCatalogue(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ListDocumentTypes lists document types
// GET /api/document-types
func (h *CatalogueHandler) ListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.catalogueService.ListDocumentTypes(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	if types == nil {
		types = []models.DocumentType{}
	}

	httputil.RespondJSON(w, http.StatusOK, types)
}

// CreateDocumentType creates a document type
// POST /api/document-types
func (h *CatalogueHandler) CreateDocumentType(w http.ResponseWriter, r *http.Request) {
	var req librarySvc.CreateDocumentTypeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	docType, err := h.catalogueService.CreateDocumentType(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, docType)
}

// DeleteDocumentType deletes a document type that no document uses
// DELETE /api/document-types/{id}
func (h *CatalogueHandler) DeleteDocumentType(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalogueService.DeleteDocumentType(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
