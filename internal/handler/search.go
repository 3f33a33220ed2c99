package handler

import (
	"log/slog"
	"net/http"

	models "lexlib/internal/domain/models/library"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// SearchHandler handles material search requests
type SearchHandler struct {
	searchService librarySvc.SearchService
	logger        *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService librarySvc.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// Search runs a full-text search over published materials
// GET /api/search?q=&document_id=&limit=&offset=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	documentID, err := queryUUID(r, "document_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := httputil.QueryInt(r, "limit", models.DefaultSearchLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", models.DefaultSearchOffset)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := &models.SearchOptions{
		Query:         r.URL.Query().Get("q"),
		Limit:         limit,
		Offset:        offset,
		PublishedOnly: true,
	}
	if documentID != nil {
		opts.DocumentID = *documentID
	}

	results, err := h.searchService.Search(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}
