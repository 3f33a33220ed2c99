package handler

import (
	"log/slog"
	"net/http"

	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/httputil"
)

// TreeHandler handles HTTP requests for the material tree
type TreeHandler struct {
	treeService librarySvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService librarySvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested material tree of a document
// GET /api/documents/{id}/tree?status=
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	documentID, err := httputil.PathUUID(r, "id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := queryStatus(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tree, err := h.treeService.GetTree(r.Context(), documentID, status)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
