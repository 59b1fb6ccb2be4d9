package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/softdesk/internal/service"
)

// ContributorHandler serves /projects/{projectID}/users.
type ContributorHandler struct {
	contributors *service.ContributorService
	logger       *slog.Logger
}

// NewContributorHandler returns a ContributorHandler.
func NewContributorHandler(contributors *service.ContributorService, logger *slog.Logger) *ContributorHandler {
	return &ContributorHandler{contributors: contributors, logger: logger}
}

// HandleList handles GET /api/projects/{id}/contributors
func (h *ContributorHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := h.contributors.List(r.Context(), actor(r), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/projects/{id}/contributors {"user_id": "..."}
func (h *ContributorHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.AddContributorInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.contributors.Add(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleDelete handles DELETE /api/projects/{id}/contributors/{contributorID}
func (h *ContributorHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.contributors.Remove(r.Context(), actor(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "contributorID"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
