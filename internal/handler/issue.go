package handler

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/softdesk/internal/export"
	"github.com/sakif/softdesk/internal/service"
)

// IssueHandler serves issues and the spreadsheet export.
type IssueHandler struct {
	issues *service.IssueService
	logger *slog.Logger
}

// NewIssueHandler returns an IssueHandler.
func NewIssueHandler(issues *service.IssueService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{issues: issues, logger: logger}
}

// HandleList handles GET /api/projects/{id}/issues
func (h *IssueHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	issues, err := h.issues.List(r.Context(), actor(r), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

// HandleCreate handles POST /api/projects/{id}/issues
func (h *IssueHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateIssueInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	issue, err := h.issues.Create(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// HandleExport streams every issue of the project as an .xlsx workbook.
// HTTP: GET /api/projects/{id}/issues/export
//
// The workbook is built in memory first so a failure can still be reported
// as JSON instead of a truncated download.
func (h *IssueHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	project, issues, err := h.issues.ListAll(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteIssues(&buf, project, issues); err != nil {
		h.logger.Error("issue export failed",
			slog.String("projectID", project.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, export.Filename(project)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("issue export: client went away", slog.String("error", err.Error()))
	}
}

// HandleGet handles GET /api/issues/{id}
func (h *IssueHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	issue, err := h.issues.Get(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// HandleUpdate handles PATCH /api/issues/{id}
func (h *IssueHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateIssueInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	issue, err := h.issues.Update(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// HandleDelete handles DELETE /api/issues/{id}
func (h *IssueHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.issues.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
