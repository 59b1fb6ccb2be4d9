package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/service"
)

// CommentHandler serves comments and renders their Markdown.
type CommentHandler struct {
	comments *service.CommentService
	markdown *Markdown
	logger   *slog.Logger
}

// NewCommentHandler returns a CommentHandler.
func NewCommentHandler(comments *service.CommentService, markdown *Markdown, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, markdown: markdown, logger: logger}
}

// CommentResponse is a comment plus its markdown rendered to HTML.
type CommentResponse struct {
	model.Comment
	DescriptionHTML string `json:"description_html"`
}

func (h *CommentHandler) present(c *model.Comment) CommentResponse {
	html, err := h.markdown.Render(c.Description)
	if err != nil {
		// the raw description is still returned
		h.logger.Warn("rendering comment markdown",
			slog.String("commentID", c.ID),
			slog.String("error", err.Error()),
		)
	}
	return CommentResponse{Comment: *c, DescriptionHTML: html}
}

// HandleList handles GET /api/issues/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	comments, err := h.comments.List(r.Context(), actor(r), chi.URLParam(r, "id"), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, h.present(&comments[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleCreate handles POST /api/issues/{id}/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.comments.Create(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.present(c))
}

// HandleGet handles GET /api/comments/{id}
func (h *CommentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.Get(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(c))
}

// HandleUpdate handles PATCH /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.comments.Update(r.Context(), actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.present(c))
}

// HandleDelete handles DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
