package handler

// Response helpers. Every handler answers through writeJSON and writeError so
// that successes and failures have one shape each:
//
//	{"status_code": 404, "detail": "Not found."}
//	{"status_code": 400, "detail": "Invalid input.", "errors": {"age": ["..."]}}

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/model"
	"github.com/sakif/softdesk/internal/repository"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

const msgInternal = "A server error occurred."

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int                 `json:"status_code"`
	Detail     string              `json:"detail"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// writeJSON sends data with the given status. Headers must be set before the
// first write, so the status goes out before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are gone already; all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps the error taxonomy onto HTTP. A uniqueness conflict is a
// client input problem, so it shares 400 with validation errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError sends err in the API error shape. Errors outside the taxonomy
// become a generic 500; their text may hold SQL or paths and is only logged.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Detail:     msgInternal,
		})
		return
	}

	status := statusFor(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Detail:     appErr.Message,
		Errors:     appErr.FieldErrors(),
	})
}

// decodeJSON reads the request body into dst. Malformed JSON is a 400; a
// value of the wrong JSON type is reported against its field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
		appErr    *apperror.AppError
	)
	switch {
	case errors.Is(err, io.EOF):
		return apperror.BadRequest("JSON parse error: request body is empty.")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.BadRequest("JSON parse error: malformed request body.")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return apperror.ValidationFailed(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s.", typeErr.Type))
	case errors.As(err, &maxErr):
		return apperror.BadRequest(fmt.Sprintf("Request body must not exceed %d bytes.", maxErr.Limit))
	case errors.As(err, &appErr):
		return appErr
	}
	return apperror.BadRequest("JSON parse error: " + err.Error())
}

// listOptions reads ?limit= and ?offset=. Absent values fall back to the
// repository defaults.
func listOptions(r *http.Request) (repository.ListOptions, error) {
	var opts repository.ListOptions
	q := r.URL.Query()

	fields := map[string][]string{}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields["limit"] = []string{"A positive integer is required."}
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["offset"] = []string{"A non-negative integer is required."}
		}
		opts.Offset = n
	}
	if len(fields) > 0 {
		return opts, apperror.Invalid(fields)
	}
	return opts, nil
}

// actor is the authenticated user, or nil for anonymous requests.
func actor(r *http.Request) *model.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

// HandleNotFound answers unknown routes in the API error shape.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperror.NotFoundMessage(""))
}

// HandleMethodNotAllowed answers known routes hit with the wrong method.
func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		StatusCode: http.StatusMethodNotAllowed,
		Detail:     fmt.Sprintf("Method %q not allowed.", r.Method),
	})
}
