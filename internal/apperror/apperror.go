// Package apperror defines the error taxonomy shared by every layer.
//
// Services and repositories return these errors; only the HTTP layer knows how
// they map to status codes (see handler/response.go).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Default messages, used when a call site passes an empty message.
const (
	DefaultForbiddenMessage       = "Forbidden action: you are not allowed to do this."
	DefaultNotFoundMessage        = "Not found."
	DefaultBadRequestMessage      = "Bad request."
	DefaultUnauthenticatedMessage = "Authentication credentials were not provided."
)

// AppError carries a sentinel kind, a message and optional field errors.
type AppError struct {
	Err     error               // sentinel, one of the Err* values above
	Message string              // human-readable detail
	Field   string              // optional: single field causing the error
	Fields  map[string][]string // optional: per-field messages
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldErrors returns every field message carried by the error, merging
// Field/Message into the map when only a single field was reported.
func (e *AppError) FieldErrors() map[string][]string {
	if len(e.Fields) == 0 && e.Field == "" {
		return nil
	}
	out := make(map[string][]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		out[k] = append([]string(nil), v...)
	}
	if e.Field != "" {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// NotFound reports that resource id does not exist.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage returns a NotFound error with a caller-chosen message.
func NotFoundMessage(message string) *AppError {
	if message == "" {
		message = DefaultNotFoundMessage
	}
	return &AppError{Err: ErrNotFound, Message: message}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Invalid reports several field errors at once.
func Invalid(fields map[string][]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "Invalid input.",
		Fields:  fields,
	}
}

// BadRequest is a validation failure that isn't tied to a field, such as a
// malformed body.
func BadRequest(message string) *AppError {
	if message == "" {
		message = DefaultBadRequestMessage
	}
	return &AppError{Err: ErrValidation, Message: message}
}

// Conflict reports a unique value already taken.
func Conflict(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	if message == "" {
		message = DefaultForbiddenMessage
	}
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthenticated(message string) *AppError {
	if message == "" {
		message = DefaultUnauthenticatedMessage
	}
	return &AppError{Err: ErrUnauthenticated, Message: message}
}
