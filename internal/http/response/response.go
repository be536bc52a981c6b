// Package response writes the JSON bodies shared by the moderation status
// endpoints and the plain chi handlers: {"status": "success", ...} on
// success and {"status": "error", "code": ..., "message": ...} on failure.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// Status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorBody is the failure shape.
type ErrorBody struct {
	Status  string            `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// Success writes 200 with v.
func Success(w http.ResponseWriter, v any, logger *slog.Logger) {
	JSON(w, http.StatusOK, v, logger)
}

// Error writes a failure body.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, status, ErrorBody{Status: StatusError, Code: string(code), Message: message}, logger)
}

// NotFound writes a 404 failure.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// Unauthorized writes a 401 failure.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, domainerrors.CodeUnauthorized, message, logger)
}

// Forbidden writes a 403 failure.
func Forbidden(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusForbidden, domainerrors.CodeForbidden, message, logger)
}

// TooManyRequests writes a 429 failure.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, domainerrors.CodeRateLimited, message, logger)
}

// FromError maps err to a status code and failure body. Domain errors keep
// their code and message; store errors map by HTTP code; anything else is
// an internal error whose message is not exposed.
func FromError(err error) (int, ErrorBody) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.HTTPStatus(), ErrorBody{
			Status:  StatusError,
			Code:    string(domainErr.Code),
			Message: domainerrors.Message(err),
			Fields:  domainerrors.FieldErrors(err),
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code := domainerrors.CodeInternal
		switch storeErr.HTTPCode() {
		case http.StatusNotFound:
			code = domainerrors.CodeNotFound
		case http.StatusConflict:
			code = domainerrors.CodeConflict
		case http.StatusBadRequest:
			code = domainerrors.CodeValidation
		}
		if code != domainerrors.CodeInternal {
			return storeErr.HTTPCode(), ErrorBody{Status: StatusError, Code: string(code), Message: storeErr.Message}
		}
	}

	return http.StatusInternalServerError, ErrorBody{
		Status:  StatusError,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

// HandleError writes the response for err, logging internal errors.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	status, body := FromError(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	JSON(w, status, body, logger)
}
