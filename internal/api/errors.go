package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookbazaar/bookbazaar-server/internal/errors"
	"github.com/bookbazaar/bookbazaar-server/internal/http/response"
	"github.com/bookbazaar/bookbazaar-server/internal/i18n"
	"github.com/bookbazaar/bookbazaar-server/internal/store"
)

// APIError is the JSON failure body. It implements huma.StatusError.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Status  string            `json:"status" doc:"Always \"error\"" example:"error"`
	Code    string            `json:"code" doc:"Machine-readable error code"`
	Message string            `json:"message" doc:"Human-readable error message"`
	Fields  map[string]string `json:"fields,omitempty" doc:"Per-field validation messages"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler makes huma report domain errors in the APIError
// shape. Messages are left untranslated; handlers that know the request
// language use apiError instead.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Status:  "error",
					Code:    string(domainErr.Code),
					Message: domainerrors.Message(err),
					Fields:  domainerrors.FieldErrors(err),
				}
			}

			if errors.Is(err, store.ErrNotFound) {
				return &APIError{
					status:  http.StatusNotFound,
					Status:  "error",
					Code:    string(domainerrors.CodeNotFound),
					Message: err.Error(),
				}
			}
		}

		// Huma's own request validation lands here.
		fields := make(map[string]string)
		for _, err := range errs {
			var detail *huma.ErrorDetail
			if errors.As(err, &detail) && detail.Location != "" {
				fields[detail.Location] = detail.Message
			}
		}
		if len(fields) == 0 {
			fields = nil
		}

		return &APIError{
			status:  status,
			Status:  "error",
			Code:    statusToCode(status),
			Message: message,
			Fields:  fields,
		}
	}
}

// apiError converts a service error into a localized APIError. Internal
// errors are logged and their cause is not exposed.
func (s *Server) apiError(ctx context.Context, err error) error {
	lang := i18n.FromContext(ctx)
	code := domainerrors.CodeOf(err)

	message := domainerrors.Message(err)
	if code == domainerrors.CodeInternal {
		s.logger.Error("api request failed", "error", err)
		message = i18n.MsgInternal
	}

	var fields map[string]string
	if raw := domainerrors.FieldErrors(err); raw != nil {
		fields = make(map[string]string, len(raw))
		for k, v := range raw {
			fields[k] = i18n.T(lang, v)
		}
	}

	return &APIError{
		status:  code.HTTPStatus(),
		Status:  "error",
		Code:    string(code),
		Message: i18n.T(lang, message),
		Fields:  fields,
	}
}

// wantsJSON reports whether r came from an API client rather than a browser
// page, so errors outside huma still answer in JSON.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// writeJSONError writes err in the APIError shape for plain chi handlers.
func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	lang := languageOf(r)
	status, body := response.FromError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Message = i18n.MsgInternal
	}

	body.Message = i18n.T(lang, body.Message)
	for field, msg := range body.Fields {
		body.Fields[field] = i18n.T(lang, msg)
	}
	response.JSON(w, status, body, s.logger)
}

// statusToCode maps HTTP status codes to domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
