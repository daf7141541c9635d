package response

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
	appCtx "github.com/baechuer/real-time-ressys/services/account-service/internal/pkg/context"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    string            `json:"detail,omitempty"`
}

// ErrorWriter matches the middleware/handler error hook.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// WriteError converts a domain error into a JSON error response.
// Non-domain errors become 500 internal_error without leaking details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err, false)
}

// NewErrorWriter returns WriteError, or a variant that adds the underlying
// cause as "detail" when withDetail is set (dev only).
func NewErrorWriter(withDetail bool) ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, err, withDetail)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, withDetail bool) {
	status := http.StatusInternalServerError
	payload := ErrorPayload{
		Code:      "internal_error",
		Message:   "internal error",
		RequestID: appCtx.GetRequestID(r.Context()),
	}

	de, ok := domain.As(err)
	if ok {
		status = statusFromKind(de.Kind)
		payload.Code = de.Code
		payload.Message = de.Message
		payload.Meta = de.Meta
	}

	if status >= http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request_failed")
		if withDetail && err != nil {
			payload.Detail = detail(de, err)
		}
	}

	WriteJSON(w, status, ErrorBody{Error: payload})
}

func detail(de *domain.Error, err error) string {
	if de != nil && de.Cause != nil {
		return de.Cause.Error()
	}
	return err.Error()
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
