package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

// Error codes carried in the "code" field of error bodies.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeNotFound           = "not_found"
	ErrCodeUpload             = "upload_failed"
	ErrCodeInternal           = "internal_error"
)

type errorBody struct {
	Error   string                  `json:"error"`
	Code    string                  `json:"code"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	writeJSON(w, code, errorBody{Error: message, Code: errCode})
}

// writeError maps a service error onto a status code and a client-safe body.
// Anything not recognised is a 500 whose detail only reaches the log.
func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid data", Code: ErrCodeInvalidRequest, Details: verr.Fields})
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, common.ErrorInvalidCredentials.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrSessionRevoked):
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, common.ErrorUpstreamStorage):
		logger.Error(ctx, "storage failure", "error", err)
		writeErr(w, http.StatusBadGateway, ErrCodeUpload, "upload failed")
	default:
		logger.Error(ctx, "request failed", "error", err)
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if verr, ok := validation.FromDecodeError(err); ok {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid data", Code: ErrCodeInvalidRequest, Details: verr.Fields})
			return false
		}
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return false
	}
	return true
}
