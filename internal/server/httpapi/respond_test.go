package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/validation"
)

func TestWriteError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validation.NewError("title", "is required"), http.StatusBadRequest, ErrCodeInvalidRequest},
		{"credentials", fmt.Errorf("login: %w", common.ErrorInvalidCredentials), http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"expired token", common.ErrTokenExpired, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"revoked session", common.ErrSessionRevoked, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"not found", fmt.Errorf("db error: %w", common.ErrorNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"storage", fmt.Errorf("%w: put", common.ErrorUpstreamStorage), http.StatusBadGateway, ErrCodeUpload},
		{"configuration", fmt.Errorf("%w: bad hash", common.ErrorConfiguration), http.StatusInternalServerError, ErrCodeInternal},
		{"unknown", errBoom, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, logging.Nop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, body.Error, "bad hash")
		})
	}
}
