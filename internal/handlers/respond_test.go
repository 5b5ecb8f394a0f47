package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rental-backend/internal/apperrors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperrors.NotFound("submission 5 not found"), 404},
		{"invalid state", apperrors.InvalidState("submission 5 already verified"), 409},
		{"validation", apperrors.Validation("admin notes are required"), 400},
		{"unauthorized", apperrors.ErrUnauthorized, 401},
		{"upstream", apperrors.Upstream("sms gateway unreachable"), 502},
		{"unknown", errors.New("pq: connection refused"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.status == 500 {
				// Internal details never leak to the client
				assert.NotContains(t, rec.Body.String(), "pq:")
			} else {
				assert.Contains(t, rec.Body.String(), "error")
			}
		})
	}
}
