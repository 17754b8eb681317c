package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-core/internal/model"
	"go-auth-core/pkg/apierror"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantAuth   bool
	}{
		{name: "validation", err: apierror.New("VALIDATION_ERROR", "bad", "email", http.StatusBadRequest), wantStatus: 400, wantCode: "VALIDATION_ERROR"},
		{name: "duplicate username", err: model.ErrDuplicateUsername, wantStatus: 400, wantCode: "DUPLICATE_USERNAME"},
		{name: "duplicate email", err: fmt.Errorf("insert: %w", model.ErrDuplicateEmail), wantStatus: 400, wantCode: "DUPLICATE_EMAIL"},
		{name: "invalid credentials", err: model.ErrInvalidCredentials, wantStatus: 401, wantCode: "INVALID_CREDENTIALS", wantAuth: true},
		{name: "inactive", err: model.ErrInactiveAccount, wantStatus: 403, wantCode: "INACTIVE_ACCOUNT"},
		{name: "unauthenticated", err: model.ErrUnauthenticated, wantStatus: 401, wantCode: "UNAUTHENTICATED", wantAuth: true},
		{name: "expired token", err: model.ErrTokenExpired, wantStatus: 401, wantCode: "UNAUTHENTICATED", wantAuth: true},
		{name: "not found", err: model.ErrUserNotFound, wantStatus: 404, wantCode: "NOT_FOUND"},
		{name: "unknown", err: errors.New("connection reset by peer"), wantStatus: 500, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantAuth {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			} else {
				assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
			}

			var body model.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestWriteErrorDoesNotEchoCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed for user app"))

	assert.NotContains(t, rec.Body.String(), "password authentication failed")
}

func TestDecodeJSON(t *testing.T) {
	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"a","password":"b","role":"admin"}`))
		var payload model.LoginRequest
		err := decodeJSON(httptest.NewRecorder(), req, &payload)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("oversized", func(t *testing.T) {
		big := `{"identifier":"` + strings.Repeat("a", maxBodyBytes) + `","password":"b"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
		var payload model.LoginRequest
		require.Error(t, decodeJSON(httptest.NewRecorder(), req, &payload))
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"johndoe","password":"SecurePass123"}`))
		var payload model.LoginRequest
		require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &payload))
		assert.Equal(t, "johndoe", payload.Username)
	})
}
