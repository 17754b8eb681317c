//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-core/internal/config"
	"go-auth-core/internal/database"
	"go-auth-core/internal/handler"
	"go-auth-core/internal/middleware"
	"go-auth-core/internal/repository"
	"go-auth-core/internal/router"
	"go-auth-core/internal/security"
	"go-auth-core/internal/service"
)

const testSecret = "integration-secret-0123456789abcdef"

// newServer runs the full stack against the test database. The users table is
// emptied before each test.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	if databaseURL == "" {
		t.Skip("no test database available")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, "TRUNCATE users RESTART IDENTITY")
	require.NoError(t, err)

	sessions, err := security.NewSessionCodec(testSecret, 24*time.Hour)
	require.NoError(t, err)
	resets, err := security.NewResetCodec(testSecret, time.Hour)
	require.NoError(t, err)

	repo := repository.NewUserRepository(db.Pool, repository.WithQueryTimeout(5*time.Second))
	authService, err := service.NewAuthService(repo, security.NewHasher(bcrypt.MinCost), sessions, resets)
	require.NoError(t, err)

	cfg := &config.Config{
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		RequestTimeout:   10 * time.Second,
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Docs:   handler.NewDocsHandler(),
		Health: handler.NewHealthHandler(db),
	}))
	t.Cleanup(server.Close)

	return server
}

func postJSON(t *testing.T, url string, payload any, accessToken string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return doRequest(t, req)
}

func doAuthRequest(t *testing.T, method string, url string, accessToken string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return doRequest(t, req)
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeData(t *testing.T, resp *http.Response, dst any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}
