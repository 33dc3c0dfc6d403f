package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nestaway/internal/config"
	"nestaway/internal/models"
	"nestaway/internal/testutil"
	"nestaway/internal/verification"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv        *Server
	app        *fiber.App
	users      *testutil.UserRepoStub
	properties *testutil.PropertyRepoStub
	codes      *verification.MemoryRegistry
	mail       *testutil.SenderStub
	store      *testutil.StorageStub
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:              "test-secret-key-12345678901234567890",
		SessionTTLHours:        1,
		SessionCookieName:      "token",
		Env:                    "test",
		ImageMaxUploadSizeMB:   5,
		VerificationTTLMinutes: 10,
		StoragePrefix:          "nestaway/properties",
	}
}

type envOption func(*Deps)

func withRedis(rdb *redis.Client) envOption {
	return func(d *Deps) { d.Redis = rdb }
}

func withStore(p Pinger) envOption {
	return func(d *Deps) { d.Store = p }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	env := &testEnv{
		users: testutil.NewUserRepoStub(),
		codes: verification.NewMemoryRegistry(),
		mail:  testutil.NewSenderStub(),
		store: testutil.NewStorageStub(),
	}
	t.Cleanup(env.codes.Stop)
	env.properties = testutil.NewPropertyRepoStub(env.users)

	deps := Deps{
		Users:      env.users,
		Properties: env.properties,
		Codes:      env.codes,
		Mail:       env.mail,
		Storage:    env.store,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := NewServer(testConfig(), deps)
	require.NoError(t, err)
	env.srv = srv
	env.app = srv.NewApp()
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func jsonRequest(method, path string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, body []byte) models.ErrorResponse {
	t.Helper()
	var out models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestNewServerRequiresCollaborators(t *testing.T) {
	_, err := NewServer(testConfig(), Deps{})
	assert.Error(t, err)
}

func TestHealthChecks(t *testing.T) {
	t.Run("liveness", func(t *testing.T) {
		env := newTestEnv(t)
		resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ready with healthy store", func(t *testing.T) {
		env := newTestEnv(t, withStore(pingerFunc(func(context.Context) error { return nil })))
		resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), `"database":"healthy"`)
		assert.Contains(t, string(body), `"redis":"unavailable"`)
	})

	t.Run("not ready when store is down", func(t *testing.T) {
		env := newTestEnv(t, withStore(pingerFunc(func(context.Context) error { return errors.New("down") })))
		resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Contains(t, string(body), `"database":"unhealthy"`)
	})

	t.Run("not ready without a store", func(t *testing.T) {
		env := newTestEnv(t)
		resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name        string
		origin      string
		wantAllowed bool
	}{
		{name: "frontend origin", origin: "http://localhost:5173", wantAllowed: true},
		{name: "unknown origin", origin: "http://evil.example", wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)

			resp, _ := env.do(t, req)
			if tt.wantAllowed {
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)
				assert.Equal(t, tt.origin, resp.Header.Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestSwaggerDocServed(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/properties")
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, decodeError(t, body).Msg)
}
