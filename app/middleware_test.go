package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karasuhime/inkwell/internal/userservice"
)

func strptr(s string) *string {
	return &s
}

// newBareApplication builds an application with just enough wiring for
// middleware that touches no backing services.
func newBareApplication(cfg *Config) *application {
	return &application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication(&Config{})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	middleware := app.recoverPanic(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "close", res.Header().Get("Connection"))
}

func TestRateLimit(t *testing.T) {
	app := newBareApplication(&Config{RateLimitRPS: 1, RateLimitBurst: 2})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.rateLimit(handler)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		res := httptest.NewRecorder()

		middleware.ServeHTTP(res, req)
		statuses = append(statuses, res.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)

	// a different client gets its own allowance
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	res := httptest.NewRecorder()

	middleware.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestEnableCORS(t *testing.T) {
	app := newBareApplication(&Config{TrustedOrigins: []string{"http://localhost:3000"}})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.enableCORS(handler)

	tests := []struct {
		name           string
		origin         string
		expectedHeader string
	}{
		{
			name:           "Trusted Origin",
			origin:         "http://localhost:3000",
			expectedHeader: "http://localhost:3000",
		},
		{
			name:           "Untrusted Origin",
			origin:         "http://evil.example.com",
			expectedHeader: "",
		},
		{
			name:           "No Origin",
			origin:         "",
			expectedHeader: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			res := httptest.NewRecorder()

			middleware.ServeHTTP(res, req)

			assert.Equal(t, tt.expectedHeader, res.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, res.Header().Values("Vary"), "Origin")
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	app := newBareApplication(&Config{})

	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "Valid Bearer Header",
			header:   "Bearer ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expected: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		{
			name:     "Missing Scheme",
			header:   "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expected: "",
		},
		{
			name:     "Wrong Scheme",
			header:   "Basic ABCDEFGHIJKLMNOPQRSTUVWXYZ",
			expected: "",
		},
		{
			name:     "Too Many Parts",
			header:   "Bearer ABC DEF",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, app.extractTokenFromHeader(tt.header))
		})
	}
}

func TestRequireAuthUser(t *testing.T) {
	app := newBareApplication(&Config{})

	handler := app.requireAuthUser(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Anonymous User", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = app.contextSetUser(req, &userservice.AnonymousUser)
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code)
	})

	t.Run("Authenticated User", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = app.contextSetUser(req, &userservice.User{ID: 1, Name: "alice"})
		res := httptest.NewRecorder()

		handler.ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	app, _ := newTestApplication(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := app.contextGetUser(r)
		assert.NotNil(t, user)
		w.WriteHeader(http.StatusOK)
	})

	middleware := app.authenticate(handler)

	ts := newTestServer(t, app.routes())

	_, token := registerAndLogin(t, ts, "alice", "alice@example.com", "Test_1234!")

	tests := []struct {
		name           string
		authHeader     *string
		expectedStatus int
	}{
		{
			name:           "No Authentication Header",
			authHeader:     nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed Authentication Header",
			authHeader:     strptr("invalid"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Unknown Token",
			authHeader:     strptr("Bearer ABCDEFGHIJKLMNOPQRSTUVWXYZ"),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Valid Token",
			authHeader:     strptr("Bearer " + token),
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != nil {
				req.Header.Set("Authorization", *tt.authHeader)
			}
			res := httptest.NewRecorder()

			middleware.ServeHTTP(res, req)
			assert.Equal(t, tt.expectedStatus, res.Code)
		})
	}
}
