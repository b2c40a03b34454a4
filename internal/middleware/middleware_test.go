package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/edupulse/class-service/internal/identity"
	"github.com/edupulse/class-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers struct {
	users map[string]model.UserView
	err   error
}

func (s stubUsers) ResolveUsername(_ context.Context, username string) (*model.UserView, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[username]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return &u, nil
}

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("gateway-secret"))
	require.NoError(t, err)
	return token
}

// newPrincipalRouter echoes the established principal and forwarded token.
func newPrincipalRouter(users UsernameResolver, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{RequirePrincipal(users, zerolog.Nop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": p.UserID,
			"role":    p.Role,
			"token":   identity.BearerToken(c.Request.Context()),
		})
	})
	r.GET("/me", handlers...)
	return r
}

func TestRequirePrincipal(t *testing.T) {
	users := stubUsers{users: map[string]model.UserView{
		"ada": {ID: 9, Role: model.RoleLecturer},
	}}

	numeric := signToken(t, gatewayClaims{UserID: 9, Role: "ROLE_LECTURER"})
	subject := signToken(t, gatewayClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}, Role: "student"})
	byName := signToken(t, gatewayClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "ada"}})
	unknown := signToken(t, gatewayClaims{Username: "ghost"})

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "user id claim",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+numeric) },
			wantStatus: http.StatusOK,
			wantBody:   fmt.Sprintf(`{"role":"LECTURER","token":%q,"user_id":9}`, numeric),
		},
		{
			name:       "numeric subject",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "bearer "+subject) },
			wantStatus: http.StatusOK,
			wantBody:   fmt.Sprintf(`{"role":"STUDENT","token":%q,"user_id":42}`, subject),
		},
		{
			name:       "username subject",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+byName) },
			wantStatus: http.StatusOK,
			wantBody:   fmt.Sprintf(`{"role":"LECTURER","token":%q,"user_id":9}`, byName),
		},
		{
			name: "query token",
			setup: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("token", numeric)
				r.URL.RawQuery = q.Encode()
			},
			wantStatus: http.StatusOK,
			wantBody:   fmt.Sprintf(`{"role":"LECTURER","token":%q,"user_id":9}`, numeric),
		},
		{
			name: "gateway headers",
			setup: func(r *http.Request) {
				r.Header.Set(HeaderUserID, "7")
				r.Header.Set(HeaderUserRole, "ADMIN")
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"role":"ADMIN","token":"","user_id":7}`,
		},
		{
			name:       "unknown username",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+unknown) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer not.a.jwt") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header id",
			setup:      func(r *http.Request) { r.Header.Set(HeaderUserID, "abc") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "nothing",
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	router := newPrincipalRouter(users)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestRequirePrincipalUpstreamDown(t *testing.T) {
	router := newPrincipalRouter(stubUsers{err: fmt.Errorf("dial: %w", identity.ErrUnavailable)})
	token := signToken(t, gatewayClaims{Username: "ada"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_UNAVAILABLE")
}

func TestRequireRole(t *testing.T) {
	router := newPrincipalRouter(nil, RequireRole(model.RoleLecturer, model.RoleAdmin))

	for role, want := range map[string]int{
		"LECTURER": http.StatusOK,
		"ADMIN":    http.StatusOK,
		"STUDENT":  http.StatusForbidden,
		"":         http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(HeaderUserID, "3")
		req.Header.Set(HeaderUserRole, role)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "role %q", role)
	}
}

func TestRateLimiterPerPrincipal(t *testing.T) {
	rl := NewRateLimiter(t.Context(), 2, time.Minute)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	router := newPrincipalRouter(nil, rl.PerPrincipal())
	hit := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(HeaderUserID, userID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("1"))
	assert.Equal(t, http.StatusOK, hit("1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("1"))
	assert.False(t, rl.AllowPrincipal(model.Principal{UserID: 1, Role: model.RoleLecturer}))

	assert.Equal(t, http.StatusOK, hit("2"))
	assert.True(t, rl.AllowPrincipal(model.Principal{UserID: 2, Role: model.RoleLecturer}))
	assert.Equal(t, http.StatusTooManyRequests, hit("2"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, hit("1"))
}

func TestRateLimiterCleanupKeepsRecentBuckets(t *testing.T) {
	rl := NewRateLimiter(t.Context(), 2, time.Minute)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := start
	rl.now = func() time.Time { return now }

	require.True(t, rl.allow("user:1"))
	now = start.Add(59 * time.Second)
	require.True(t, rl.allow("user:1"))
	require.False(t, rl.allow("user:1"))

	// Last used 2m31s ago: still inside the sweep window.
	now = start.Add(3*time.Minute + 30*time.Second)
	rl.cleanup()
	require.Contains(t, rl.visitors, "user:1")

	now = start.Add(4 * time.Minute)
	rl.cleanup()
	assert.NotContains(t, rl.visitors, "user:1")
}

func TestRateLimiterRefillKeepsRemainder(t *testing.T) {
	rl := NewRateLimiter(t.Context(), 1, time.Minute)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := start
	rl.now = func() time.Time { return now }

	require.True(t, rl.allow("k"))
	now = start.Add(90 * time.Second)
	require.True(t, rl.allow("k"))
	require.False(t, rl.allow("k"))

	// The next token is due one interval after the last refill, not after the last call.
	now = start.Add(2 * time.Minute)
	assert.True(t, rl.allow("k"))
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.Use(NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("attendance ", 512)
	r := gin.New()
	r.Use(BrotliWithConfig(BrotliConfig{SkipSuffixes: []string{"/stream"}}))
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/stream", func(c *gin.Context) { c.String(http.StatusOK, large) })

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := get("/large")
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	body, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, large, string(body))

	w = get("/small")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "ok", w.Body.String())

	w = get("/stream")
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, large, w.Body.String())
}
