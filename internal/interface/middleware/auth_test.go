package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora-app/vendora/pkg/helpers"
)

type fakeSessions map[string]string

func (f fakeSessions) Current(_ context.Context, userID string) (string, error) {
	if userID == "broken" {
		return "", errors.New("redis down")
	}
	return f[userID], nil
}

func newAuthRouter(sessions SessionChecker, jwt *helpers.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(sessions, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	valid, _, err := jwt.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	stale, _, err := jwt.GenerateAccessToken("u1", "old")
	require.NoError(t, err)
	broken, _, err := jwt.GenerateAccessToken("broken", "s1")
	require.NoError(t, err)
	refreshOnly, _, err := jwt.GenerateRefreshToken("u1", "s1")
	require.NoError(t, err)

	sessions := fakeSessions{"u1": "s1"}

	tests := []struct {
		name     string
		sessions SessionChecker
		setup    func(r *http.Request)
		want     int
	}{
		{"no credentials", sessions, func(r *http.Request) {}, http.StatusUnauthorized},
		{"bearer", sessions, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, http.StatusOK},
		{"cookie", sessions, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: valid}) }, http.StatusOK},
		{"garbage token", sessions, func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"refresh token used as access", sessions, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+refreshOnly) }, http.StatusUnauthorized},
		{"rotated session", sessions, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+stale) }, http.StatusUnauthorized},
		{"session lookup fails", sessions, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+broken) }, http.StatusUnauthorized},
		{"no session store", nil, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+stale) }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(tt.sessions, jwt)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			} else {
				assert.Equal(t, "Unauthorized", w.Body.String())
			}
		})
	}
}

func TestRequestID_KeepsValidHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	id := "0b7f3c1e-9a57-4a59-8d0e-3c1b2f6a7d10"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestRestrict_PrivateOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/metrics", Restrict(AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Forwarded-For", "8.8.8.8, 10.0.0.1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimit(nil, Limit{Max: 1, Window: time.Minute, Key: KeyByIP()}), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRealIP_HeaderPriority(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRealIPKey)) })

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Real-IP": "198.51.100.2"}, "198.51.100.1"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.2", "X-Forwarded-For": "198.51.100.3"}, "198.51.100.2"},
		{"first parseable forwarded", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.3, 10.0.0.1"}, "198.51.100.3"},
		{"invalid headers fall back", map[string]string{"CF-Connecting-IP": "nope"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Body.String())
		})
	}
}
