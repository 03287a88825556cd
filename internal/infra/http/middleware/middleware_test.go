package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/hirelocal/internal/entity"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func freelancerClaims() Claims {
	return Claims{
		Role:             "freelancer",
		ProfileID:        "f1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "hirelocal"},
	}
}

func TestAuthenticator_Parse(t *testing.T) {
	a := NewAuthenticator(testSecret, "hirelocal")

	id, err := a.Parse(signToken(t, testSecret, jwt.SigningMethodHS256, freelancerClaims()))
	require.NoError(t, err)
	assert.Equal(t, entity.Identity{UserID: "user-1", Role: entity.RoleFreelancer, FreelancerProfileID: "f1"}, id)

	expired := freelancerClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	unknownRole := freelancerClaims()
	unknownRole.Role = "root"
	noSubject := freelancerClaims()
	noSubject.Subject = ""
	otherIssuer := freelancerClaims()
	otherIssuer.Issuer = "someone-else"

	bad := map[string]string{
		"wrong secret": signToken(t, "other-secret", jwt.SigningMethodHS256, freelancerClaims()),
		"wrong alg":    signToken(t, testSecret, jwt.SigningMethodHS512, freelancerClaims()),
		"expired":      signToken(t, testSecret, jwt.SigningMethodHS256, expired),
		"unknown role": signToken(t, testSecret, jwt.SigningMethodHS256, unknownRole),
		"no subject":   signToken(t, testSecret, jwt.SigningMethodHS256, noSubject),
		"other issuer": signToken(t, testSecret, jwt.SigningMethodHS256, otherIssuer),
		"garbage":      "not.a.token",
	}
	for name, token := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := a.Parse(token)
			assert.Error(t, err)
		})
	}
}

func TestAuthenticator_Middleware(t *testing.T) {
	a := NewAuthenticator(testSecret, "")
	token := signToken(t, testSecret, jwt.SigningMethodHS256, freelancerClaims())

	var got entity.Identity
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", got.UserID)

	req = httptest.NewRequest(http.MethodGet, "/notifications/stream?access_token="+token, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, header := range []string{"", "Bearer nope", "Basic dXNlcjpwYXNz"} {
		req = httptest.NewRequest(http.MethodGet, "/leads", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
	}
}

func TestIdentityFrom_Missing(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/leads", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusCreated, send("1.1.1.1").Code)
	assert.Equal(t, http.StatusCreated, send("1.1.1.1").Code)
	limited := send("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusCreated, send("2.2.2.2").Code)
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(10, 1)
	rl.Allow("a")
	rl.Allow("b")

	assert.Zero(t, rl.Cleanup(time.Now()))
	assert.Equal(t, 2, rl.Cleanup(time.Now().Add(time.Hour)))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 198.51.100.7 , 10.0.0.1")
	assert.Equal(t, "198.51.100.7", ClientIP(req))
}

func TestMetrics_PassesThroughAndFlushes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok, "wrapped writer must keep streaming support")
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/abc", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
