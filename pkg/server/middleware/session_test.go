package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/ztcore/pkg/identity"
	"github.com/perimetra/ztcore/pkg/model"
)

var sessionKey = []byte("test-session-key")

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sessionKey)
	require.NoError(t, err)
	return token
}

func TestNewSessionAuthenticatorDisabledWithoutKey(t *testing.T) {
	t.Setenv("ZTCORE_SESSION_KEY", "")
	assert.Nil(t, NewSessionAuthenticator())
}

func TestSessionMiddlewareRejections(t *testing.T) {
	auth := NewSessionAuthenticatorWithKey(sessionKey)

	wrongKeyToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
	}).SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "Authorization missing"},
		{"not a bearer token", "Basic abc123", "Malformed authorization header"},
		{"garbage token", "Bearer not.a.jwt", "Invalid session token"},
		{"wrong signing key", "Bearer " + wrongKeyToken, "Invalid session token"},
		{
			"missing subject",
			"Bearer " + signToken(t, jwt.MapClaims{"entity_type": "user"}),
			"Session token missing subject",
		},
		{
			"expired session",
			"Bearer " + signToken(t, jwt.MapClaims{
				"sub": "alice",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			"Invalid session token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			}))

			r := httptest.NewRequest("GET", "/trust/alice", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}

func TestSessionMiddlewareEstablishesIdentity(t *testing.T) {
	auth := NewSessionAuthenticatorWithKey(sessionKey)

	var got *identity.Identity
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.Get(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token := signToken(t, jwt.MapClaims{
		"sub":         "alice",
		"entity_type": "user",
		"groups":      []any{"engineering", "oncall"},
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	r := httptest.NewRequest("GET", "/trust/alice", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.EntityID)
	assert.Equal(t, model.EntityTypeUser, got.EntityType)
	assert.Equal(t, []string{"engineering", "oncall"}, got.Groups)
	assert.Equal(t, "192.0.2.10", got.RemoteIP.String())
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("POST", "/access/evaluate", nil))
		codes = append(codes, w.Code)
	}

	// Burst of two, then throttled.
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/access/evaluate", nil))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
