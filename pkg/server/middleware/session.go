package middleware

import (
	"net"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/perimetra/ztcore/pkg/identity"
)

var bearerRegex = regexp.MustCompile(`^Bearer (.+)$`)

// SessionAuthenticator is middleware that verifies session tokens. Identity
// verification is the session layer's job; this middleware only establishes
// the already-issued identity fact for the request.
type SessionAuthenticator struct {
	key []byte
	now func() time.Time
}

// NewSessionAuthenticator creates a session authenticator from
// ZTCORE_SESSION_KEY. Returns nil if the key is not set (session
// verification disabled).
func NewSessionAuthenticator() *SessionAuthenticator {
	key := os.Getenv("ZTCORE_SESSION_KEY")
	if key == "" {
		return nil
	}
	return &SessionAuthenticator{key: []byte(key), now: time.Now}
}

// NewSessionAuthenticatorWithKey creates a session authenticator over an
// explicit key. Useful for testing.
func NewSessionAuthenticatorWithKey(key []byte) *SessionAuthenticator {
	return &SessionAuthenticator{key: key, now: time.Now}
}

// Middleware returns an HTTP middleware that verifies session tokens.
func (s *SessionAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")

		if len(authHeader) == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Authorization missing"))
			return
		}

		tokenMatches := bearerRegex.FindStringSubmatch(authHeader)

		if len(tokenMatches) != 2 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Malformed authorization header"))
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenMatches[1], claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.key, nil
		})
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Invalid session token"))
			return
		}

		id := identity.FromClaims(claims)
		if id.EntityID == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Session token missing subject"))
			return
		}
		if id.Expired(s.now()) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Session expired"))
			return
		}

		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			id.WithRemoteIP(net.ParseIP(host))
		}

		r = r.WithContext(identity.Set(r.Context(), id))
		next.ServeHTTP(w, r)
	})
}
