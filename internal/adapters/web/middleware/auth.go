// Package middleware holds the HTTP wrappers of the API server.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// TokenAuth checks a bearer token against a bcrypt hash. The token may also
// be passed as ?token= for WebSocket clients that cannot set headers.
type TokenAuth struct {
	hash []byte

	mu       sync.Mutex
	verified [sha256.Size]byte
	ok       bool
}

// NewTokenAuth returns nil when hash is empty, which disables checking.
func NewTokenAuth(hash string) (*TokenAuth, error) {
	if hash == "" {
		return nil, nil
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, err
	}
	return &TokenAuth{hash: []byte(hash)}, nil
}

// Valid reports whether token matches the hash. The digest of the last
// accepted token is remembered so bcrypt runs once per distinct token.
func (a *TokenAuth) Valid(token string) bool {
	if token == "" {
		return false
	}
	digest := sha256.Sum256([]byte(token))

	a.mu.Lock()
	if a.ok && subtle.ConstantTimeCompare(digest[:], a.verified[:]) == 1 {
		a.mu.Unlock()
		return true
	}
	a.mu.Unlock()

	if bcrypt.CompareHashAndPassword(a.hash, []byte(token)) != nil {
		return false
	}
	a.mu.Lock()
	a.verified, a.ok = digest, true
	a.mu.Unlock()
	return true
}

// Middleware rejects requests without a valid token. A nil TokenAuth lets
// everything through.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Valid(tokenFrom(r)) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="wreveal"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

// HashToken returns the bcrypt hash to configure for token.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
