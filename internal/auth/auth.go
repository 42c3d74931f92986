// Package auth guards the admin API with a single bcrypt-hashed credential.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoCredentials is returned when no admin password hash is configured.
var ErrNoCredentials = errors.New("admin credentials not configured")

// Realm is sent in the WWW-Authenticate challenge.
const Realm = "pathshala-admin"

// Verifier checks a username and password against the configured credential.
type Verifier struct {
	username string
	hash     []byte
}

// NewVerifier returns a verifier for username and a bcrypt hash.
func NewVerifier(username, passwordHash string) (*Verifier, error) {
	if passwordHash == "" {
		return nil, ErrNoCredentials
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &Verifier{username: username, hash: []byte(passwordHash)}, nil
}

// Verify reports whether user and password match.
func (v *Verifier) Verify(user, password string) bool {
	if v == nil {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(v.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for admin.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

// Middleware requires HTTP basic auth checked by v. A nil verifier answers 503.
func Middleware(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				writeError(w, http.StatusServiceUnavailable, ErrNoCredentials.Error())
				return
			}
			user, pass, ok := r.BasicAuth()
			if !ok || !v.Verify(user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`", charset="UTF-8"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "{\"error\":%q}", msg)
}
