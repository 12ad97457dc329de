// Package auth is the identity collaborator: it supplies the bearer token
// for API requests. Token issuance itself happens outside this program — an
// external agent writes the token to a file and rotates it; this package
// only reads it, re-reading opportunistically when the JWT expires.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken indicates no credential is available. Surfaced to the user as
// a blocking message; this package offers no retry (token provisioning is
// the external agent's job).
var ErrNoToken = errors.New("no auth token available")

// User is the local identity decoded from the token claims, used for
// display before the server-side record is resolved.
type User struct {
	Subject string
	Email   string
}

// Identity supplies the current credential and the local identity behind it.
type Identity interface {
	Token(ctx context.Context) (string, error)
	CurrentUser(ctx context.Context) (User, error)
}

// expiryMargin is how long before the exp claim a cached token is
// considered stale and re-read from its source.
const expiryMargin = 30 * time.Second

// FileTokenSource reads a bearer token from a file, preferring the
// BELLRING_TOKEN environment variable when set. The token is cached only
// within its own JWT lifetime; tokens without an exp claim are re-read on
// every request.
type FileTokenSource struct {
	path string
	env  string

	mu     sync.Mutex
	cached string
	expiry time.Time
	user   User
}

var _ Identity = (*FileTokenSource)(nil)

// NewFileTokenSource creates a token source over the given file path.
func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{path: path, env: "BELLRING_TOKEN"}
}

// Token returns the current bearer token, refreshing from the source when
// the cached one has expired.
func (f *FileTokenSource) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cached != "" && !f.expiry.IsZero() && time.Now().Before(f.expiry) {
		return f.cached, nil
	}
	return f.reload()
}

// CurrentUser returns the identity decoded from the token claims.
func (f *FileTokenSource) CurrentUser(ctx context.Context) (User, error) {
	if _, err := f.Token(ctx); err != nil {
		return User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, nil
}

// reload reads and inspects the token. Callers hold f.mu.
func (f *FileTokenSource) reload() (string, error) {
	raw := os.Getenv(f.env)
	if raw == "" {
		data, err := os.ReadFile(f.path)
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %v", ErrNoToken, f.path, err)
		}
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoToken
	}

	f.cached = raw
	f.expiry = time.Time{}
	f.user = User{}

	// Inspect claims without verifying the signature: verification is the
	// server's job, the client only needs exp for cache lifetime and
	// sub/email for display.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			f.expiry = exp.Time.Add(-expiryMargin)
			if !time.Now().Before(f.expiry) {
				// Already expired; hand it over anyway and let the server
				// decide, but don't cache it.
				f.expiry = time.Time{}
			}
		}
		if sub, err := claims.GetSubject(); err == nil {
			f.user.Subject = sub
		}
		if email, ok := claims["email"].(string); ok {
			f.user.Email = email
		}
	}
	return f.cached, nil
}

// StaticTokenSource returns a fixed token; used by tests and one-shot
// commands where a token is passed directly.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

func (s StaticTokenSource) CurrentUser(ctx context.Context) (User, error) {
	if s == "" {
		return User{}, ErrNoToken
	}
	return User{}, nil
}

// DefaultTokenPath resolves the token file path: BELLRING_TOKEN_FILE, then
// $XDG_CONFIG_HOME/bellring/token, then ~/.config/bellring/token.
func DefaultTokenPath() (string, error) {
	if p := os.Getenv("BELLRING_TOKEN_FILE"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = home + "/.config"
	}
	return configHome + "/bellring/token", nil
}
