package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func writeTokenFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTokenFromFile(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "kid@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	src := NewFileTokenSource(writeTokenFile(t, raw))

	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != raw {
		t.Error("token not returned verbatim")
	}

	user, err := src.CurrentUser(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if user.Subject != "user-1" || user.Email != "kid@example.com" {
		t.Errorf("claims not decoded: %+v", user)
	}
}

func TestTokenCachedUntilExpiry(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	path := writeTokenFile(t, raw)
	src := NewFileTokenSource(path)

	if _, err := src.Token(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The file changes, but the cached token is still valid.
	if err := os.WriteFile(path, []byte("rotated"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != raw {
		t.Error("valid cached token should not be re-read")
	}
}

func TestExpiredTokenIsReRead(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	path := writeTokenFile(t, raw)
	src := NewFileTokenSource(path)

	if got, err := src.Token(context.Background()); err != nil || got != raw {
		t.Fatalf("expired token should still be handed over: %q %v", got, err)
	}

	rotated := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	if err := os.WriteFile(path, []byte(rotated), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != rotated {
		t.Error("rotation after expiry not picked up")
	}
}

func TestOpaqueTokenReReadEachCall(t *testing.T) {
	path := writeTokenFile(t, "not-a-jwt")
	src := NewFileTokenSource(path)

	if got, err := src.Token(context.Background()); err != nil || got != "not-a-jwt" {
		t.Fatalf("opaque tokens must pass through: %q %v", got, err)
	}

	if err := os.WriteFile(path, []byte("rotated-opaque"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "rotated-opaque" {
		t.Error("tokens without exp should be re-read every call")
	}
}

func TestMissingToken(t *testing.T) {
	src := NewFileTokenSource(filepath.Join(t.TempDir(), "nope"))
	_, err := src.Token(context.Background())
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTokenFile(t, "from-file")
	t.Setenv("BELLRING_TOKEN", "from-env")

	src := NewFileTokenSource(path)
	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "from-env" {
		t.Errorf("env token should win, got %q", got)
	}
}
