package selfupdate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, tag string, status int) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/abhisek/bellring/releases/latest", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"tag_name": %q, "html_url": "https://example.com/release"}`, tag)
	}))
	t.Cleanup(srv.Close)
	return NewChecker(WithAPIBaseURL(srv.URL))
}

func TestCheckUpdateAvailable(t *testing.T) {
	c := newTestChecker(t, "v1.2.0", http.StatusOK)
	result, err := c.Check(context.Background(), &CheckInput{Version: "v1.1.0"})
	require.NoError(t, err)
	assert.True(t, result.UpdateAvailable)
	assert.Equal(t, "v1.2.0", result.LatestVersion)
	assert.Equal(t, "https://example.com/release", result.ReleaseURL)
}

func TestCheckAlreadyLatest(t *testing.T) {
	c := newTestChecker(t, "v1.1.0", http.StatusOK)
	result, err := c.Check(context.Background(), &CheckInput{Version: "v1.1.0"})
	require.NoError(t, err)
	assert.False(t, result.UpdateAvailable)
}

func TestCheckNewerLocalBuild(t *testing.T) {
	c := newTestChecker(t, "v1.1.0", http.StatusOK)
	result, err := c.Check(context.Background(), &CheckInput{Version: "v1.2.0"})
	require.NoError(t, err)
	assert.False(t, result.UpdateAvailable)
}

func TestCheckHandlesUnprefixedVersions(t *testing.T) {
	c := newTestChecker(t, "1.2.0", http.StatusOK)
	result, err := c.Check(context.Background(), &CheckInput{Version: "1.1.0"})
	require.NoError(t, err)
	assert.True(t, result.UpdateAvailable)
}

func TestCheckDevBuild(t *testing.T) {
	c := newTestChecker(t, "v1.2.0", http.StatusOK)
	_, err := c.Check(context.Background(), &CheckInput{Version: "(devel)"})
	require.ErrorIs(t, err, ErrDevBuild)
}

func TestCheckHTTPError(t *testing.T) {
	c := newTestChecker(t, "", http.StatusNotFound)
	_, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCheckBadTag(t *testing.T) {
	c := newTestChecker(t, "nightly", http.StatusOK)
	_, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	require.Error(t, err)
}
