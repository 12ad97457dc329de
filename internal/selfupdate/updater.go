// Package selfupdate checks GitHub releases for a newer build of the
// client. It only reports; installing the new build is left to the user's
// package manager or a manual download.
package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

var ErrDevBuild = errors.New("cannot compare a development build")

const (
	defaultOwner   = "abhisek"
	defaultRepo    = "bellring"
	defaultAPIBase = "https://api.github.com"
)

// Checker queries the release feed.
type Checker struct {
	owner      string
	repo       string
	apiBaseURL string
	client     *http.Client
}

type Option func(*Checker)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.client.Timeout = d
	}
}

// WithAPIBaseURL overrides the GitHub API base URL, for tests.
func WithAPIBaseURL(u string) Option {
	return func(c *Checker) {
		c.apiBaseURL = u
	}
}

// WithRepo overrides the release repository.
func WithRepo(owner, repo string) Option {
	return func(c *Checker) {
		c.owner = owner
		c.repo = repo
	}
}

// NewChecker creates a release checker.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		owner:      defaultOwner,
		repo:       defaultRepo,
		apiBaseURL: defaultAPIBase,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CheckInput struct {
	Version string
}

type CheckResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

type releaseResponse struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check fetches the latest release tag and compares it against the running
// version.
func (c *Checker) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	if input.Version == "(devel)" {
		return nil, ErrDevBuild
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest",
		strings.TrimRight(c.apiBaseURL, "/"), c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}
	if release.TagName == "" {
		return nil, errors.New("release has no tag name")
	}

	current := canonical(input.Version)
	latest := canonical(release.TagName)
	if !semver.IsValid(latest) {
		return nil, fmt.Errorf("release tag %q is not a semantic version", release.TagName)
	}

	return &CheckResult{
		CurrentVersion:  input.Version,
		LatestVersion:   release.TagName,
		UpdateAvailable: !semver.IsValid(current) || semver.Compare(latest, current) > 0,
		ReleaseURL:      release.HTMLURL,
	}, nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
