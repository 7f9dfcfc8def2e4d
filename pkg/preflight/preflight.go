// Package preflight checks whether the target site's robots.txt allows the
// REST paths the backend is about to query.
package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// RESTPath is the WordPress REST API root checked by the backend
const RESTPath = "/wp-json/"

// Result of a robots.txt check
type Result struct {
	RobotsURL string
	Found     bool
	Allowed   bool
}

// Checker fetches and evaluates robots.txt
type Checker struct {
	client    *http.Client
	userAgent string
}

// New creates a Checker. A nil client gets a 10 second timeout client.
func New(client *http.Client, userAgent string) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if userAgent == "" {
		userAgent = "wpaudit"
	}
	return &Checker{client: client, userAgent: userAgent}
}

// Check reports whether path is allowed for the configured user agent on
// target. A missing or unreadable robots.txt allows everything.
func (c *Checker) Check(ctx context.Context, target, path string) (Result, error) {
	base, err := url.Parse(target)
	if err != nil || base.Host == "" {
		return Result{}, fmt.Errorf("invalid target URL %q", target)
	}
	scheme := base.Scheme
	if scheme == "" {
		scheme = "https"
	}
	robotsURL := (&url.URL{Scheme: scheme, Host: base.Host, Path: "/robots.txt"}).String()
	result := Result{RobotsURL: robotsURL, Allowed: true}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return result, fmt.Errorf("failed to build robots.txt request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return result, nil
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return result, nil
	}

	result.Found = true
	result.Allowed = robots.TestAgent(path, c.userAgent)
	return result, nil
}
