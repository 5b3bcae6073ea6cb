// Package github talks to the GitHub REST API.
//
// It has two jobs:
//   - FetchLanguages: resolve a repository's languages_url into the ordered
//     list of language names (the enrichment step of every project write)
//   - ListRepos: list the authenticated user's repositories, so an admin can
//     pick one to turn into a project
//
// ERROR CONTRACT:
// Every failure is returned as an *apperror.AppError:
//   - apperror.Upstream(status)      → GitHub answered, but not with 2xx
//   - apperror.UpstreamUnavailable() → we never got an answer (DNS, refused
//     connection, timeout, cancelled context)
//
// There is no retry and no cache. Each call is exactly one round-trip.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/sakif/portfolio-api/internal/apperror"
	"github.com/sakif/portfolio-api/internal/model"
)

// Config holds the settings for a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.github.com". Tests point it
	// at an httptest server.
	BaseURL string
	// Token is an optional personal access token. Unauthenticated requests
	// work for public repositories but are limited to 60 per hour.
	Token string
	// Timeout bounds each request end to end (connect, headers, body).
	Timeout time.Duration
	// RatePerSecond and Burst pace outbound requests. Zero disables pacing.
	RatePerSecond float64
	Burst         int
}

// Client is a small GitHub API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client from cfg.
//
// BEARER CREDENTIAL VIA OAUTH2:
// When a token is configured we let golang.org/x/oauth2 build the
// *http.Client. oauth2.NewClient wraps the transport so that every request
// automatically carries "Authorization: Bearer <token>". A StaticTokenSource
// never refreshes, which is exactly what a personal access token needs.
func NewClient(cfg Config) *Client {
	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		hc = oauth2.NewClient(context.Background(), ts)
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = cfg.Timeout

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    hc,
		limiter: limiter,
	}
}

// FetchLanguages GETs url and returns the language names in the order GitHub
// listed them.
//
// GitHub answers with a JSON object of language → bytes of code:
//
//	{"Python": 1000, "JavaScript": 200}
//
// We only keep the keys. Go maps have no order, so decoding into
// map[string]int would shuffle them; readObjectKeys walks the token stream
// instead and records keys as they appear.
func (c *Client) FetchLanguages(ctx context.Context, url string) ([]string, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	languages, err := readObjectKeys(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: decoding languages from %s: %w", url, bodyError(err))
	}

	return languages, nil
}

// ListRepos returns the authenticated user's repositories, most recently
// updated first (max 100, a single page).
func (c *Client) ListRepos(ctx context.Context) ([]model.GitHubRepo, error) {
	resp, err := c.get(ctx, c.baseURL+"/user/repos?sort=updated&per_page=100")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	repos := []model.GitHubRepo{}
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("github: decoding repositories: %w", bodyError(err))
	}

	return repos, nil
}

// get performs one paced GET and maps failures onto the apperror taxonomy.
// On success the caller owns resp.Body.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	// Wait fails immediately if the context deadline is shorter than the
	// time we would have to wait. Either way we never reached GitHub.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperror.UpstreamUnavailable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.UpstreamUnavailable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, apperror.Upstream(resp.StatusCode)
	}

	return resp, nil
}

// bodyError classifies a failure while reading a 2xx body. The client
// timeout also covers the body, so a stall after the headers is a timeout
// (UpstreamUnavailable), not a bad answer. Anything else is a malformed
// body: Upstream(502) with the decode error kept in the chain.
func bodyError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperror.UpstreamUnavailable(err)
	}
	return fmt.Errorf("%w: %w", apperror.Upstream(http.StatusBadGateway), err)
}

var errNotObject = errors.New("github: expected a JSON object")

// readObjectKeys decodes a flat JSON object and returns its keys in document
// order. Values are skipped whatever their type.
func readObjectKeys(r io.Reader) ([]string, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	keys := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}

		// Skip the value (a byte count) without caring about its shape.
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}

		keys = append(keys, key)
	}

	// Consume the closing brace so truncated bodies are reported.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return keys, nil
}
