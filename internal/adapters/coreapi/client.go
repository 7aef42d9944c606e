package coreapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"sevasetu_admin/internal/adapters/observability"
	"sevasetu_admin/internal/domain"
)

// Config wires a Client. Creds and BaseURL are required; everything else has
// a sensible default.
type Config struct {
	BaseURL string
	Creds   domain.CredentialStore

	// OnAuthFailure fires after a failed token refresh, once per expiry
	// episode, after stored credentials are cleared. Frontends hang their
	// redirect-to-login here.
	OnAuthFailure func(error)

	Timeout time.Duration
	RPS     float64
	Burst   int
	Logger  zerolog.Logger
}

// Client talks to the SevaSetu admin API. It attaches the bearer token from
// the credential store to every request and, on a 401, runs at most one
// token refresh per expiry episode; requests that 401 while the refresh is
// in flight are parked and released in arrival order once it settles.
type Client struct {
	base  string
	hc    *http.Client
	creds domain.CredentialStore
	rl    *rate.Limiter
	log   zerolog.Logger

	onAuthFailure func(error)

	// refresh gate state, owned by this instance
	refreshMu  sync.Mutex
	refreshing bool
	waiters    []chan error
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("coreapi: base URL is required")
	}
	if cfg.Creds == nil {
		return nil, fmt.Errorf("coreapi: credential store is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 8
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	return &Client{
		base:          strings.TrimRight(cfg.BaseURL, "/"),
		hc:            &http.Client{Timeout: cfg.Timeout},
		creds:         cfg.Creds,
		rl:            rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		log:           cfg.Logger,
		onAuthFailure: cfg.OnAuthFailure,
	}, nil
}

// ---- Request plumbing ----

// send performs one API call: client-side rate limiting, bearer attach, and
// the single 401-refresh-replay pass. The returned response has an open body
// and a 2xx status; every other outcome is an error. No retries happen here
// beyond the one replay after a successful refresh.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body []byte, contentType string, withAuth bool) (*http.Response, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.attempt(ctx, method, path, q, body, contentType, withAuth)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !withAuth {
		return c.finish(resp, method, path)
	}

	// First 401 on an authenticated call: join or start the refresh, then
	// replay once with the new token. A 401 on the replay propagates.
	origErr := readError(resp)
	triggered, rerr := c.freshToken(ctx)
	if rerr != nil {
		if triggered {
			// the caller that started the refresh reports its own 401
			return nil, origErr
		}
		return nil, rerr
	}
	resp, err = c.attempt(ctx, method, path, q, body, contentType, withAuth)
	if err != nil {
		return nil, err
	}
	return c.finish(resp, method, path)
}

// attempt builds and performs a single HTTP request.
func (c *Client) attempt(ctx context.Context, method, path string, q url.Values, body []byte, contentType string, withAuth bool) (*http.Response, error) {
	u := c.base + path
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u = path // document links come back absolute
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "br, gzip")
	req.Header.Set("User-Agent", "sevasetu-adminctl/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if withAuth {
		if tok := c.creds.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	observability.ObserveAPI(metricPath(path), method, resp.StatusCode, time.Since(start))
	c.log.Debug().Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("dur", time.Since(start)).Msg("api call")

	switch resp.Header.Get("Content-Encoding") {
	case "br":
		resp.Body = &readCloserWrapper{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("coreapi: gzip response: %w", err)
		}
		resp.Body = &readCloserWrapper{Reader: gz, Closer: resp.Body}
	}
	return resp, nil
}

// finish maps non-2xx statuses to errors, consuming the body.
func (c *Client) finish(resp *http.Response, method, path string) (*http.Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	err := readError(resp)
	c.log.Debug().Str("method", method).Str("path", path).Int("status", err.Status).
		Str("reason", err.Message).Msg("api error")
	return nil, err
}

// readError drains a failed response into an APIError and closes it.
func readError(resp *http.Response) *APIError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	return errorFrom(resp.StatusCode, b)
}

// do sends a JSON request and decodes the (possibly enveloped) answer into
// out. Pass nil body and out where the call has none.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("coreapi: encode request: %w", err)
		}
	}
	resp, err := c.send(ctx, method, path, q, body, "application/json", true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coreapi: read response: %w", err)
	}
	if err := decodeBody(b, out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("coreapi: decode %s %s: %w", method, path, err)
	}
	return nil
}

// doNoAuth is do without the bearer header or the refresh gate; the auth
// endpoints use it so a bad login cannot start a refresh episode.
func (c *Client) doNoAuth(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("coreapi: encode request: %w", err)
		}
	}
	resp, err := c.send(ctx, method, path, nil, body, "application/json", false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("coreapi: read response: %w", err)
	}
	return decodeBody(b, out)
}

// stream sends a request and hands the open body to the caller, who must
// close it. The refresh gate applies the same as for do.
func (c *Client) stream(ctx context.Context, method, path string, q url.Values) (io.ReadCloser, error) {
	resp, err := c.send(ctx, method, path, q, nil, "", true)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// metricPath trims IDs off the path so metric labels stay low-cardinality:
// /v1/admin/users/42/suspend becomes /v1/admin/users.
func metricPath(path string) string {
	if strings.HasPrefix(path, "http") {
		return "document"
	}
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return "/" + strings.Join(parts, "/")
}

type readCloserWrapper struct {
	io.Reader
	io.Closer
}

func (r *readCloserWrapper) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (r *readCloserWrapper) Close() error {
	return r.Closer.Close()
}
