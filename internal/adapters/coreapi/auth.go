package coreapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"sevasetu_admin/internal/adapters/observability"
	"sevasetu_admin/internal/domain"
)

// ErrNoRefreshToken means a 401 arrived with nothing to refresh with; the
// session is over before the refresh endpoint is even called.
var ErrNoRefreshToken = errors.New("coreapi: no refresh token stored")

const refreshPath = "/v1/admin/auth/refresh"

// freshToken makes sure the store holds a usable access token after a 401.
// The first caller of an expiry episode (triggered=true) runs the refresh;
// everyone else parks on a channel and is released, in arrival order, only
// after that one refresh settles. On failure the trigger clears credentials
// and fires the auth-failure callback exactly once; parked callers all get
// the refresh error.
func (c *Client) freshToken(ctx context.Context) (triggered bool, err error) {
	c.refreshMu.Lock()
	if c.refreshing {
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.refreshMu.Unlock()
		select {
		case err := <-ch:
			return false, err
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	c.refreshing = true
	c.refreshMu.Unlock()

	err = c.refresh(ctx)

	c.refreshMu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.refreshMu.Unlock()
	for _, ch := range waiters {
		ch <- err
	}
	return true, err
}

// refresh calls the refresh endpoint and stores the rotated tokens. It never
// goes through send: no bearer header, no rate limiter, no second gate.
func (c *Client) refresh(ctx context.Context) error {
	rt := c.creds.RefreshToken()
	if rt == "" {
		c.failSession(ErrNoRefreshToken)
		return ErrNoRefreshToken
	}

	body, _ := json.Marshal(map[string]string{"refresh_token": rt})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+refreshPath, bytes.NewReader(body))
	if err != nil {
		c.failSession(err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		c.failSession(err)
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		err := errorFrom(resp.StatusCode, b)
		c.failSession(err)
		return fmt.Errorf("coreapi: refresh: %w", err)
	}

	var tp domain.TokenPair
	if err := decodeBody(b, &tp); err != nil {
		c.failSession(err)
		return fmt.Errorf("coreapi: refresh decode: %w", err)
	}
	if tp.AccessToken == "" {
		err := errors.New("coreapi: refresh returned no access token")
		c.failSession(err)
		return err
	}
	if err := c.creds.SetTokens(tp.AccessToken, tp.RefreshToken); err != nil {
		c.failSession(err)
		return fmt.Errorf("coreapi: store tokens: %w", err)
	}
	observability.ObserveRefresh(true)
	c.log.Info().Msg("access token refreshed")
	return nil
}

// failSession runs the terminal path of a failed refresh: wipe the stored
// session, then tell the frontend. Called once per episode, from the single
// goroutine that ran the refresh.
func (c *Client) failSession(cause error) {
	observability.ObserveRefresh(false)
	if err := c.creds.Clear(); err != nil {
		c.log.Error().Err(err).Msg("clearing credentials after failed refresh")
	}
	c.log.Warn().Err(cause).Msg("session ended: token refresh failed")
	if c.onAuthFailure != nil {
		c.onAuthFailure(cause)
	}
}

// ---- Auth endpoints ----

type LoginResult struct {
	User   domain.AdminUser `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// Login exchanges credentials for a token pair and stores both tokens and
// the admin profile.
func (c *Client) Login(ctx context.Context, email, password string) (domain.AdminUser, error) {
	var res LoginResult
	in := map[string]string{"email": email, "password": password}
	if err := c.doNoAuth(ctx, http.MethodPost, "/v1/admin/auth/login", in, &res); err != nil {
		return domain.AdminUser{}, err
	}
	if err := c.creds.SetTokens(res.Tokens.AccessToken, res.Tokens.RefreshToken); err != nil {
		return domain.AdminUser{}, fmt.Errorf("coreapi: store tokens: %w", err)
	}
	if err := c.creds.SetUser(res.User); err != nil {
		return domain.AdminUser{}, fmt.Errorf("coreapi: store user: %w", err)
	}
	return res.User, nil
}

// CheckEmail reports whether an admin account exists for the address and
// whether it has finished password setup.
func (c *Client) CheckEmail(ctx context.Context, email string) (domain.EmailStatus, error) {
	var out domain.EmailStatus
	in := map[string]string{"email": email}
	err := c.doNoAuth(ctx, http.MethodPost, "/v1/admin/auth/check-email", in, &out)
	return out, err
}

// SetupPassword completes first-time onboarding using the invite token from
// the welcome mail.
func (c *Client) SetupPassword(ctx context.Context, email, inviteToken, password string) error {
	in := map[string]string{"email": email, "token": inviteToken, "password": password}
	return c.doNoAuth(ctx, http.MethodPost, "/v1/admin/auth/setup-password", in, nil)
}

// Me returns the server's view of the logged-in admin.
func (c *Client) Me(ctx context.Context) (domain.AdminUser, error) {
	var out domain.AdminUser
	err := c.do(ctx, http.MethodGet, "/v1/admin/auth/me", nil, nil, &out)
	return out, err
}

// Logout revokes the session server-side and wipes the local store either
// way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/v1/admin/auth/logout", nil, nil, nil)
	if cerr := c.creds.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
