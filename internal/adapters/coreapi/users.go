package coreapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"sevasetu_admin/internal/domain"
)

// Users lists Grihasta accounts matching q. Search covers name, email and
// phone; zero page values fall back to the backend defaults.
func (c *Client) Users(ctx context.Context, q domain.UserQuery) (domain.UsersPage, error) {
	vals := url.Values{}
	if q.Search != "" {
		vals.Set("search", q.Search)
	}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	addPage(vals, q.Page, q.PerPage)
	var out domain.UsersPage
	err := c.do(ctx, http.MethodGet, "/v1/admin/users", vals, nil, &out)
	return out, err
}

func (c *Client) User(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	err := c.do(ctx, http.MethodGet, "/v1/admin/users/"+id, nil, nil, &out)
	return out, err
}

// SuspendUser blocks the account. Reason lands in the audit log.
func (c *Client) SuspendUser(ctx context.Context, id, reason string) error {
	in := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodPost, "/v1/admin/users/"+id+"/suspend", nil, in, nil)
}

// ReinstateUser lifts a suspension.
func (c *Client) ReinstateUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/v1/admin/users/"+id+"/reinstate", nil, nil, nil)
}

func addPage(vals url.Values, page, perPage int) {
	if page > 0 {
		vals.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		vals.Set("per_page", strconv.Itoa(perPage))
	}
}
