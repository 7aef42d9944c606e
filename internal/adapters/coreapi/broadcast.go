package coreapi

import (
	"context"
	"net/http"

	"sevasetu_admin/internal/domain"
)

// SendBroadcast pushes a notification to a user segment (all, grihastas,
// acharyas) and returns the recorded send with its recipient count.
func (c *Client) SendBroadcast(ctx context.Context, title, body, segment string) (domain.Broadcast, error) {
	in := map[string]string{"title": title, "body": body, "segment": segment}
	var out domain.Broadcast
	err := c.do(ctx, http.MethodPost, "/v1/admin/broadcast", nil, in, &out)
	return out, err
}

// Broadcasts returns past sends, newest first.
func (c *Client) Broadcasts(ctx context.Context) ([]domain.Broadcast, error) {
	var out []domain.Broadcast
	err := c.do(ctx, http.MethodGet, "/v1/admin/broadcast", nil, nil, &out)
	return out, err
}
