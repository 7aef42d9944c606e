package coreapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"sevasetu_admin/internal/domain"
)

// Threads lists support chat threads visible to the admin.
func (c *Client) Threads(ctx context.Context, page, perPage int) ([]domain.ChatThread, error) {
	vals := url.Values{}
	addPage(vals, page, perPage)
	var out []domain.ChatThread
	err := c.do(ctx, http.MethodGet, "/v1/chat/threads", vals, nil, &out)
	return out, err
}

// Messages returns a thread's messages, oldest first.
func (c *Client) Messages(ctx context.Context, threadID string, limit int) ([]domain.ChatMessage, error) {
	vals := url.Values{}
	if limit > 0 {
		vals.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.ChatMessage
	err := c.do(ctx, http.MethodGet, "/v1/chat/threads/"+threadID+"/messages", vals, nil, &out)
	return out, err
}

// SendMessage posts a plain text message to a thread.
func (c *Client) SendMessage(ctx context.Context, threadID, body string) (domain.ChatMessage, error) {
	in := map[string]string{"body": body}
	var out domain.ChatMessage
	err := c.do(ctx, http.MethodPost, "/v1/chat/threads/"+threadID+"/messages", nil, in, &out)
	return out, err
}
