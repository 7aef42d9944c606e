package coreapi

import (
	"context"
	"net/http"
	"net/url"

	"sevasetu_admin/internal/domain"
)

// Disputes lists open cases first unless a status filter says otherwise.
func (c *Client) Disputes(ctx context.Context, q domain.ModerationQuery) (domain.DisputesPage, error) {
	vals := url.Values{}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	addPage(vals, q.Page, q.PerPage)
	var out domain.DisputesPage
	err := c.do(ctx, http.MethodGet, "/v1/admin/disputes", vals, nil, &out)
	return out, err
}

func (c *Client) Dispute(ctx context.Context, id string) (domain.Dispute, error) {
	var out domain.Dispute
	err := c.do(ctx, http.MethodGet, "/v1/admin/disputes/"+id, nil, nil, &out)
	return out, err
}

// ResolveDispute closes a case with one of the resolution kinds (refund,
// dismiss, warn) and an explanatory note.
func (c *Client) ResolveDispute(ctx context.Context, id, resolution, note string) (domain.Dispute, error) {
	in := map[string]string{"resolution": resolution, "note": note}
	var out domain.Dispute
	err := c.do(ctx, http.MethodPost, "/v1/admin/disputes/"+id+"/resolve", nil, in, &out)
	return out, err
}

// FraudAlerts lists risk-engine hits for review.
func (c *Client) FraudAlerts(ctx context.Context, q domain.ModerationQuery) (domain.FraudAlertsPage, error) {
	vals := url.Values{}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	addPage(vals, q.Page, q.PerPage)
	var out domain.FraudAlertsPage
	err := c.do(ctx, http.MethodGet, "/v1/admin/fraud-alerts", vals, nil, &out)
	return out, err
}

// SetAlertStatus confirms, dismisses or escalates an alert.
func (c *Client) SetAlertStatus(ctx context.Context, id, status string) (domain.FraudAlert, error) {
	in := map[string]string{"status": status}
	var out domain.FraudAlert
	err := c.do(ctx, http.MethodPatch, "/v1/admin/fraud-alerts/"+id+"/status", nil, in, &out)
	return out, err
}
