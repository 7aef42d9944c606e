package coreapi

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"sevasetu_admin/internal/domain"
)

// Bookings lists ritual bookings with the standard filters.
func (c *Client) Bookings(ctx context.Context, q domain.BookingQuery) (domain.BookingsPage, error) {
	vals := url.Values{}
	if q.Status != "" {
		vals.Set("status", q.Status)
	}
	if q.Category != "" {
		vals.Set("category", q.Category)
	}
	if q.AcharyaID != "" {
		vals.Set("acharya_id", q.AcharyaID)
	}
	if q.From != nil {
		vals.Set("from", q.From.Format(time.RFC3339))
	}
	if q.To != nil {
		vals.Set("to", q.To.Format(time.RFC3339))
	}
	addPage(vals, q.Page, q.PerPage)
	var out domain.BookingsPage
	err := c.do(ctx, http.MethodGet, "/v1/admin/bookings", vals, nil, &out)
	return out, err
}

func (c *Client) Booking(ctx context.Context, id string) (domain.Booking, error) {
	var out domain.Booking
	err := c.do(ctx, http.MethodGet, "/v1/admin/bookings/"+id, nil, nil, &out)
	return out, err
}

// SetBookingStatus moves a booking through its lifecycle. The backend
// validates the transition; an impossible one comes back as a 422.
func (c *Client) SetBookingStatus(ctx context.Context, id, status, note string) (domain.Booking, error) {
	in := map[string]string{"status": status}
	if note != "" {
		in["note"] = note
	}
	var out domain.Booking
	err := c.do(ctx, http.MethodPatch, "/v1/admin/bookings/"+id+"/status", nil, in, &out)
	return out, err
}

// BookingStats returns the headline counters for the period.
func (c *Client) BookingStats(ctx context.Context, from, to *time.Time) (domain.BookingStats, error) {
	vals := url.Values{}
	if from != nil {
		vals.Set("from", from.Format(time.RFC3339))
	}
	if to != nil {
		vals.Set("to", to.Format(time.RFC3339))
	}
	var out domain.BookingStats
	err := c.do(ctx, http.MethodGet, "/v1/admin/bookings/stats", vals, nil, &out)
	return out, err
}
