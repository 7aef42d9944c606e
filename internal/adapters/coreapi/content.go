package coreapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"sevasetu_admin/internal/domain"
)

// Testimonials lists submitted reviews, published and pending alike.
func (c *Client) Testimonials(ctx context.Context, publishedOnly bool, page, perPage int) ([]domain.Testimonial, error) {
	vals := url.Values{}
	if publishedOnly {
		vals.Set("published", strconv.FormatBool(true))
	}
	addPage(vals, page, perPage)
	var out []domain.Testimonial
	err := c.do(ctx, http.MethodGet, "/v1/admin/testimonials", vals, nil, &out)
	return out, err
}

// SetTestimonialPublished toggles visibility on the public site.
func (c *Client) SetTestimonialPublished(ctx context.Context, id string, published bool) (domain.Testimonial, error) {
	in := map[string]bool{"published": published}
	var out domain.Testimonial
	err := c.do(ctx, http.MethodPatch, "/v1/admin/testimonials/"+id+"/publish", nil, in, &out)
	return out, err
}

func (c *Client) DeleteTestimonial(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/testimonials/"+id, nil, nil, nil)
}

func (c *Client) Announcements(ctx context.Context) ([]domain.Announcement, error) {
	var out []domain.Announcement
	err := c.do(ctx, http.MethodGet, "/v1/admin/announcements", nil, nil, &out)
	return out, err
}

// CreateAnnouncement publishes a banner to the chosen audience.
func (c *Client) CreateAnnouncement(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	var out domain.Announcement
	err := c.do(ctx, http.MethodPost, "/v1/admin/announcements", nil, a, &out)
	return out, err
}

func (c *Client) UpdateAnnouncement(ctx context.Context, a domain.Announcement) (domain.Announcement, error) {
	var out domain.Announcement
	err := c.do(ctx, http.MethodPut, "/v1/admin/announcements/"+a.ID, nil, a, &out)
	return out, err
}

func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/announcements/"+id, nil, nil, nil)
}
