package coreapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"sevasetu_admin/internal/domain"
)

func (c *Client) Coupons(ctx context.Context, activeOnly bool) ([]domain.Coupon, error) {
	vals := url.Values{}
	if activeOnly {
		vals.Set("active", strconv.FormatBool(true))
	}
	var out []domain.Coupon
	err := c.do(ctx, http.MethodGet, "/v1/admin/coupons", vals, nil, &out)
	return out, err
}

// CreateCoupon registers a discount code. Exactly one of Percent or
// FlatPaise must be set; the backend rejects ambiguous coupons.
func (c *Client) CreateCoupon(ctx context.Context, cp domain.Coupon) (domain.Coupon, error) {
	var out domain.Coupon
	err := c.do(ctx, http.MethodPost, "/v1/admin/coupons", nil, cp, &out)
	return out, err
}

func (c *Client) UpdateCoupon(ctx context.Context, cp domain.Coupon) (domain.Coupon, error) {
	var out domain.Coupon
	err := c.do(ctx, http.MethodPut, "/v1/admin/coupons/"+cp.ID, nil, cp, &out)
	return out, err
}

// SetCouponActive flips a code on or off without touching its terms.
func (c *Client) SetCouponActive(ctx context.Context, id string, active bool) (domain.Coupon, error) {
	in := map[string]bool{"active": active}
	var out domain.Coupon
	err := c.do(ctx, http.MethodPatch, "/v1/admin/coupons/"+id+"/toggle", nil, in, &out)
	return out, err
}

func (c *Client) DeleteCoupon(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/coupons/"+id, nil, nil, nil)
}

func (c *Client) Vouchers(ctx context.Context, page, perPage int) ([]domain.Voucher, error) {
	vals := url.Values{}
	addPage(vals, page, perPage)
	var out []domain.Voucher
	err := c.do(ctx, http.MethodGet, "/v1/admin/vouchers", vals, nil, &out)
	return out, err
}

// IssueVoucher creates a fixed-value voucher for a specific Grihasta,
// typically as dispute compensation.
func (c *Client) IssueVoucher(ctx context.Context, v domain.Voucher) (domain.Voucher, error) {
	var out domain.Voucher
	err := c.do(ctx, http.MethodPost, "/v1/admin/vouchers", nil, v, &out)
	return out, err
}

func (c *Client) RevokeVoucher(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/vouchers/"+id, nil, nil, nil)
}
