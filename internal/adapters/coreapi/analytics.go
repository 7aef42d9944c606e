package coreapi

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"sevasetu_admin/internal/domain"
)

// Dashboard fans out over the ten analytics endpoints in parallel and joins
// the results. The aggregates are independent; parallelism is purely for
// latency. One failing endpoint fails the whole dashboard.
func (c *Client) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	var d domain.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/summary", nil, nil, &d.Summary)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/booking-trend", nil, nil, &d.BookingTrend)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/revenue-trend", nil, nil, &d.RevenueTrend)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/user-growth", nil, nil, &d.UserGrowth)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/acharya-growth", nil, nil, &d.AcharyaGrowth)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/status-breakdown", nil, nil, &d.StatusBreakdown)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/top-acharyas", nil, nil, &d.TopAcharyas)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/dispute-stats", nil, nil, &d.DisputeStats)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/coupon-redemptions", nil, nil, &d.CouponRedemptions)
	})
	g.Go(func() error {
		return c.do(ctx, http.MethodGet, "/v1/admin/analytics/category-split", nil, nil, &d.CategorySplit)
	})

	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}
	d.GeneratedAt = time.Now().UTC()
	return d, nil
}
