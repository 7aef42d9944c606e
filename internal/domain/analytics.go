package domain

import "time"

// Summary is the headline card row of the analytics page.
type Summary struct {
	TotalUsers    int64 `json:"total_users"`
	TotalAcharyas int64 `json:"total_acharyas"`
	TotalBookings int64 `json:"total_bookings"`
	OpenDisputes  int64 `json:"open_disputes"`
	RevenuePaise  int64 `json:"revenue_paise"`
}

// SeriesPoint is one bucket of a time series (period is backend-formatted,
// e.g. "2026-07" or "2026-08-17").
type SeriesPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// StatusCount is one slice of the booking status breakdown. Percent is
// derived client-side from the counts; the backend sends counts only.
type StatusCount struct {
	Status  string  `json:"status"`
	Count   int64   `json:"count"`
	Percent float64 `json:"percent,omitempty"`
}

type TopAcharya struct {
	AcharyaID    string   `json:"acharya_id"`
	Name         string   `json:"name"`
	Bookings     int64    `json:"bookings"`
	RevenuePaise int64    `json:"revenue_paise"`
	Rating       *float64 `json:"rating,omitempty"`
}

type DisputeStats struct {
	Open               int64   `json:"open"`
	UnderReview        int64   `json:"under_review"`
	Resolved           int64   `json:"resolved"`
	Rejected           int64   `json:"rejected"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

type CouponRedemption struct {
	Code        string `json:"code"`
	Redemptions int64  `json:"redemptions"`
	ValuePaise  int64  `json:"value_paise"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Bookings int64  `json:"bookings"`
}

// Dashboard joins the ten independent analytics aggregates. The fields are
// filled by a fan-out over the per-aggregate endpoints; there is no ordering
// dependency between them.
type Dashboard struct {
	Summary           Summary            `json:"summary"`
	BookingTrend      []SeriesPoint      `json:"booking_trend"`
	RevenueTrend      []SeriesPoint      `json:"revenue_trend"`
	UserGrowth        []SeriesPoint      `json:"user_growth"`
	AcharyaGrowth     []SeriesPoint      `json:"acharya_growth"`
	StatusBreakdown   []StatusCount      `json:"status_breakdown"`
	TopAcharyas       []TopAcharya       `json:"top_acharyas"`
	DisputeStats      DisputeStats       `json:"dispute_stats"`
	CouponRedemptions []CouponRedemption `json:"coupon_redemptions"`
	CategorySplit     []CategoryCount    `json:"category_split"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
