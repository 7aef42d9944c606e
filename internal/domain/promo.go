package domain

import "time"

// Coupon is a reusable discount code. Exactly one of Percent / FlatPaise
// is set; the backend rejects coupons carrying both.
type Coupon struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Description    string     `json:"description,omitempty"`
	Percent        *int       `json:"percent,omitempty"`
	FlatPaise      *int64     `json:"flat_paise,omitempty"`
	MaxRedemptions int        `json:"max_redemptions"`
	Redeemed       int        `json:"redeemed"`
	ValidFrom      *time.Time `json:"valid_from,omitempty"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Voucher is a single-use stored-value code, optionally bound to a user.
type Voucher struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	ValuePaise int64      `json:"value_paise"`
	IssuedTo   string     `json:"issued_to,omitempty"`
	Redeemed   bool       `json:"redeemed"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
