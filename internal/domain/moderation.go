package domain

import "time"

// Dispute states and resolution actions.
const (
	DisputeOpen        = "open"
	DisputeUnderReview = "under_review"
	DisputeResolved    = "resolved"
	DisputeRejected    = "rejected"

	ResolveRefund  = "refund"
	ResolveDismiss = "dismiss"
	ResolveWarn    = "warn_provider"
)

// Dispute is a Grihasta or Acharya complaint about a booking.
type Dispute struct {
	ID          string     `json:"id"`
	BookingID   string     `json:"booking_id"`
	BookingRef  string     `json:"booking_ref,omitempty"`
	RaisedByID  string     `json:"raised_by_id"`
	RaisedBy    string     `json:"raised_by"` // display name
	AgainstID   string     `json:"against_id"`
	Reason      string     `json:"reason"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution,omitempty"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Fraud alert states and review actions.
const (
	AlertNew       = "new"
	AlertConfirmed = "confirmed"
	AlertDismissed = "dismissed"
	AlertEscalated = "escalated"
)

// FraudAlert is a backend-scored risk signal queued for manual review.
// Scoring itself happens server-side; the console only adjudicates.
type FraudAlert struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name,omitempty"`
	Signal     string     `json:"signal"` // velocity|chargeback|device_reuse|payment_mismatch
	Score      float64    `json:"score"`  // 0..1
	Details    string     `json:"details,omitempty"`
	Status     string     `json:"status"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

type ModerationQuery struct {
	Status  string
	Page    int
	PerPage int
}

type DisputesPage struct {
	Items   []Dispute `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

type FraudAlertsPage struct {
	Items   []FraudAlert `json:"items"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}
