package domain

import "time"

// Booking statuses accepted by the status-update endpoint.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
	BookingRefunded   = "refunded"
)

// Booking links a Grihasta to an Acharya for one scheduled service.
// Amounts are in paise to avoid float drift.
type Booking struct {
	ID           string    `json:"id"`
	Ref          string    `json:"ref"` // short human code, e.g. SVS-2024-00113
	GrihastaID   string    `json:"grihasta_id"`
	GrihastaName string    `json:"grihasta_name"`
	AcharyaID    string    `json:"acharya_id"`
	AcharyaName  string    `json:"acharya_name"`
	Service      string    `json:"service"`
	Category     string    `json:"category"` // puja|havan|astrology|samskara
	ScheduledAt  time.Time `json:"scheduled_at"`
	Status       string    `json:"status"`
	AmountPaise  int64     `json:"amount_paise"`
	Currency     string    `json:"currency"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type BookingQuery struct {
	Status    string
	Category  string
	AcharyaID string
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

type BookingsPage struct {
	Items   []Booking `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

// BookingStats is the aggregate behind the bookings page header.
type BookingStats struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Confirmed    int64 `json:"confirmed"`
	Completed    int64 `json:"completed"`
	Cancelled    int64 `json:"cancelled"`
	RevenuePaise int64 `json:"revenue_paise"`
}
