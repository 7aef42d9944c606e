package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// User statuses as canonicalized by decoding. The backend is mid-migration
// and emits either an is_suspended flag or a status string; UnmarshalJSON
// folds both spellings into Status.
const (
	UserActive    = "active"
	UserSuspended = "suspended"
)

// User is a Grihasta (customer) account as the admin surface sees it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	FullName     string    `json:"full_name"`
	City         string    `json:"city,omitempty"`
	Status       string    `json:"status"`
	BookingCount int       `json:"booking_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// userWire accepts every field spelling observed across backend versions.
type userWire struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"full_name"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	City         string    `json:"city"`
	Status       string    `json:"status"`
	IsSuspended  *bool     `json:"is_suspended"`
	Suspended    *bool     `json:"suspended"`
	BookingCount int       `json:"booking_count"`
	Bookings     int       `json:"bookings"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	var w userWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	u.ID = w.ID
	u.Email = w.Email
	u.Phone = w.Phone
	u.FullName = firstNonEmpty(w.FullName, w.Name, w.DisplayName)
	u.City = w.City
	u.BookingCount = w.BookingCount
	if u.BookingCount == 0 {
		u.BookingCount = w.Bookings
	}
	u.CreatedAt = w.CreatedAt
	u.Status = canonicalUserStatus(w.Status, w.IsSuspended, w.Suspended)
	return nil
}

// canonicalUserStatus folds the migration-era spellings into one value.
// An explicit boolean wins over the status string when both are present.
func canonicalUserStatus(status string, flags ...*bool) string {
	for _, f := range flags {
		if f != nil {
			if *f {
				return UserSuspended
			}
			return UserActive
		}
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case UserSuspended, "blocked", "banned":
		return UserSuspended
	case "", UserActive, "enabled":
		return UserActive
	default:
		return strings.ToLower(strings.TrimSpace(status))
	}
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// UserQuery filters the admin user listing.
type UserQuery struct {
	Search  string // matches name/email/phone
	Status  string // "", active, suspended
	Page    int
	PerPage int
}

type UsersPage struct {
	Items   []User `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}
