package domain

import "time"

// Testimonial is a curated customer quote shown on the public site.
type Testimonial struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name"`
	AuthorRole string    `json:"author_role,omitempty"` // grihasta|acharya
	Quote      string    `json:"quote"`
	Rating     *int      `json:"rating,omitempty"` // 1..5
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"created_at"`
}

// Announcement is a banner/notice with an optional display window.
type Announcement struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Audience  string     `json:"audience"` // all|grihastas|acharyas
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"created_at"`
}

// Broadcast is a one-shot push/notification blast to a segment.
type Broadcast struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Segment    string    `json:"segment"` // all|grihastas|acharyas
	Recipients int       `json:"recipients"`
	SentAt     time.Time `json:"sent_at"`
}
