package domain

import "time"

// AuditEntry is one immutable admin-action record. Entries are produced by
// the backend; the console only queries and exports them.
type AuditEntry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"` // e.g. user.suspend, kyc.approve, coupon.create
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	Detail     string    `json:"detail,omitempty"`
	IP         string    `json:"ip,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditQuery filters the log. The export endpoints take the same filter so
// that an export always matches the view that requested it.
type AuditQuery struct {
	Actor      string // actor id or email
	Action     string
	TargetKind string
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     *string
}

type AuditPage struct {
	Items      []AuditEntry `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}
