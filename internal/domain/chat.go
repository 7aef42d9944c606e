package domain

import "time"

// Attachment kinds.
const (
	AttachmentFile  = "file"
	AttachmentVoice = "voice"
)

// Attachment is an uploaded artifact referenced from a chat message:
// a document or a recorded voice note.
type Attachment struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	FileName        string    `json:"file_name"`
	ContentType     string    `json:"content_type"`
	SizeBytes       int64     `json:"size_bytes"`
	URL             string    `json:"url"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"` // voice notes only
	UploadedAt      time.Time `json:"uploaded_at"`
}

// ChatThread pairs a Grihasta and an Acharya around one booking.
type ChatThread struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	GrihastaID    string    `json:"grihasta_id"`
	AcharyaID     string    `json:"acharya_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	Unread        int       `json:"unread"`
}

type ChatMessage struct {
	ID         string      `json:"id"`
	ThreadID   string      `json:"thread_id"`
	SenderID   string      `json:"sender_id"`
	SenderRole string      `json:"sender_role"` // grihasta|acharya
	Body       string      `json:"body,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	SentAt     time.Time   `json:"sent_at"`
}
