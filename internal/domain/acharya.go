package domain

import "time"

// KYC application states.
const (
	KYCPending  = "pending"
	KYCApproved = "approved"
	KYCRejected = "rejected"
)

// Acharya is a service provider (priest / ritual specialist) account.
type Acharya struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	City        string    `json:"city,omitempty"`
	Specialties []string  `json:"specialties,omitempty"`
	Languages   []string  `json:"languages,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Verified    bool      `json:"verified"`
	KYCStatus   string    `json:"kyc_status"`
	CreatedAt   time.Time `json:"created_at"`
}

// KYCDocument is one uploaded verification artifact.
type KYCDocument struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // id_proof|address_proof|certification|bank_proof
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// KYCApplication is one Acharya's verification case with its documents.
type KYCApplication struct {
	ID           string        `json:"id"`
	AcharyaID    string        `json:"acharya_id"`
	AcharyaName  string        `json:"acharya_name"`
	Status       string        `json:"status"`
	SubmittedAt  time.Time     `json:"submitted_at"`
	ReviewedAt   *time.Time    `json:"reviewed_at,omitempty"`
	ReviewerID   string        `json:"reviewer_id,omitempty"`
	RejectReason string        `json:"reject_reason,omitempty"`
	Documents    []KYCDocument `json:"documents,omitempty"`
}

type KYCQuery struct {
	Status  string // "", pending, approved, rejected
	Page    int
	PerPage int
}

type KYCPage struct {
	Items   []KYCApplication `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}
