package domain

import (
	"context"
	"io"
)

// CredentialStore is the persisted-session boundary: access token, optional
// refresh token, and the cached admin user live under fixed keys. The API
// client only ever touches credentials through this interface, so tests and
// alternative frontends can inject their own.
type CredentialStore interface {
	AccessToken() string
	RefreshToken() string
	User() (AdminUser, bool)

	// SetTokens stores a new access token; refresh may be empty, in which
	// case the previously stored refresh token is kept.
	SetTokens(access, refresh string) error
	SetUser(u AdminUser) error
	Clear() error
}

// AuditSource pages through the audit log. Export re-queries through this
// port with the exact filter of the view being exported.
type AuditSource interface {
	ListAudit(ctx context.Context, q AuditQuery) (AuditPage, error)
}

// AnalyticsSource produces the joined dashboard aggregate.
type AnalyticsSource interface {
	Dashboard(ctx context.Context) (Dashboard, error)
}

// KYCSource reads verification cases and streams their documents.
type KYCSource interface {
	Application(ctx context.Context, id string) (KYCApplication, error)
	FetchDocument(ctx context.Context, doc KYCDocument) (io.ReadCloser, error)
}
