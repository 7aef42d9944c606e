package domain

import "time"

// AdminUser is the authenticated console operator, as cached alongside the
// token pair after login.
type AdminUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"` // admin|superadmin|support
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// TokenPair is what the auth endpoints return. RefreshToken may be empty
// when the backend chooses not to rotate it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"` // seconds
}

// EmailStatus answers the pre-login check: does the account exist, and has
// its password been set yet (invited admins set it via a one-time token).
type EmailStatus struct {
	Exists      bool `json:"exists"`
	PasswordSet bool `json:"password_set"`
}
