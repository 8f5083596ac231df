package dto

import "time"

// ClientLoginRequest payload for client logins (clients log in by id).
type ClientLoginRequest struct {
	ClientID string `json:"client_id"`
	Password string `json:"password"`
}

// SpecialistLoginRequest payload for specialist logins.
type SpecialistLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// FixedLoginRequest payload for the admin, developer and owner principals.
type FixedLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SetPasswordRequest completes the first-login set-password flow.
type SetPasswordRequest struct {
	Subject  string `json:"subject"` // "client" or "specialist"
	ID       string `json:"id"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
