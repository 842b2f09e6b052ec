package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	Issuer          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	Editors         []Editor
}

// Editor is an account allowed to change FAQ content.
type Editor struct {
	Username     string
	DisplayName  string
	PasswordHash string
}

// LoginRequest captures login details.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed tokens.
type LoginResponse struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	Editor       EditorView `json:"editor"`
}

// EditorView trims sensitive fields.
type EditorView struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	Username  string
	TokenID   string
	TokenType string
	ExpiresAt time.Time
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
