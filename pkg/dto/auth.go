package dto

import "github.com/dimitrije/gatekeeper/internal/models"

type SignInRequest struct {
	// Scopes overrides the configured default when present, even if empty.
	Scopes       *[]string `json:"scopes"`
	RedirectTo   string    `json:"redirect_to"`
	RefreshToken *bool     `json:"refresh_token"`
}

type SignInResponse struct {
	URL     string               `json:"url,omitempty"`
	User    *models.EnhancedUser `json:"user"`
	Session *models.Session      `json:"session"`
}

type MagicLinkRequest struct {
	Email string `json:"email"`
}

type VerifyMagicLinkRequest struct {
	Token string `json:"token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	User *models.EnhancedUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
