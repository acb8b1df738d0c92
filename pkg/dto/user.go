package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	AuthProvider string     `json:"auth_provider"`
	Status       string     `json:"status"`
	LastSignIn   *time.Time `json:"last_sign_in,omitempty"`
}

type UpdateUserRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}
