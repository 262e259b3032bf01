package auth

import (
	"time"

	"caradmin/internal/domain/admin"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResult struct {
	Admin     *admin.Admin
	Token     string
	SessionID string
	ExpiresAt time.Time
}

type SignInResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Admin     *admin.Admin `json:"admin"`
}

type MeResponse struct {
	Admin       *admin.Admin      `json:"admin"`
	Permissions admin.Permissions `json:"permissions"`
	SessionID   string            `json:"session_id"`
}
