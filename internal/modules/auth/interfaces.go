package auth

import (
	"context"
	"time"

	"caradmin/internal/domain"
	"caradmin/internal/pkg/jwt"
)

// SessionRepositoryInterface: only the methods auth service uses
type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *domain.ConsoleSession) error
	GetByID(ctx context.Context, id string) (*domain.ConsoleSession, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Revoke(ctx context.Context, id, reason string) (bool, error)
	DeleteStale(ctx context.Context, revokedBefore time.Time) (int64, error)
}

type jwtService interface {
	GenerateToken(sessionID string, claims jwt.Claims, expiresAt time.Time) (string, error)
	ValidateToken(tokenStr string) (*jwt.Claims, error)
}

// TokenSealer encrypts upstream tokens at rest
type TokenSealer interface {
	SealString(s string) ([]byte, error)
	OpenString(sealed []byte) (string, error)
}
