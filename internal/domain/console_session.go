package domain

import "time"

// ConsoleSession binds a console login to the upstream backend token.
//
// Security notes:
// - The upstream token is never stored in clear text, only sealed with the
//   session encryption key (TokenSealed).
// - A session is revoked when the admin logs out or the backend rejects the
//   token with 401; revoked sessions are never reused.
type ConsoleSession struct {
	ID string `json:"id" gorm:"primaryKey;size:26"`

	AdminID       int64  `json:"admin_id" gorm:"index;not null"`
	Email         string `json:"email" gorm:"size:255"`
	IsSuper       bool   `json:"is_super"`
	IsLeadManager bool   `json:"is_lead_manager"`
	ProjectID     string `json:"project_id" gorm:"size:32"`

	TokenSealed []byte `json:"-" gorm:"not null"`

	CreatedAt    time.Time  `json:"created_at"`
	LastSeenAt   time.Time  `json:"last_seen_at"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt    *time.Time `json:"revoked_at" gorm:"index"`
	RevokeReason string     `json:"revoke_reason,omitempty" gorm:"size:64"`
}

const (
	RevokeLogout       = "logout"
	RevokeUnauthorized = "upstream_unauthorized"
)

func (s *ConsoleSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *ConsoleSession) IsRevoked() bool {
	return s.RevokedAt != nil
}

// Usable is true for sessions that are neither revoked nor expired.
func (s *ConsoleSession) Usable(now time.Time) bool {
	return !s.IsRevoked() && !s.IsExpired(now)
}

// Principal is the signed-in operator as seen by handlers.
type Principal struct {
	SessionID     string
	AdminID       int64
	Email         string
	IsSuper       bool
	IsLeadManager bool
	ProjectID     string
}

func (s *ConsoleSession) Principal() Principal {
	return Principal{
		SessionID:     s.ID,
		AdminID:       s.AdminID,
		Email:         s.Email,
		IsSuper:       s.IsSuper,
		IsLeadManager: s.IsLeadManager,
		ProjectID:     s.ProjectID,
	}
}
