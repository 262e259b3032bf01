package repository

import (
	"context"
	"errors"
	"time"

	"caradmin/internal/domain"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("console session not found")

// ConsoleSessionRepository provides DB access for console sessions.
type ConsoleSessionRepository struct {
	db *gorm.DB
}

func NewConsoleSessionRepository(db *gorm.DB) *ConsoleSessionRepository {
	return &ConsoleSessionRepository{db: db}
}

func (r *ConsoleSessionRepository) Create(ctx context.Context, s *domain.ConsoleSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ConsoleSessionRepository) GetByID(ctx context.Context, id string) (*domain.ConsoleSession, error) {
	var s domain.ConsoleSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ConsoleSessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.ConsoleSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("last_seen_at", at.UTC()).Error
}

// Revoke marks the session revoked. It reports whether this call did it, so
// concurrent revocations of the same session agree on a single winner.
func (r *ConsoleSessionRepository) Revoke(ctx context.Context, id, reason string) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.ConsoleSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(map[string]any{"revoked_at": now, "revoke_reason": reason})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ConsoleSessionRepository) RevokeByAdmin(ctx context.Context, adminID int64, reason string) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.ConsoleSession{}).
		Where("admin_id = ? AND revoked_at IS NULL", adminID).
		Updates(map[string]any{"revoked_at": now, "revoke_reason": reason})
	return res.RowsAffected, res.Error
}

// DeleteStale removes expired sessions and sessions revoked before the cutoff.
func (r *ConsoleSessionRepository) DeleteStale(ctx context.Context, revokedBefore time.Time) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", now, revokedBefore.UTC()).
		Delete(&domain.ConsoleSession{})
	return res.RowsAffected, res.Error
}
