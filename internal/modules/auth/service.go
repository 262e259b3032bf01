package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"caradmin/internal/backend"
	"caradmin/internal/domain"
	"caradmin/internal/domain/admin"
	"caradmin/internal/middleware"
	"caradmin/internal/pkg/idx"
	"caradmin/internal/pkg/jwt"
	"caradmin/internal/pkg/metrics"
	"caradmin/internal/repository"
)

const (
	revokedRetention = 24 * time.Hour
	revokeTimeout    = 5 * time.Second
)

// Service signs operators in against the backend and keeps console sessions.
type Service struct {
	sessions SessionRepositoryInterface
	jwt      jwtService
	sealer   TokenSealer
	upstream *backend.Client
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func NewService(
	sessions SessionRepositoryInterface,
	jwt jwtService,
	sealer TokenSealer,
	upstream *backend.Client,
	ttl time.Duration,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		sessions: sessions,
		jwt:      jwt,
		sealer:   sealer,
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// SignIn exchanges credentials for an upstream token, stores it sealed in a
// new console session and returns a console JWT for that session.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	creds := backend.Credentials{Email: strings.TrimSpace(req.Email), Password: req.Password}

	token, err := s.upstream.SignIn(ctx, creds)
	if err != nil {
		if errors.Is(err, backend.ErrInvalidCredentials) {
			metrics.RecordSignin("invalid")
			return nil, ErrInvalidCredentials
		}
		metrics.RecordSignin("error")
		return nil, err
	}

	me, err := s.upstream.ForSession(token, nil).Me(ctx)
	if err != nil {
		metrics.RecordSignin("error")
		return nil, fmt.Errorf("load signed-in admin: %w", err)
	}

	sealed, err := s.sealer.SealString(token)
	if err != nil {
		return nil, fmt.Errorf("seal upstream token: %w", err)
	}

	now := s.now().UTC()
	sess := &domain.ConsoleSession{
		ID:            idx.New().String(),
		AdminID:       me.ID,
		Email:         me.Email,
		IsSuper:       me.IsSuper,
		IsLeadManager: me.IsLeadManager,
		ProjectID:     string(me.ProjectID),
		TokenSealed:   sealed,
		CreatedAt:     now,
		LastSeenAt:    now,
		ExpiresAt:     now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	jwtToken, err := s.jwt.GenerateToken(sess.ID, jwt.Claims{
		AdminID:   me.ID,
		Email:     me.Email,
		IsSuper:   me.IsSuper,
		ProjectID: string(me.ProjectID),
	}, sess.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.RecordSignin("ok")
	s.log.Info("console_signin", "admin_id", me.ID, "session_id", sess.ID)

	return &SignInResult{
		Admin:     me,
		Token:     jwtToken,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Authenticate implements middleware.Authenticator. The returned client
// revokes the session the first time the backend answers 401.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Principal, *backend.Client, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return domain.Principal{}, nil, err
	}

	sess, err := s.sessions.GetByID(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return domain.Principal{}, nil, middleware.ErrSessionExpired
		}
		return domain.Principal{}, nil, err
	}

	now := s.now()
	if !sess.Usable(now) {
		return domain.Principal{}, nil, middleware.ErrSessionExpired
	}

	upstreamToken, err := s.sealer.OpenString(sess.TokenSealed)
	if err != nil {
		// ключ сменили: старые сессии больше не расшифровать
		s.revoke(sess.ID, "unsealable")
		return domain.Principal{}, nil, middleware.ErrSessionExpired
	}

	if err := s.sessions.Touch(ctx, sess.ID, now); err != nil {
		s.log.Warn("session_touch_failed", "session_id", sess.ID, "error", err)
	}

	sessionID := sess.ID
	client := s.upstream.ForSession(upstreamToken, func() {
		s.revoke(sessionID, domain.RevokeUnauthorized)
	})
	return sess.Principal(), client, nil
}

// Logout revokes the session. Logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	revoked, err := s.sessions.Revoke(ctx, sessionID, domain.RevokeLogout)
	if err != nil {
		return err
	}
	if revoked {
		metrics.RecordSessionRevoked(domain.RevokeLogout)
	}
	return nil
}

// Me returns the current admin as the backend sees it.
func (s *Service) Me(ctx context.Context, client *backend.Client) (*admin.Admin, error) {
	if client == nil {
		return nil, ErrUnauthorized
	}
	return client.Me(ctx)
}

// CleanupStale removes expired sessions and sessions revoked more than a day ago.
func (s *Service) CleanupStale(ctx context.Context) (int64, error) {
	return s.sessions.DeleteStale(ctx, s.now().Add(-revokedRetention))
}

func (s *Service) revoke(sessionID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), revokeTimeout)
	defer cancel()

	revoked, err := s.sessions.Revoke(ctx, sessionID, reason)
	if err != nil {
		s.log.Error("session_revoke_failed", "session_id", sessionID, "reason", reason, "error", err)
		return
	}
	if revoked {
		metrics.RecordSessionRevoked(reason)
		s.log.Info("session_revoked", "session_id", sessionID, "reason", reason)
	}
}
