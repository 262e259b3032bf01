package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const issuer = "caradmin"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

// Claims identify a console session. The session id doubles as the jti.
type Claims struct {
	AdminID   int64  `json:"admin_id"`
	Email     string `json:"email"`
	IsSuper   bool   `json:"is_super"`
	ProjectID string `json:"project_id,omitempty"`
	jwtlib.RegisteredClaims
}

// SessionID is the console session the token belongs to
func (c *Claims) SessionID() string { return c.ID }

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// GenerateToken signs a token for the session. The expiry matches expiresAt
// so the token and the stored session end together.
func (s *Service) GenerateToken(sessionID string, claims Claims, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwtlib.RegisteredClaims{
		ID:        sessionID,
		Issuer:    issuer,
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		IssuedAt:  jwtlib.NewNumericDate(now),
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.ID == "" || claims.AdminID == 0 {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
