package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/toolshelf/internal/config"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidSecret = errors.New("invalid admin secret")
	ErrNotConfigured = errors.New("admin authorization not configured")
)

// AdminScope is carried by every token allowed to delete catalog entries
const AdminScope = "tools:delete"

// AdminClaims are the claims of an admin token
type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenService exchanges the shared admin secret for short-lived HS256
// tokens and validates them.
type TokenService struct {
	secret     []byte
	signingKey []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
}

// NewTokenService creates a token service from the auth configuration
func NewTokenService(cfg *config.AuthConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.AdminSecret),
		signingKey: []byte(cfg.SigningKey),
		ttl:        cfg.TokenTTLDuration(),
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// VerifySecret compares secret with the configured admin secret in constant time
func (s *TokenService) VerifySecret(secret string) error {
	if len(s.secret) == 0 {
		return ErrNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(secret), s.secret) != 1 {
		return ErrInvalidSecret
	}
	return nil
}

// Issue verifies secret and returns a signed admin token and its lifetime
func (s *TokenService) Issue(secret string) (string, time.Duration, error) {
	if err := s.VerifySecret(secret); err != nil {
		return "", 0, err
	}
	if len(s.signingKey) == 0 {
		return "", 0, ErrNotConfigured
	}

	now := s.now()
	claims := AdminClaims{
		Scope: AdminScope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   "admin",
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, s.ttl, nil
}

// ValidateToken validates an admin token and returns its claims
func (s *TokenService) ValidateToken(tokenString string) (*AdminClaims, error) {
	if len(s.signingKey) == 0 {
		return nil, ErrNotConfigured
	}

	claims := &AdminClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != AdminScope {
		return nil, fmt.Errorf("%w: missing %s scope", ErrInvalidToken, AdminScope)
	}

	return claims, nil
}
