package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sentinel errors returned by token validation. Handlers that must not
// leak token state (logout, verify) collapse all of these into a single
// observable outcome.
var (
	// ErrInvalidToken indicates the token is malformed or its signature
	// does not verify
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed
	ErrExpiredToken = errors.New("token expired")

	// ErrRevokedToken indicates the token was explicitly revoked
	ErrRevokedToken = errors.New("token revoked")

	// ErrWrongTokenType indicates an access token was presented where a
	// refresh token was required, or vice versa
	ErrWrongTokenType = errors.New("unexpected token type")
)

const (
	// minSecretLength is the minimum HMAC secret length in bytes
	minSecretLength = 32

	defaultAccessTokenTTL  = time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultIssuer          = "snapfile"
)

// Config holds the signing and lifetime policy for issued tokens.
type Config struct {
	// Secret is the symmetric HS256 signing secret, at least 32 bytes
	Secret string

	// Issuer is the iss claim stamped on every token
	Issuer string

	// AccessTokenTTL is the access token lifetime (default 1h)
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the refresh token lifetime (default 7d)
	RefreshTokenTTL time.Duration
}

// Service issues, validates, revokes and rotates HS256-signed tokens.
//
// Tokens are bearer credentials and are not stored server-side; the only
// server state is the revocation set, keyed by the jti claim.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    *RevocationSet
}

// NewService creates a token service from the given config.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters, got %d", minSecretLength, len(cfg.Secret))
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = defaultAccessTokenTTL
	}
	if cfg.RefreshTokenTTL == 0 {
		cfg.RefreshTokenTTL = defaultRefreshTokenTTL
	}

	return &Service{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		revoked:    NewRevocationSet(),
	}, nil
}

// IssueAccessToken signs a new access token for the given subject.
func (s *Service) IssueAccessToken(subject string) (string, error) {
	return s.issue(subject, TokenTypeAccess, s.accessTTL)
}

// IssueRefreshToken signs a new refresh token for the given subject.
func (s *Service) IssueRefreshToken(subject string) (string, error) {
	return s.issue(subject, TokenTypeRefresh, s.refreshTTL)
}

// GenerateTokenPair issues a fresh access/refresh pair for the subject.
func (s *Service) GenerateTokenPair(subject string) (*TokenPair, error) {
	access, err := s.IssueAccessToken(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refresh, err := s.IssueRefreshToken(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate parses and verifies a token of either type.
//
// Fails with ErrExpiredToken, ErrRevokedToken, or ErrInvalidToken for
// everything else (bad signature, malformed input, wrong algorithm).
func (s *Service) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if s.revoked.Contains(claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// ValidateAccessToken validates a token and requires the access type.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateTyped(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken validates a token and requires the refresh type.
func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateTyped(tokenString, TokenTypeRefresh)
}

// Revoke adds the token's ID to the revocation set.
//
// Revocation is idempotent, and revoking a token that no longer (or never
// did) verify is a no-op rather than an error: there is nothing to revoke.
func (s *Service) Revoke(tokenString string) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return
	}

	expiresAt := time.Now().Add(s.refreshTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.revoked.Add(claims.ID, expiresAt)
}

// Rotate performs the standard refresh rotation: validate the refresh
// token, revoke it, and issue a new pair. The old refresh token never
// validates again after a successful rotation.
func (s *Service) Rotate(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	s.Revoke(refreshToken)
	return s.GenerateTokenPair(claims.Subject)
}

// SweepRevoked drops revocation entries for tokens that have expired on
// their own and returns how many were removed.
func (s *Service) SweepRevoked() int {
	return s.revoked.Sweep(time.Now())
}

// RevokedCount returns the number of live revocation entries.
func (s *Service) RevokedCount() int {
	return s.revoked.Len()
}

func (s *Service) validateTyped(tokenString string, want TokenType) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *Service) issue(subject string, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
