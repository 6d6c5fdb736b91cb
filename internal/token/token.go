// Package token mints and validates the signed bearer credentials used by
// the API: short-lived access tokens and long-lived refresh tokens. Tokens
// are self-contained HS256 JWTs; nothing is persisted and nothing is revoked
// server-side — a refresh token stays valid until natural expiry.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type tags carried in the "type" claim. An access token must never be
// accepted where a refresh token is required, and vice versa.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrInvalidToken indicates the token is malformed, expired, or the
	// signature did not verify.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrWrongTokenType indicates a structurally valid token of the wrong
	// type tag was presented.
	ErrWrongTokenType = errors.New("token: wrong token type")
)

// Claims is the claim set carried by every taskdeck token.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// Service issues and validates token pairs. The signing secret and TTLs come
// from the process configuration; Service holds them for its lifetime.
type Service struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a token service.
func NewService(secret, issuer string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token: secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token: TTLs must be positive")
	}
	s := &Service{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Pair is a freshly minted access+refresh token pair.
type Pair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// IssueAccess signs an access token for the given user id.
func (s *Service) IssueAccess(userID string) (string, time.Time, error) {
	return s.issue(userID, TypeAccess, s.accessTTL)
}

// IssueRefresh signs a refresh token for the given user id.
func (s *Service) IssueRefresh(userID string) (string, time.Time, error) {
	return s.issue(userID, TypeRefresh, s.refreshTTL)
}

// IssuePair mints a new access+refresh pair for the given user id.
func (s *Service) IssuePair(userID string) (Pair, error) {
	access, accessExp, err := s.IssueAccess(userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := s.IssueRefresh(userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "bearer",
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *Service) issue(userID, tokenType string, ttl time.Duration) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, errors.New("token: userID is required")
	}

	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return signed, exp, nil
}

// Validate verifies signature and time claims and returns the claim set.
// It does not check the token type; callers compare Claims.TokenType against
// the value they expect (see RequireType).
func (s *Service) Validate(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := s.validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) validateClaims(claims *Claims) error {
	if s.issuer != "" && claims.Issuer != s.issuer {
		return fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	if claims.TokenType != TypeAccess && claims.TokenType != TypeRefresh {
		return fmt.Errorf("unknown token type: %s", claims.TokenType)
	}
	// Allow a small clock skew of 5 seconds when validating issued-at.
	if claims.IssuedAt.Time.After(s.now().UTC().Add(5 * time.Second)) {
		return errors.New("token issued in the future")
	}
	return nil
}

// RequireType fails with ErrWrongTokenType unless the claims carry the
// expected type tag.
func RequireType(claims *Claims, expected string) error {
	if claims == nil || claims.TokenType != expected {
		return ErrWrongTokenType
	}
	return nil
}
