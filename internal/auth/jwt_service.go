package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "dentalce/internal/errors"
	"dentalce/internal/model"
)

const (
	// DefaultSessionTTL is the session token lifetime when none is configured.
	DefaultSessionTTL = time.Hour
	// DefaultResetTTL is the reset token lifetime when none is configured.
	DefaultResetTTL = time.Hour

	tokenTypeSession = "session"
	tokenTypeReset   = "reset"
)

// ErrMissingSecret is returned at construction when a signing secret is unset.
var ErrMissingSecret = errors.New("token secret is not configured")

// SessionClaim is the identity carried by a session token.
type SessionClaim struct {
	ID    uint       `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// IsAdmin reports whether the claim carries the admin role.
func (c *SessionClaim) IsAdmin() bool {
	return c.Role == model.RoleAdmin
}

// ResetClaim is the payload of a password reset token.
type ResetClaim struct {
	UserID    uint      `json:"user_id"`
	TokenID   string    `json:"jti"`
	ExpiresAt time.Time `json:"exp"`
}

type sessionClaims struct {
	SessionClaim
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type resetClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenConfig holds the secrets and lifetimes for both token kinds.
type TokenConfig struct {
	SessionSecret string
	ResetSecret   string
	SessionTTL    time.Duration
	ResetTTL      time.Duration
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService signs and verifies session and reset tokens. Each kind has its
// own secret so a token minted for one purpose never verifies as the other.
type TokenService struct {
	sessionSecret []byte
	resetSecret   []byte
	sessionTTL    time.Duration
	resetTTL      time.Duration
	now           func() time.Time
}

// NewTokenService creates a token service. Missing secrets are a fatal
// configuration error.
func NewTokenService(cfg TokenConfig, opts ...Option) (*TokenService, error) {
	if cfg.SessionSecret == "" || cfg.ResetSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.SessionSecret == cfg.ResetSecret {
		return nil, errors.New("session and reset secrets must differ")
	}
	s := &TokenService{
		sessionSecret: []byte(cfg.SessionSecret),
		resetSecret:   []byte(cfg.ResetSecret),
		sessionTTL:    cfg.SessionTTL,
		resetTTL:      cfg.ResetTTL,
		now:           time.Now,
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = DefaultSessionTTL
	}
	if s.resetTTL <= 0 {
		s.resetTTL = DefaultResetTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionTTL returns the configured session lifetime.
func (s *TokenService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// ResetTTL returns the configured reset lifetime.
func (s *TokenService) ResetTTL() time.Duration {
	return s.resetTTL
}

// IssueSessionToken signs claim with the session secret and returns the token
// and its expiry.
func (s *TokenService) IssueSessionToken(claim SessionClaim) (string, time.Time, error) {
	if !claim.Role.Valid() {
		return "", time.Time{}, apperrors.ErrInvalidRole
	}
	now := s.now()
	exp := now.Add(s.sessionTTL)
	claims := &sessionClaims{
		SessionClaim: claim,
		TokenType:    tokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(claim.ID), 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, exp, nil
}

// VerifySessionToken returns the embedded claim, or ErrInvalidToken when the
// signature, type, role or expiry check fails.
func (s *TokenService) VerifySessionToken(tokenString string) (*SessionClaim, error) {
	claims := &sessionClaims{}
	if err := s.parse(tokenString, claims, s.sessionSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeSession {
		return nil, fmt.Errorf("%w: unexpected token type %q", apperrors.ErrInvalidToken, claims.TokenType)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role", apperrors.ErrInvalidToken)
	}
	claim := claims.SessionClaim
	return &claim, nil
}

// IssueResetToken signs a single-purpose reset token for userID.
func (s *TokenService) IssueResetToken(userID uint) (string, ResetClaim, error) {
	now := s.now()
	claim := ResetClaim{
		UserID:    userID,
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(s.resetTTL),
	}
	claims := &resetClaims{
		UserID:    userID,
		TokenType: tokenTypeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claim.TokenID,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(claim.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resetSecret)
	if err != nil {
		return "", ResetClaim{}, fmt.Errorf("sign reset token: %w", err)
	}
	return token, claim, nil
}

// VerifyResetToken returns the reset claim, or ErrInvalidToken when the token
// was not minted by IssueResetToken or has expired.
func (s *TokenService) VerifyResetToken(tokenString string) (*ResetClaim, error) {
	claims := &resetClaims{}
	if err := s.parse(tokenString, claims, s.resetSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeReset || claims.ID == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: not a reset token", apperrors.ErrInvalidToken)
	}
	return &ResetClaim{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return apperrors.ErrInvalidToken
	}
	return nil
}
