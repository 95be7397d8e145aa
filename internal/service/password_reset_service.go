package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dentalce/internal/auth"
	apperrors "dentalce/internal/errors"
	"dentalce/internal/logger"
	"dentalce/internal/mailer"
	"dentalce/internal/metrics"
	"dentalce/internal/repository"
)

const (
	resetPath = "/client/reset-password"

	defaultResetSendTimeout = 10 * time.Second
)

// PasswordResetService issues and redeems password reset tokens.
type PasswordResetService interface {
	// RequestReset never reports whether email belongs to an account. The
	// link is issued and mailed in the background, so known and unknown
	// emails return after the same lookup.
	RequestReset(ctx context.Context, email string) error
	// Redeem sets a new password from a reset token. Single use is enforced
	// through Redis; while Redis is unreachable a token stays redeemable
	// until it expires.
	Redeem(ctx context.Context, token, newPassword string) error
}

// ResetOption configures the password reset service.
type ResetOption func(*passwordResetService)

// WithResetDispatcher replaces the goroutine that delivers reset emails.
func WithResetDispatcher(dispatch func(func())) ResetOption {
	return func(s *passwordResetService) {
		s.dispatch = dispatch
	}
}

// WithResetSendTimeout bounds a single reset email delivery.
func WithResetSendTimeout(d time.Duration) ResetOption {
	return func(s *passwordResetService) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// PasswordResetConfig holds the reset flow settings.
type PasswordResetConfig struct {
	BaseURL    string
	BcryptCost int
}

type passwordResetService struct {
	userRepo    repository.UserRepository
	tokens      *auth.TokenService
	store       auth.TokenStoreInterface
	mailer      mailer.Mailer
	baseURL     string
	bcryptCost  int
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
	dispatch    func(func())
	sendTimeout time.Duration
}

// NewPasswordResetService creates a new password reset service.
func NewPasswordResetService(
	userRepo repository.UserRepository,
	tokens *auth.TokenService,
	store auth.TokenStoreInterface,
	mail mailer.Mailer,
	cfg PasswordResetConfig,
	m *metrics.Metrics,
	log *zap.Logger,
	opts ...ResetOption,
) PasswordResetService {
	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = defaultBcryptCost
	}
	s := &passwordResetService{
		userRepo:    userRepo,
		tokens:      tokens,
		store:       store,
		mailer:      mail,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		bcryptCost:  cost,
		metrics:     m,
		log:         logger.OrNop(log),
		now:         time.Now,
		dispatch:    func(f func()) { go f() },
		sendTimeout: defaultResetSendTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	s.metrics.PasswordResetRequested()

	email = normalizeEmail(email)
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("reset lookup failed", zap.Error(err))
		}
		return nil
	}

	sendCtx := context.WithoutCancel(ctx)
	userID, to := user.ID, user.Email
	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(sendCtx, s.sendTimeout)
		defer cancel()
		s.sendLink(ctx, userID, to)
	})
	return nil
}

func (s *passwordResetService) sendLink(ctx context.Context, userID uint, email string) {
	token, _, err := s.tokens.IssueResetToken(userID)
	if err != nil {
		s.log.Error("issue reset token failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}

	link := s.baseURL + resetPath + "?token=" + url.QueryEscape(token)
	if err := s.mailer.SendPasswordReset(ctx, email, link); err != nil {
		s.log.Error("send reset email failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *passwordResetService) Redeem(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return apperrors.ErrWeakPassword
	}

	claim, err := s.tokens.VerifyResetToken(token)
	if err != nil {
		return apperrors.ErrInvalidOrExpired
	}

	fresh, err := s.store.MarkResetUsed(ctx, claim.TokenID, claim.ExpiresAt.Sub(s.now()))
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	if !fresh {
		return apperrors.ErrInvalidOrExpired
	}

	hash, err := hashPassword(newPassword, s.bcryptCost)
	if err != nil {
		_ = s.store.ReleaseReset(ctx, claim.TokenID)
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, claim.UserID, hash); err != nil {
		_ = s.store.ReleaseReset(ctx, claim.TokenID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOrExpired
		}
		s.log.Error("update password failed", zap.Uint("user_id", claim.UserID), zap.Error(err))
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
