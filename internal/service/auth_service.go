package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dentalce/internal/auth"
	apperrors "dentalce/internal/errors"
	"dentalce/internal/logger"
	"dentalce/internal/metrics"
	"dentalce/internal/model"
	"dentalce/internal/repository"
)

const (
	defaultBcryptCost = 10
	minPasswordLength = 8
)

// ProfileUpdate carries the fields a user may change on their own account.
// Nil or empty fields are left untouched.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// CacheInvalidator drops cached entries after a write. *cache.Client
// satisfies it.
type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

// AuthService handles signup, login and self-service profile operations.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, user *model.User, err error)
	Profile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	cache      CacheInvalidator
	tokens     *auth.TokenService
	bcryptCost int
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, cache CacheInvalidator, tokens *auth.TokenService, bcryptCost int, m *metrics.Metrics, log *zap.Logger) AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = defaultBcryptCost
	}
	return &authService{
		userRepo:   userRepo,
		cache:      cache,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		metrics:    m,
		log:        logger.OrNop(log),
	}
}

// Signup creates a client account with a hashed password.
func (s *authService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", apperrors.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}

	// Check if user already exists
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleClient,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		s.log.Error("create user failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("login lookup failed", zap.Error(err))
			return "", time.Time{}, nil, fmt.Errorf("find user: %w", err)
		}
		s.metrics.Login(metrics.LoginFailure)
		return "", time.Time{}, nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.Login(metrics.LoginFailure)
		return "", time.Time{}, nil, apperrors.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.IssueSessionToken(auth.SessionClaim{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("issue session token: %w", err)
	}

	s.metrics.Login(metrics.LoginSuccess)
	return token, exp, user, nil
}

// Profile returns the caller's own account.
func (s *authService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile edits name, email and password. Changing the password
// requires the current one.
func (s *authService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrInvalidInput)
		}
		user.Name = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", apperrors.ErrInvalidInput)
		}
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
				return nil, apperrors.ErrEmailExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check user existence: %w", err)
			}
			user.Email = email
		}
	}
	if in.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return nil, apperrors.ErrInvalidCredentials
		}
		if len(in.NewPassword) < minPasswordLength {
			return nil, apperrors.ErrWeakPassword
		}
		hash, err := hashPassword(in.NewPassword, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		s.log.Error("update profile failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("update user: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
