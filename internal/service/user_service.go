package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"dentalce/internal/cache"
	apperrors "dentalce/internal/errors"
	"dentalce/internal/model"
	"dentalce/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// NewUserInput is an admin-created account.
type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserUpdate is an admin edit. Nil fields are left untouched.
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *string
}

// UserService exposes admin user management.
type UserService interface {
	CreateUser(ctx context.Context, in NewUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, id uint, in UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uint) error
	// EnsureAdmin creates the admin account or promotes and resets an
	// existing one. Reports whether a row was created.
	EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, bool, error)
}

type userService struct {
	repo       repository.UserRepository
	cache      *cache.Client
	bcryptCost int
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client, bcryptCost int) UserService {
	if bcryptCost <= 0 {
		bcryptCost = defaultBcryptCost
	}
	return &userService{repo: repo, cache: cache, bcryptCost: bcryptCost}
}

func (s *userService) cacheKey(id uint) string {
	return userCacheKey(id)
}

// userCacheKey is the cache entry GetUser fills for an account.
func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) CreateUser(ctx context.Context, in NewUserInput) (*model.User, error) {
	role, err := model.ParseRole(in.Role)
	if err != nil {
		return nil, apperrors.ErrInvalidRole
	}
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", apperrors.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.ErrWeakPassword
	}
	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, in UserUpdate) (*model.User, error) {
	// Read from the store, not the cache: the cached copy has no password hash.
	user, err := s.find(ctx, id)
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
		user.Email = email
	}
	if in.Role != nil {
		role, err := model.ParseRole(*in.Role)
		if err != nil {
			return nil, apperrors.ErrInvalidRole
		}
		user.Role = role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, name, email, password string) (*model.User, bool, error) {
	email = normalizeEmail(email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find admin: %w", err)
	}
	if existing == nil {
		user, err := s.CreateUser(ctx, NewUserInput{Name: name, Email: email, Password: password, Role: string(model.RoleAdmin)})
		if err != nil {
			return nil, false, err
		}
		return user, true, nil
	}

	if len(password) < minPasswordLength {
		return nil, false, apperrors.ErrWeakPassword
	}
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, false, err
	}
	existing.Role = model.RoleAdmin
	existing.PasswordHash = hash
	if name = strings.TrimSpace(name); name != "" {
		existing.Name = name
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("update admin: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(existing.ID))
	return existing, false, nil
}

func (s *userService) find(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
