package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"dentalce/internal/auth"
	apperrors "dentalce/internal/errors"
	"dentalce/internal/model"
)

func newTestTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		SessionSecret: "test-session-secret",
		ResetSecret:   "test-reset-secret",
		SessionTTL:    time.Hour,
		ResetTTL:      time.Hour,
	})
	require.NoError(t, err)
	return tokens
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:      "successful signup",
			email:     "Test@Example.com ",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:      "user already exists",
			email:     "existing@example.com",
			password:  "password123",
			nameField: "Existing User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailExists,
		},
		{
			name:      "duplicate detected by the unique index",
			email:     "race@example.com",
			password:  "password123",
			nameField: "Racer",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailExists,
		},
		{
			name:          "short password",
			email:         "short@example.com",
			password:      "abc",
			nameField:     "Short",
			setupMock:     func(m *MockUserRepository) {},
			expectedError: apperrors.ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewAuthService(mockRepo, nil, newTestTokenService(t), bcrypt.MinCost, nil, nil)
			user, err := service.Signup(context.Background(), tt.nameField, tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "test@example.com", user.Email)
				assert.Equal(t, tt.nameField, user.Name)
				assert.Equal(t, model.RoleClient, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash := mustHash(t, "password123")

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           3,
					Email:        "test@example.com",
					PasswordHash: hash,
					Role:         model.RoleAdmin,
				}, nil)
			},
			expectedError: nil,
		},
		{
			name:     "invalid credentials - user not found",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "invalid credentials - wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID: 3, Email: "test@example.com", PasswordHash: hash, Role: model.RoleClient,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			tokens := newTestTokenService(t)
			service := NewAuthService(mockRepo, nil, tokens, bcrypt.MinCost, nil, nil)

			token, exp, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

				claim, err := tokens.VerifySessionToken(token)
				require.NoError(t, err)
				assert.Equal(t, uint(3), claim.ID)
				assert.Equal(t, model.RoleAdmin, claim.Role)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginStoreFailureIsNotCredentialsError(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("connection refused"))

	service := NewAuthService(mockRepo, nil, newTestTokenService(t), bcrypt.MinCost, nil, nil)
	_, _, _, err := service.Login(context.Background(), "a@example.com", "password123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	hash := mustHash(t, "password123")
	newName := "Dr. Jane"
	newEmail := "jane@example.com"

	t.Run("changes name, email and password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Name: "Jane", Email: "old@example.com", PasswordHash: hash, Role: model.RoleClient}, nil)
		mockRepo.On("FindByEmail", mock.Anything, newEmail).Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		service := NewAuthService(mockRepo, nil, newTestTokenService(t), bcrypt.MinCost, nil, nil)
		user, err := service.UpdateProfile(context.Background(), 5, ProfileUpdate{
			Name:            &newName,
			Email:           &newEmail,
			CurrentPassword: "password123",
			NewPassword:     "new-password-1",
		})

		require.NoError(t, err)
		assert.Equal(t, newName, user.Name)
		assert.Equal(t, newEmail, user.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new-password-1")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("drops the cached admin view of the account", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Name: "Jane", Email: "old@example.com", PasswordHash: hash}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
		mockCache := new(MockCacheInvalidator)
		mockCache.On("Delete", mock.Anything, "user:5").Return(nil)

		service := NewAuthService(mockRepo, mockCache, newTestTokenService(t), bcrypt.MinCost, nil, nil)
		_, err := service.UpdateProfile(context.Background(), 5, ProfileUpdate{Name: &newName})

		require.NoError(t, err)
		mockCache.AssertExpectations(t)
	})

	t.Run("failed update keeps the cache", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Name: "Jane", Email: "old@example.com", PasswordHash: hash}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(errors.New("db down"))
		mockCache := new(MockCacheInvalidator)

		service := NewAuthService(mockRepo, mockCache, newTestTokenService(t), bcrypt.MinCost, nil, nil)
		_, err := service.UpdateProfile(context.Background(), 5, ProfileUpdate{Name: &newName})

		assert.Error(t, err)
		mockCache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("wrong current password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Email: "old@example.com", PasswordHash: hash}, nil)

		service := NewAuthService(mockRepo, nil, newTestTokenService(t), bcrypt.MinCost, nil, nil)
		_, err := service.UpdateProfile(context.Background(), 5, ProfileUpdate{CurrentPassword: "nope", NewPassword: "new-password-1"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("email taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(&model.User{ID: 5, Email: "old@example.com", PasswordHash: hash}, nil)
		mockRepo.On("FindByEmail", mock.Anything, newEmail).Return(&model.User{ID: 6, Email: newEmail}, nil)

		service := NewAuthService(mockRepo, nil, newTestTokenService(t), bcrypt.MinCost, nil, nil)
		_, err := service.UpdateProfile(context.Background(), 5, ProfileUpdate{Email: &newEmail})

		assert.ErrorIs(t, err, apperrors.ErrEmailExists)
	})

	t.Run("unknown user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		service := NewAuthService(mockRepo, nil, newTestTokenService(t), bcrypt.MinCost, nil, nil)
		_, err := service.UpdateProfile(context.Background(), 9, ProfileUpdate{Name: &newName})

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
