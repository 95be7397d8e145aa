package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "dentalce/internal/errors"
	"dentalce/internal/logger"
	"dentalce/internal/metrics"
	"dentalce/internal/model"
	"dentalce/internal/repository"
)

// Accepted layouts for an explicit issue date.
var issuedAtLayouts = []string{time.RFC3339, "2006-01-02"}

// CertificateService manages the per-user, per-course certificate lifecycle.
type CertificateService interface {
	// Request returns the certificate for the pair, creating it as pending
	// when none exists. Safe to call concurrently for the same pair.
	Request(ctx context.Context, userID, courseID uint) (*model.Certificate, error)
	// Get is Request followed by a read of the joined view.
	Get(ctx context.Context, userID, courseID uint) (*model.CertificateView, error)
	Approve(ctx context.Context, certID uint, issuedAt string) (*model.CertificateView, error)
	Revert(ctx context.Context, certID uint) (*model.CertificateView, error)
	Delete(ctx context.Context, certID uint) error
	List(ctx context.Context, filter repository.CertificateFilter) ([]model.CertificateView, error)
	ListForUser(ctx context.Context, userID uint) ([]model.CertificateView, error)
}

// CertificateOption configures the certificate service.
type CertificateOption func(*certificateService)

// WithCertificateClock replaces time.Now when resolving issue dates.
func WithCertificateClock(now func() time.Time) CertificateOption {
	return func(s *certificateService) {
		s.now = now
	}
}

type certificateService struct {
	certRepo   repository.CertificateRepository
	userRepo   repository.UserRepository
	courseRepo repository.CourseRepository
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

// NewCertificateService creates a new certificate service.
func NewCertificateService(
	certRepo repository.CertificateRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	m *metrics.Metrics,
	log *zap.Logger,
	opts ...CertificateOption,
) CertificateService {
	s := &certificateService{
		certRepo:   certRepo,
		userRepo:   userRepo,
		courseRepo: courseRepo,
		metrics:    m,
		log:        logger.OrNop(log),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *certificateService) Request(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	cert, err := s.certRepo.FindByUserCourse(ctx, userID, courseID)
	if err == nil {
		return cert, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Error("find certificate failed", zap.Uint("user_id", userID), zap.Uint("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("find certificate: %w", err)
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if _, err := s.courseRepo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	cert = &model.Certificate{
		UserID:   userID,
		CourseID: courseID,
		Status:   model.CertificateStatusPending,
	}
	if err := s.certRepo.Create(ctx, cert); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.log.Error("create certificate failed", zap.Uint("user_id", userID), zap.Uint("course_id", courseID), zap.Error(err))
			return nil, fmt.Errorf("create certificate: %w", err)
		}
		// A concurrent request inserted the row first; the unique index
		// kept it single, so read the winner.
		existing, err := s.certRepo.FindByUserCourse(ctx, userID, courseID)
		if err != nil {
			return nil, fmt.Errorf("re-read certificate after conflict: %w", err)
		}
		return existing, nil
	}

	s.metrics.CertificateTransition(metrics.TransitionCreated)
	return cert, nil
}

func (s *certificateService) Get(ctx context.Context, userID, courseID uint) (*model.CertificateView, error) {
	cert, err := s.Request(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cert.ID)
}

func (s *certificateService) Approve(ctx context.Context, certID uint, issuedAt string) (*model.CertificateView, error) {
	explicit, err := parseIssuedAt(issuedAt)
	if err != nil {
		return nil, err
	}

	cert, err := s.find(ctx, certID)
	if err != nil {
		return nil, err
	}

	cert.Approve(explicit, s.now())
	if err := s.certRepo.Update(ctx, cert); err != nil {
		s.log.Error("approve certificate failed", zap.Uint("certificate_id", certID), zap.Error(err))
		return nil, fmt.Errorf("update certificate: %w", err)
	}

	s.metrics.CertificateTransition(metrics.TransitionApproved)
	return s.view(ctx, cert.ID)
}

func (s *certificateService) Revert(ctx context.Context, certID uint) (*model.CertificateView, error) {
	cert, err := s.find(ctx, certID)
	if err != nil {
		return nil, err
	}

	cert.Revert()
	if err := s.certRepo.Update(ctx, cert); err != nil {
		s.log.Error("revert certificate failed", zap.Uint("certificate_id", certID), zap.Error(err))
		return nil, fmt.Errorf("update certificate: %w", err)
	}

	s.metrics.CertificateTransition(metrics.TransitionReverted)
	return s.view(ctx, cert.ID)
}

func (s *certificateService) Delete(ctx context.Context, certID uint) error {
	if err := s.certRepo.Delete(ctx, certID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCertificateNotFound
		}
		s.log.Error("delete certificate failed", zap.Uint("certificate_id", certID), zap.Error(err))
		return fmt.Errorf("delete certificate: %w", err)
	}
	s.metrics.CertificateTransition(metrics.TransitionDeleted)
	return nil
}

func (s *certificateService) List(ctx context.Context, filter repository.CertificateFilter) ([]model.CertificateView, error) {
	if filter.Status != "" && filter.Status != model.CertificateStatusPending && filter.Status != model.CertificateStatusApproved {
		return nil, fmt.Errorf("%w: unknown certificate status %q", apperrors.ErrInvalidInput, filter.Status)
	}
	views, err := s.certRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return views, nil
}

func (s *certificateService) ListForUser(ctx context.Context, userID uint) ([]model.CertificateView, error) {
	return s.List(ctx, repository.CertificateFilter{UserID: userID})
}

func (s *certificateService) find(ctx context.Context, certID uint) (*model.Certificate, error) {
	cert, err := s.certRepo.FindByID(ctx, certID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return cert, nil
}

func (s *certificateService) view(ctx context.Context, certID uint) (*model.CertificateView, error) {
	view, err := s.certRepo.FindView(ctx, certID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("load certificate view: %w", err)
	}
	return view, nil
}

// parseIssuedAt returns nil for an empty value.
func parseIssuedAt(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range issuedAtLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.ErrInvalidDate
}
