package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dentalce/internal/cache"
	apperrors "dentalce/internal/errors"
	"dentalce/internal/model"
	"dentalce/internal/repository"
)

// ClassroomInput is the writable part of a classroom.
type ClassroomInput struct {
	Title             string
	Speaker           string
	VideoURL          string
	Description       string
	Objectives        string
	PublishedDate     time.Time
	ExpirationDate    *time.Time
	DiscussionEnabled bool
	AssessmentLinks   []string
	CECredits         decimal.Decimal
}

// ClassroomService handles classroom management for courses.
type ClassroomService interface {
	CreateClassroom(ctx context.Context, courseID uint, in ClassroomInput) (*ClassroomView, error)
	GetClassroom(ctx context.Context, id uint) (*ClassroomView, error)
	ListClassrooms(ctx context.Context, courseID uint) ([]ClassroomView, error)
	UpdateClassroom(ctx context.Context, id uint, in ClassroomInput) (*ClassroomView, error)
	DeleteClassroom(ctx context.Context, id uint) error
}

type classroomService struct {
	repo       repository.ClassroomRepository
	courseRepo repository.CourseRepository
	cache      *cache.Client
	validator  *ClassroomValidator
	now        func() time.Time
}

// NewClassroomService creates a new classroom service.
func NewClassroomService(repo repository.ClassroomRepository, courseRepo repository.CourseRepository, cache *cache.Client) ClassroomService {
	return &classroomService{
		repo:       repo,
		courseRepo: courseRepo,
		cache:      cache,
		validator:  NewClassroomValidator(),
		now:        time.Now,
	}
}

// CreateClassroom adds a classroom to an existing course.
func (s *classroomService) CreateClassroom(ctx context.Context, courseID uint, in ClassroomInput) (*ClassroomView, error) {
	if err := s.validator.ValidateClassroom(in); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	classroom := &model.Classroom{CourseID: courseID}
	s.apply(classroom, in)
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, fmt.Errorf("create classroom: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return s.view(classroom), nil
}

// GetClassroom retrieves a classroom by ID.
func (s *classroomService) GetClassroom(ctx context.Context, id uint) (*ClassroomView, error) {
	classroom, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(classroom), nil
}

// ListClassrooms lists the classrooms of a course.
func (s *classroomService) ListClassrooms(ctx context.Context, courseID uint) ([]ClassroomView, error) {
	if _, err := s.courseRepo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	classrooms, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	views := make([]ClassroomView, 0, len(classrooms))
	for i := range classrooms {
		views = append(views, *s.view(&classrooms[i]))
	}
	return views, nil
}

// UpdateClassroom replaces the writable fields of a classroom.
func (s *classroomService) UpdateClassroom(ctx context.Context, id uint, in ClassroomInput) (*ClassroomView, error) {
	if err := s.validator.ValidateClassroom(in); err != nil {
		return nil, err
	}
	classroom, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.apply(classroom, in)
	if err := s.repo.Update(ctx, classroom); err != nil {
		return nil, fmt.Errorf("update classroom: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return s.view(classroom), nil
}

// DeleteClassroom removes a classroom.
func (s *classroomService) DeleteClassroom(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrClassroomNotFound
		}
		return fmt.Errorf("delete classroom: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return nil
}

func (s *classroomService) find(ctx context.Context, id uint) (*model.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClassroomNotFound
		}
		return nil, fmt.Errorf("find classroom: %w", err)
	}
	return classroom, nil
}

func (s *classroomService) apply(c *model.Classroom, in ClassroomInput) {
	c.Title = strings.TrimSpace(in.Title)
	c.Speaker = strings.TrimSpace(in.Speaker)
	c.VideoURL = strings.TrimSpace(in.VideoURL)
	c.Description = in.Description
	c.Objectives = in.Objectives
	c.PublishedDate = in.PublishedDate.UTC()
	c.ExpirationDate = nil
	if in.ExpirationDate != nil {
		exp := in.ExpirationDate.UTC()
		c.ExpirationDate = &exp
	}
	c.DiscussionEnabled = in.DiscussionEnabled
	c.SetAssessmentLinks(s.validator.compactLinks(in.AssessmentLinks))
	c.CECredits = in.CECredits
}

func (s *classroomService) view(c *model.Classroom) *ClassroomView {
	return &ClassroomView{Classroom: *c, Status: c.StatusAt(s.now())}
}
