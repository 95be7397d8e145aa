package service

import (
	"context"
	"encoding/json"
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

const (
	defaultCatalogCacheTTL = 5 * time.Minute
	catalogKeyPrefix       = "catalog:"
)

// CourseInput is the writable part of a course.
type CourseInput struct {
	Title         string
	Author        string
	Description   string
	Objectives    string
	Audience      string
	Category      string
	SpecialtyID   *uint
	CoverImageURL string
}

// ClassroomView is a classroom with its status computed at read time.
type ClassroomView struct {
	model.Classroom
	Status model.ClassroomStatus `json:"status"`
}

// CourseDetail is a course with its classrooms and total CE credits.
type CourseDetail struct {
	model.Course
	Classrooms   []ClassroomView `json:"classrooms"`
	TotalCredits decimal.Decimal `json:"total_credits"`
}

// CourseService handles the course catalog.
type CourseService interface {
	ListCourses(ctx context.Context, filter repository.CourseFilter) ([]model.Course, error)
	GetCourse(ctx context.Context, id uint) (*CourseDetail, error)
	CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error)
	UpdateCourse(ctx context.Context, id uint, in CourseInput) (*model.Course, error)
	DeleteCourse(ctx context.Context, id uint) error
}

// cachedCourse is what the catalog stores; statuses are derived after reading.
type cachedCourse struct {
	Course     model.Course      `json:"course"`
	Classrooms []model.Classroom `json:"classrooms"`
}

type courseService struct {
	repo          repository.CourseRepository
	specialtyRepo repository.SpecialtyRepository
	cache         *cache.Client
	ttl           time.Duration
	now           func() time.Time
}

// NewCourseService creates a new course service. Reads are cached for ttl.
func NewCourseService(repo repository.CourseRepository, specialtyRepo repository.SpecialtyRepository, cache *cache.Client, ttl time.Duration) CourseService {
	if ttl <= 0 {
		ttl = defaultCatalogCacheTTL
	}
	return &courseService{
		repo:          repo,
		specialtyRepo: specialtyRepo,
		cache:         cache,
		ttl:           ttl,
		now:           time.Now,
	}
}

func (s *courseService) cacheKey(id uint) string {
	return fmt.Sprintf("%scourse:%d", catalogKeyPrefix, id)
}

func (s *courseService) listKey(filter repository.CourseFilter) string {
	return fmt.Sprintf("%scourses:%s:%d", catalogKeyPrefix, strings.ToLower(filter.Category), filter.SpecialtyID)
}

// ListCourses lists catalog courses with caching.
func (s *courseService) ListCourses(ctx context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	key := s.listKey(filter)
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached []model.Course
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	courses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	if payload, err := json.Marshal(courses); err == nil {
		_ = s.cache.Set(ctx, key, payload, s.ttl)
	}
	return courses, nil
}

// GetCourse retrieves a course with classrooms. Statuses reflect the time of
// the call even when the course comes from cache.
func (s *courseService) GetCourse(ctx context.Context, id uint) (*CourseDetail, error) {
	var entry *cachedCourse
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached cachedCourse
		if err := json.Unmarshal(data, &cached); err == nil {
			entry = &cached
		}
	}

	if entry == nil {
		course, err := s.repo.FindByIDWithClassrooms(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCourseNotFound
			}
			return nil, fmt.Errorf("find course: %w", err)
		}
		entry = &cachedCourse{Course: *course, Classrooms: course.Classrooms}
		if payload, err := json.Marshal(entry); err == nil {
			_ = s.cache.Set(ctx, s.cacheKey(id), payload, s.ttl)
		}
	}

	return s.detail(entry), nil
}

func (s *courseService) detail(entry *cachedCourse) *CourseDetail {
	now := s.now()
	views := make([]ClassroomView, 0, len(entry.Classrooms))
	for i := range entry.Classrooms {
		c := entry.Classrooms[i]
		views = append(views, ClassroomView{Classroom: c, Status: c.StatusAt(now)})
	}
	return &CourseDetail{
		Course:       entry.Course,
		Classrooms:   views,
		TotalCredits: model.TotalCredits(entry.Classrooms),
	}
}

// CreateCourse adds a course to the catalog.
func (s *courseService) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	course := &model.Course{}
	if err := s.apply(ctx, course, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return course, nil
}

// UpdateCourse replaces the writable fields of a course.
func (s *courseService) UpdateCourse(ctx context.Context, id uint, in CourseInput) (*model.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	if err := s.apply(ctx, course, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return course, nil
}

// DeleteCourse removes a course with its classrooms and certificates.
func (s *courseService) DeleteCourse(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return nil
}

func (s *courseService) apply(ctx context.Context, course *model.Course, in CourseInput) error {
	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)
	if title == "" || author == "" {
		return fmt.Errorf("%w: title and author are required", apperrors.ErrInvalidInput)
	}
	if in.SpecialtyID != nil {
		specialty, err := s.specialtyRepo.FindByID(ctx, *in.SpecialtyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrSpecialtyNotFound
			}
			return fmt.Errorf("find specialty: %w", err)
		}
		course.Specialty = specialty
	} else {
		course.Specialty = nil
	}

	course.Title = title
	course.Author = author
	course.Description = in.Description
	course.Objectives = in.Objectives
	course.Audience = in.Audience
	course.Category = strings.TrimSpace(in.Category)
	course.SpecialtyID = in.SpecialtyID
	course.CoverImageURL = in.CoverImageURL
	return nil
}

// invalidateCatalog drops every cached catalog entry.
func invalidateCatalog(ctx context.Context, c *cache.Client) {
	_ = c.DeletePrefix(ctx, catalogKeyPrefix)
}
