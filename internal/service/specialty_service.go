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

// DefaultSpecialties are the dental specialties seeded on a fresh install.
var DefaultSpecialties = []string{
	"Dental Public Health",
	"Endodontics",
	"Oral and Maxillofacial Pathology",
	"Oral and Maxillofacial Radiology",
	"Oral and Maxillofacial Surgery",
	"Orthodontics",
	"Pediatric Dentistry",
	"Periodontics",
	"Prosthodontics",
	"Dental Anesthesiology",
	"Oral Medicine",
	"Orofacial Pain",
}

// SpecialtyService handles the specialty lookup table.
type SpecialtyService interface {
	ListSpecialties(ctx context.Context) ([]model.Specialty, error)
	CreateSpecialty(ctx context.Context, name string) (*model.Specialty, error)
	DeleteSpecialty(ctx context.Context, id uint) error
	// SeedSpecialties inserts any missing names and reports how many were added.
	SeedSpecialties(ctx context.Context, names []string) (int, error)
}

type specialtyService struct {
	repo  repository.SpecialtyRepository
	cache *cache.Client
	ttl   time.Duration
}

// NewSpecialtyService creates a new specialty service.
func NewSpecialtyService(repo repository.SpecialtyRepository, cache *cache.Client, ttl time.Duration) SpecialtyService {
	if ttl <= 0 {
		ttl = defaultCatalogCacheTTL
	}
	return &specialtyService{repo: repo, cache: cache, ttl: ttl}
}

func (s *specialtyService) cacheKey() string {
	return catalogKeyPrefix + "specialties"
}

func (s *specialtyService) ListSpecialties(ctx context.Context) ([]model.Specialty, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey()); data != nil {
		var cached []model.Specialty
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	specialties, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specialties: %w", err)
	}
	if payload, err := json.Marshal(specialties); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(), payload, s.ttl)
	}
	return specialties, nil
}

func (s *specialtyService) CreateSpecialty(ctx context.Context, name string) (*model.Specialty, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrInvalidInput)
	}
	specialty := &model.Specialty{Name: name}
	if err := s.repo.Create(ctx, specialty); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrSpecialtyExists
		}
		return nil, fmt.Errorf("create specialty: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return specialty, nil
}

func (s *specialtyService) DeleteSpecialty(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrSpecialtyNotFound
		}
		return fmt.Errorf("delete specialty: %w", err)
	}
	invalidateCatalog(ctx, s.cache)
	return nil
}

func (s *specialtyService) SeedSpecialties(ctx context.Context, names []string) (int, error) {
	count := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := s.repo.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return count, fmt.Errorf("seed specialty %s: %w", name, err)
		}
		if err := s.repo.Create(ctx, &model.Specialty{Name: name}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return count, fmt.Errorf("create specialty %s: %w", name, err)
		}
		count++
	}
	if count > 0 {
		invalidateCatalog(ctx, s.cache)
	}
	return count, nil
}
