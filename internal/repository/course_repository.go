package repository

import (
	"context"

	"gorm.io/gorm"

	"dentalce/internal/model"
)

// CourseFilter narrows a course listing. Zero values match everything.
type CourseFilter struct {
	Category    string
	SpecialtyID uint
}

// CourseRepository defines course persistence operations.
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Course, error)
	FindByIDWithClassrooms(ctx context.Context, id uint) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course.
func (r *courseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Specialty", "Classrooms").Create(course).Error
}

// Update updates an existing course.
func (r *courseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Omit("Specialty", "Classrooms").Save(course).Error
}

// Delete removes a course. Classrooms and certificates cascade at the store.
func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Course{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a course by ID.
func (r *courseRepository) FindByID(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Preload("Specialty").First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDWithClassrooms finds a course and its classrooms ordered by publish date.
func (r *courseRepository) FindByIDWithClassrooms(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Specialty").
		Preload("Classrooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("published_date ASC, id ASC")
		}).
		First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// List lists courses matching filter, newest first.
func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	q := r.db.WithContext(ctx).Preload("Specialty")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.SpecialtyID != 0 {
		q = q.Where("specialty_id = ?", filter.SpecialtyID)
	}
	var courses []model.Course
	if err := q.Order("created_at DESC, id DESC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}
