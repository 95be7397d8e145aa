package repository

import (
	"context"

	"gorm.io/gorm"

	"dentalce/internal/model"
)

// ClassroomRepository defines classroom persistence operations.
type ClassroomRepository interface {
	Create(ctx context.Context, classroom *model.Classroom) error
	Update(ctx context.Context, classroom *model.Classroom) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Classroom, error)
	ListByCourse(ctx context.Context, courseID uint) ([]model.Classroom, error)
}

type classroomRepository struct {
	db *gorm.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

// Create creates a new classroom.
func (r *classroomRepository) Create(ctx context.Context, classroom *model.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

// Update updates an existing classroom.
func (r *classroomRepository) Update(ctx context.Context, classroom *model.Classroom) error {
	return r.db.WithContext(ctx).Save(classroom).Error
}

// Delete removes a classroom.
func (r *classroomRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Classroom{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a classroom by ID.
func (r *classroomRepository) FindByID(ctx context.Context, id uint) (*model.Classroom, error) {
	var classroom model.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, id).Error; err != nil {
		return nil, err
	}
	return &classroom, nil
}

// ListByCourse lists the classrooms of a course in publish order.
func (r *classroomRepository) ListByCourse(ctx context.Context, courseID uint) ([]model.Classroom, error) {
	var classrooms []model.Classroom
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("published_date ASC, id ASC").
		Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}
