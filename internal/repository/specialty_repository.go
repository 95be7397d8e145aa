package repository

import (
	"context"

	"gorm.io/gorm"

	"dentalce/internal/model"
)

// SpecialtyRepository defines specialty persistence operations.
type SpecialtyRepository interface {
	Create(ctx context.Context, specialty *model.Specialty) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Specialty, error)
	FindByName(ctx context.Context, name string) (*model.Specialty, error)
	List(ctx context.Context) ([]model.Specialty, error)
}

type specialtyRepository struct {
	db *gorm.DB
}

// NewSpecialtyRepository creates a new specialty repository.
func NewSpecialtyRepository(db *gorm.DB) SpecialtyRepository {
	return &specialtyRepository{db: db}
}

func (r *specialtyRepository) Create(ctx context.Context, specialty *model.Specialty) error {
	return r.db.WithContext(ctx).Create(specialty).Error
}

func (r *specialtyRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Specialty{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *specialtyRepository) FindByID(ctx context.Context, id uint) (*model.Specialty, error) {
	var specialty model.Specialty
	if err := r.db.WithContext(ctx).First(&specialty, id).Error; err != nil {
		return nil, err
	}
	return &specialty, nil
}

func (r *specialtyRepository) FindByName(ctx context.Context, name string) (*model.Specialty, error) {
	var specialty model.Specialty
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&specialty).Error; err != nil {
		return nil, err
	}
	return &specialty, nil
}

func (r *specialtyRepository) List(ctx context.Context) ([]model.Specialty, error) {
	var specialties []model.Specialty
	if err := r.db.WithContext(ctx).Order("name").Find(&specialties).Error; err != nil {
		return nil, err
	}
	return specialties, nil
}
