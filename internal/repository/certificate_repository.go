package repository

import (
	"context"

	"gorm.io/gorm"

	"dentalce/internal/model"
)

// CertificateFilter narrows an admin listing. Zero values match everything.
type CertificateFilter struct {
	Status   model.CertificateStatus
	UserID   uint
	CourseID uint
}

// CertificateRepository defines certificate persistence operations.
type CertificateRepository interface {
	// Create inserts a row. A second row for the same (user, course) fails
	// with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, cert *model.Certificate) error
	Update(ctx context.Context, cert *model.Certificate) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Certificate, error)
	FindByUserCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error)
	FindView(ctx context.Context, id uint) (*model.CertificateView, error)
	List(ctx context.Context, filter CertificateFilter) ([]model.CertificateView, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository creates a new certificate repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

// Create creates a new certificate record.
func (r *certificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Create(cert).Error
}

// Update writes status and issue date.
func (r *certificateRepository) Update(ctx context.Context, cert *model.Certificate) error {
	return r.db.WithContext(ctx).Model(cert).
		Select("status", "issued_at").
		Updates(map[string]interface{}{
			"status":    cert.Status,
			"issued_at": cert.IssuedAt,
		}).Error
}

// Delete permanently removes a certificate.
func (r *certificateRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Certificate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a certificate by ID.
func (r *certificateRepository) FindByID(ctx context.Context, id uint) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.db.WithContext(ctx).First(&cert, id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindByUserCourse finds the certificate of a user for a course.
func (r *certificateRepository) FindByUserCourse(ctx context.Context, userID, courseID uint) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindView returns a certificate joined with its user and course.
func (r *certificateRepository) FindView(ctx context.Context, id uint) (*model.CertificateView, error) {
	var view model.CertificateView
	res := r.viewQuery(ctx).Where("certificates.id = ?", id).Limit(1).Scan(&view)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &view, nil
}

// List lists certificate views matching filter, newest first.
func (r *certificateRepository) List(ctx context.Context, filter CertificateFilter) ([]model.CertificateView, error) {
	q := r.viewQuery(ctx)
	if filter.Status != "" {
		q = q.Where("certificates.status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("certificates.user_id = ?", filter.UserID)
	}
	if filter.CourseID != 0 {
		q = q.Where("certificates.course_id = ?", filter.CourseID)
	}
	var views []model.CertificateView
	if err := q.Order("certificates.id DESC").Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

func (r *certificateRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("certificates").
		Select(`certificates.id, certificates.status, certificates.issued_at,
			certificates.user_id, certificates.course_id,
			users.name AS username, users.email AS email, courses.title AS course_title`).
		Joins("JOIN users ON users.id = certificates.user_id").
		Joins("JOIN courses ON courses.id = certificates.course_id")
}
