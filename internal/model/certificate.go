package model

import "time"

// CertificateStatus represents the status of a certificate.
type CertificateStatus string

const (
	CertificateStatusPending  CertificateStatus = "pending"
	CertificateStatusApproved CertificateStatus = "approved"
)

// Certificate is a user's completion credential for a course. At most one
// row exists per (user, course); the unique index enforces it.
type Certificate struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	UserID    uint              `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID  uint              `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course;index"`
	Status    CertificateStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	IssuedAt  *time.Time        `json:"issued_at"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Relations
	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Course Course `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// Approve marks the certificate approved. issuedAt wins when given, then the
// stored value, then now.
func (c *Certificate) Approve(issuedAt *time.Time, now time.Time) {
	c.Status = CertificateStatusApproved
	switch {
	case issuedAt != nil:
		t := issuedAt.UTC()
		c.IssuedAt = &t
	case c.IssuedAt != nil:
		// keep the stored issue date
	default:
		t := now.UTC()
		c.IssuedAt = &t
	}
}

// Revert moves the certificate back to pending and clears the issue date.
func (c *Certificate) Revert() {
	c.Status = CertificateStatusPending
	c.IssuedAt = nil
}

// CertificateView is the certificate joined with its user and course.
type CertificateView struct {
	ID          uint              `json:"id"`
	Status      CertificateStatus `json:"status"`
	IssuedAt    *time.Time        `json:"issued_at"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	CourseTitle string            `json:"course_title"`
	UserID      uint              `json:"user_id"`
	CourseID    uint              `json:"course_id"`
}
