package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course represents a continuing-education course in the catalog.
type Course struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:255;not null;index"`
	Author        string    `json:"author" gorm:"size:255;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	Objectives    string    `json:"objectives" gorm:"type:text"`
	Audience      string    `json:"audience" gorm:"size:255"`
	Category      string    `json:"category" gorm:"size:120;index"`
	SpecialtyID   *uint     `json:"specialty_id,omitempty" gorm:"index"`
	CoverImageURL string    `json:"cover_image_url" gorm:"size:512"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Specialty  *Specialty  `json:"specialty,omitempty" gorm:"foreignKey:SpecialtyID;constraint:OnDelete:SET NULL"`
	Classrooms []Classroom `json:"-" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
}

// TotalCredits sums the CE credits of the given classrooms.
func TotalCredits(classrooms []Classroom) decimal.Decimal {
	total := decimal.Zero
	for _, c := range classrooms {
		total = total.Add(c.CECredits)
	}
	return total
}
