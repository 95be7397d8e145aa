package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassroomStatus is derived from the classroom dates and never stored.
type ClassroomStatus string

const (
	ClassroomStatusUpcoming ClassroomStatus = "upcoming"
	ClassroomStatusActive   ClassroomStatus = "active"
	ClassroomStatusExpired  ClassroomStatus = "expired"
)

// MaxAssessmentLinks is the number of assessment link slots on a classroom.
const MaxAssessmentLinks = 3

// Classroom represents a video session belonging to a course.
type Classroom struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	CourseID          uint            `json:"course_id" gorm:"not null;index"`
	Title             string          `json:"title" gorm:"size:255;not null"`
	Speaker           string          `json:"speaker" gorm:"size:255"`
	VideoURL          string          `json:"video_url" gorm:"size:512"`
	Description       string          `json:"description" gorm:"type:text"`
	Objectives        string          `json:"objectives" gorm:"type:text"`
	PublishedDate     time.Time       `json:"published_date" gorm:"not null;index"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	DiscussionEnabled bool            `json:"discussion_enabled" gorm:"default:false"`
	AssessmentURL1    *string         `json:"assessment_url_1,omitempty" gorm:"column:assessment_url_1;size:512"`
	AssessmentURL2    *string         `json:"assessment_url_2,omitempty" gorm:"column:assessment_url_2;size:512"`
	AssessmentURL3    *string         `json:"assessment_url_3,omitempty" gorm:"column:assessment_url_3;size:512"`
	CECredits         decimal.Decimal `json:"ce_credits" gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// StatusAt computes the classroom status at now. Expiration wins over
// publication when both dates are in the past.
func (c *Classroom) StatusAt(now time.Time) ClassroomStatus {
	if c.ExpirationDate != nil && c.ExpirationDate.Before(now) {
		return ClassroomStatusExpired
	}
	if !c.PublishedDate.After(now) {
		return ClassroomStatusActive
	}
	return ClassroomStatusUpcoming
}

// AssessmentLinks returns the non-empty assessment links in slot order.
func (c *Classroom) AssessmentLinks() []string {
	links := make([]string, 0, MaxAssessmentLinks)
	for _, l := range []*string{c.AssessmentURL1, c.AssessmentURL2, c.AssessmentURL3} {
		if l != nil && *l != "" {
			links = append(links, *l)
		}
	}
	return links
}

// SetAssessmentLinks fills the slots from links. Callers validate the length.
func (c *Classroom) SetAssessmentLinks(links []string) {
	slots := []**string{&c.AssessmentURL1, &c.AssessmentURL2, &c.AssessmentURL3}
	for i, slot := range slots {
		if i < len(links) && links[i] != "" {
			v := links[i]
			*slot = &v
			continue
		}
		*slot = nil
	}
}
