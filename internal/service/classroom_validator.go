package service

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "dentalce/internal/errors"
	"dentalce/internal/model"
)

// ClassroomValidator validates classroom payloads before they are stored.
type ClassroomValidator struct{}

// NewClassroomValidator creates a new classroom validator.
func NewClassroomValidator() *ClassroomValidator {
	return &ClassroomValidator{}
}

// ValidateClassroom checks required fields, dates, credits and links.
func (v *ClassroomValidator) ValidateClassroom(in ClassroomInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if in.PublishedDate.IsZero() {
		return fmt.Errorf("%w: published date is required", apperrors.ErrInvalidInput)
	}
	if in.ExpirationDate != nil && !in.ExpirationDate.After(in.PublishedDate) {
		return apperrors.ErrExpiryBeforePub
	}
	if in.CECredits.IsNegative() {
		return apperrors.ErrNegativeCredits
	}

	links := v.compactLinks(in.AssessmentLinks)
	if len(links) > model.MaxAssessmentLinks {
		return apperrors.ErrTooManyLinks
	}
	for _, l := range links {
		if !v.validURL(l) {
			return fmt.Errorf("%w: invalid assessment link %q", apperrors.ErrInvalidInput, l)
		}
	}
	if in.VideoURL != "" && !v.validURL(in.VideoURL) {
		return fmt.Errorf("%w: invalid video url", apperrors.ErrInvalidInput)
	}
	return nil
}

// compactLinks trims links and drops empty ones.
func (v *ClassroomValidator) compactLinks(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// validURL accepts absolute http(s) URLs only.
func (v *ClassroomValidator) validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
