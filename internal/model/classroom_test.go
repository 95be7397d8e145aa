package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassroom_StatusAt(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		published  time.Time
		expiration *time.Time
		expected   ClassroomStatus
	}{
		{
			name:      "published yesterday without expiry is active",
			published: yesterday,
			expected:  ClassroomStatusActive,
		},
		{
			name:      "published tomorrow is upcoming",
			published: tomorrow,
			expected:  ClassroomStatusUpcoming,
		},
		{
			name:       "expired yesterday is expired",
			published:  yesterday.Add(-24 * time.Hour),
			expiration: &yesterday,
			expected:   ClassroomStatusExpired,
		},
		{
			name:       "expired yesterday wins over future publish date",
			published:  tomorrow,
			expiration: &yesterday,
			expected:   ClassroomStatusExpired,
		},
		{
			name:       "expiry in the future keeps it active",
			published:  yesterday,
			expiration: &tomorrow,
			expected:   ClassroomStatusActive,
		},
		{
			name:      "published exactly now is active",
			published: now,
			expected:  ClassroomStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Classroom{PublishedDate: tt.published, ExpirationDate: tt.expiration}
			assert.Equal(t, tt.expected, c.StatusAt(now))
		})
	}
}

func TestClassroom_AssessmentLinks(t *testing.T) {
	c := &Classroom{}
	c.SetAssessmentLinks([]string{"https://quiz/1", "", "https://quiz/3"})

	assert.NotNil(t, c.AssessmentURL1)
	assert.Nil(t, c.AssessmentURL2)
	assert.NotNil(t, c.AssessmentURL3)
	assert.Equal(t, []string{"https://quiz/1", "https://quiz/3"}, c.AssessmentLinks())

	c.SetAssessmentLinks(nil)
	assert.Empty(t, c.AssessmentLinks())
}

func TestTotalCredits(t *testing.T) {
	classrooms := []Classroom{
		{CECredits: decimal.RequireFromString("1.5")},
		{CECredits: decimal.RequireFromString("2.25")},
		{},
	}
	assert.True(t, decimal.RequireFromString("3.75").Equal(TotalCredits(classrooms)))
	assert.True(t, TotalCredits(nil).IsZero())
}

func TestCertificate_ApprovePrecedence(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	stored := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	explicit := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := &Certificate{Status: CertificateStatusPending}
	c.Approve(nil, now)
	assert.Equal(t, CertificateStatusApproved, c.Status)
	assert.Equal(t, now, *c.IssuedAt)

	c.IssuedAt = &stored
	c.Approve(nil, now)
	assert.Equal(t, stored, *c.IssuedAt)

	c.Approve(&explicit, now)
	assert.Equal(t, explicit, *c.IssuedAt)

	c.Revert()
	assert.Equal(t, CertificateStatusPending, c.Status)
	assert.Nil(t, c.IssuedAt)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("client")
	assert.NoError(t, err)
	assert.Equal(t, RoleClient, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
	assert.False(t, Role("superuser").Valid())
}
