package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfile_HasActiveSubscription(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		profile *Profile
		want    bool
	}{
		{"nil profile", nil, false},
		{"flag off", &Profile{SubscriptionActive: false, SubscriptionEndDate: &future}, false},
		{"flag on, no end date", &Profile{SubscriptionActive: true}, true},
		{"flag on, end in future", &Profile{SubscriptionActive: true, SubscriptionEndDate: &future}, true},
		{"flag on, end passed", &Profile{SubscriptionActive: true, SubscriptionEndDate: &past}, false},
		{"flag on, end exactly now", &Profile{SubscriptionActive: true, SubscriptionEndDate: &now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.HasActiveSubscription(now))
		})
	}
}

func TestPlanType_EndDate(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), PlanSemester.EndDate(start))
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), PlanAnnual.EndDate(start))
	assert.Equal(t, 6, ParsePlanType("").DurationMonths())
	assert.Equal(t, PlanSemester, ParsePlanType("lifetime"))
	assert.Equal(t, PlanAnnual, ParsePlanType("annual"))
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, UserRoleTeacher.IsValid())
	assert.False(t, UserRole("owner").IsValid())
	assert.True(t, UploadStatusApproved.IsValid())
	assert.False(t, UploadStatus("approved").IsValid())
	assert.True(t, MaterialTypeAssignment.IsValid())
	assert.False(t, MaterialType("Video").IsValid())
}
