package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile - одна строка на пользователя, ID совпадает с User.ID.
type Profile struct {
	ID           string   `gorm:"primaryKey;size:36" json:"id"`
	Email        string   `gorm:"size:255;index" json:"email"`
	FullName     string   `gorm:"size:255" json:"full_name"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Year         *int     `json:"year"`
	Semester     *int     `json:"semester"`
	CollegeID    *string  `gorm:"size:100" json:"college_id"`
	SubjectCombo *string  `gorm:"size:50" json:"subject_combo"`

	SubscriptionActive    bool       `gorm:"not null;default:false" json:"subscription_active"`
	SubscriptionPlan      *PlanType  `gorm:"type:varchar(20)" json:"subscription_plan"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date"`
	TotalDownloads        int        `gorm:"not null;default:0" json:"total_downloads"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasActiveSubscription вычисляется при каждом чтении и нигде не хранится:
// флаг активен и дата окончания не наступила (или не задана).
func (p *Profile) HasActiveSubscription(now time.Time) bool {
	if p == nil || !p.SubscriptionActive {
		return false
	}
	return p.SubscriptionEndDate == nil || p.SubscriptionEndDate.After(now)
}
