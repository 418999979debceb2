package repositories

import (
	"errors"
	"time"

	"studyhub_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProfileNotFound = errors.New("profile not found")

// SubscriptionGrant - что записывается в профиль при успешной оплате
type SubscriptionGrant struct {
	UserID    string
	Email     string
	Role      models.UserRole
	Plan      models.PlanType
	StartDate time.Time
	EndDate   time.Time
}

type ProfileRepository interface {
	Create(db *gorm.DB, profile *models.Profile) error
	FindByID(db *gorm.DB, id string) (*models.Profile, error)
	UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error
	ApplySubscription(db *gorm.DB, grant SubscriptionGrant) error
	IncrementDownloads(db *gorm.DB, id string) error
	Tombstone(db *gorm.DB, id string) error
	ExpireSubscriptions(db *gorm.DB, now time.Time) (int64, error)
}

type profileRepository struct{}

func NewProfileRepository() ProfileRepository {
	return &profileRepository{}
}

func (r *profileRepository) Create(db *gorm.DB, profile *models.Profile) error {
	return db.Create(profile).Error
}

func (r *profileRepository) FindByID(db *gorm.DB, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpdateFields(db *gorm.DB, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := db.Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ApplySubscription - upsert по id: профиль создается, если его еще нет
func (r *profileRepository) ApplySubscription(db *gorm.DB, grant SubscriptionGrant) error {
	plan := grant.Plan
	start := grant.StartDate
	end := grant.EndDate

	role := grant.Role
	if role == "" {
		role = models.UserRoleStudent
	}

	profile := &models.Profile{
		ID:                    grant.UserID,
		Email:                 grant.Email,
		Role:                  role,
		SubscriptionActive:    true,
		SubscriptionPlan:      &plan,
		SubscriptionStartDate: &start,
		SubscriptionEndDate:   &end,
	}

	columns := []string{
		"subscription_active",
		"subscription_plan",
		"subscription_start_date",
		"subscription_end_date",
		"updated_at",
	}
	// пустой email не должен затирать сохраненный
	if grant.Email != "" {
		columns = append(columns, "email")
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(profile).Error
}

func (r *profileRepository) IncrementDownloads(db *gorm.DB, id string) error {
	result := db.Model(&models.Profile{}).Where("id = ?", id).
		UpdateColumn("total_downloads", gorm.Expr("total_downloads + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Tombstone затирает персональные данные и помечает профиль удаленным
func (r *profileRepository) Tombstone(db *gorm.DB, id string) error {
	result := db.Model(&models.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"email":                   "",
		"full_name":               "",
		"college_id":              nil,
		"subscription_active":     false,
		"subscription_plan":       nil,
		"subscription_start_date": nil,
		"subscription_end_date":   nil,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return db.Delete(&models.Profile{}, "id = ?", id).Error
}

// ExpireSubscriptions снимает флаг с подписок, срок которых прошел
func (r *profileRepository) ExpireSubscriptions(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Profile{}).
		Where("subscription_active = ? AND subscription_end_date IS NOT NULL AND subscription_end_date <= ?", true, now).
		Updates(map[string]interface{}{"subscription_active": false})
	return result.RowsAffected, result.Error
}
