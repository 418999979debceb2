package repositories

import (
	"errors"
	"strings"

	"studyhub_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	UpdateRole(db *gorm.DB, userID string, role models.UserRole) error
	UpdateStatus(db *gorm.DB, userID string, status models.UserStatus) error
	Touch(db *gorm.DB, userID string) error
	Anonymize(db *gorm.DB, userID string) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

// NormalizeEmail - email хранится в нижнем регистре без пробелов
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	user.Email = NormalizeEmail(user.Email)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", NormalizeEmail(email)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateRole(db *gorm.DB, userID string, role models.UserRole) error {
	return r.updateColumn(db, userID, "role", role)
}

func (r *userRepository) UpdateStatus(db *gorm.DB, userID string, status models.UserStatus) error {
	return r.updateColumn(db, userID, "status", status)
}

// Touch обновляет время последнего входа
func (r *userRepository) Touch(db *gorm.DB, userID string) error {
	return r.updateColumn(db, userID, "last_login_at", gorm.Expr("CURRENT_TIMESTAMP"))
}

// Anonymize освобождает email и помечает учетную запись удаленной
func (r *userRepository) Anonymize(db *gorm.DB, userID string) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"email":  "deleted-" + userID + "@deleted.invalid",
		"status": models.UserStatusDeleted,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) updateColumn(db *gorm.DB, userID, column string, value interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
