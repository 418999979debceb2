package repositories

import (
	"errors"

	"studyhub_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUploadNotFound = errors.New("upload not found")

// MaterialFilter - фильтр каталога материалов
type MaterialFilter struct {
	Year         *int
	Semester     *int
	SubjectCombo string
	Subject      string
	Type         models.MaterialType
	Status       models.UploadStatus
	UploadedBy   string
	Page         int
	PageSize     int
}

type UploadRepository interface {
	Create(db *gorm.DB, upload *models.TeacherUpload) error
	FindByID(db *gorm.DB, id string) (*models.TeacherUpload, error)
	List(db *gorm.DB, filter MaterialFilter) ([]models.TeacherUpload, int64, error)
	UpdateStatus(db *gorm.DB, id string, status models.UploadStatus) error
	Delete(db *gorm.DB, id string) error
}

type uploadRepository struct{}

func NewUploadRepository() UploadRepository {
	return &uploadRepository{}
}

func (r *uploadRepository) Create(db *gorm.DB, upload *models.TeacherUpload) error {
	return db.Create(upload).Error
}

func (r *uploadRepository) FindByID(db *gorm.DB, id string) (*models.TeacherUpload, error) {
	var upload models.TeacherUpload
	if err := db.First(&upload, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUploadNotFound
		}
		return nil, err
	}
	return &upload, nil
}

func (r *uploadRepository) List(db *gorm.DB, filter MaterialFilter) ([]models.TeacherUpload, int64, error) {
	q := db.Model(&models.TeacherUpload{})

	if filter.Year != nil {
		q = q.Where("year = ?", *filter.Year)
	}
	if filter.Semester != nil {
		q = q.Where("semester = ?", *filter.Semester)
	}
	if filter.SubjectCombo != "" {
		q = q.Where("subject_combo = ?", filter.SubjectCombo)
	}
	if filter.Subject != "" {
		q = q.Where("LOWER(subject) = LOWER(?)", filter.Subject)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UploadedBy != "" {
		q = q.Where("uploaded_by = ?", filter.UploadedBy)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := normalizePageSize(filter.PageSize)
	var uploads []models.TeacherUpload
	err := q.Order("created_at DESC").
		Offset(offset(filter.Page, pageSize)).
		Limit(pageSize).
		Find(&uploads).Error
	return uploads, total, err
}

func (r *uploadRepository) UpdateStatus(db *gorm.DB, id string, status models.UploadStatus) error {
	result := db.Model(&models.TeacherUpload{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}

func (r *uploadRepository) Delete(db *gorm.DB, id string) error {
	result := db.Delete(&models.TeacherUpload{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUploadNotFound
	}
	return nil
}
