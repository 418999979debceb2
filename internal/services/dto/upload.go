package dto

import (
	"mime/multipart"

	"studyhub_backend/internal/models"
)

// MaterialUploadRequest - multipart форма преподавателя
type MaterialUploadRequest struct {
	UploaderID   string                `json:"-"`
	Title        string                `form:"title" validate:"required,max=255"`
	Year         int                   `form:"year" validate:"required,min=1,max=4"`
	Semester     *int                  `form:"semester" validate:"omitempty,min=1,max=8"`
	SubjectCombo string                `form:"subject_combo" validate:"omitempty,max=50"`
	Subject      string                `form:"subject" validate:"required,max=100"`
	Type         models.MaterialType   `form:"type" validate:"required,is-material-type"`
	Description  string                `form:"description" validate:"omitempty,max=2000"`
	File         *multipart.FileHeader `form:"-" json:"-"`
}

// MaterialListQuery - фильтры каталога
type MaterialListQuery struct {
	Year         *int                `form:"year" validate:"omitempty,min=1,max=4"`
	Semester     *int                `form:"semester" validate:"omitempty,min=1,max=8"`
	SubjectCombo string              `form:"subject_combo"`
	Subject      string              `form:"subject"`
	Type         models.MaterialType `form:"type" validate:"omitempty,is-material-type"`
	Status       models.UploadStatus `form:"status" validate:"omitempty,is-upload-status"`
	Page         int                 `form:"page"`
	PageSize     int                 `form:"page_size" validate:"omitempty,max=100"`
}

type MaterialListResponse struct {
	Materials []models.TeacherUpload `json:"materials"`
	Total     int64                  `json:"total"`
	Page      int                    `json:"page"`
	PageSize  int                    `json:"page_size"`
}

type UpdateUploadStatusRequest struct {
	Status models.UploadStatus `json:"status" validate:"required,is-upload-status"`
}

type DownloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // секунды
}
