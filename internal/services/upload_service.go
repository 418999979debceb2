package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/config"
	"studyhub_backend/internal/dashboard"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/models"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/internal/storage"
	"studyhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// ============================================
// МАТЕРИАЛЫ ПРЕПОДАВАТЕЛЕЙ
// ============================================

type UploadService interface {
	UploadMaterial(ctx context.Context, db *gorm.DB, req *dto.MaterialUploadRequest) (*models.TeacherUpload, error)
	// ListMaterials - каталог для студентов, только Approved
	ListMaterials(db *gorm.DB, query *dto.MaterialListQuery) (*dto.MaterialListResponse, error)
	ListTeacherUploads(db *gorm.DB, teacherID string, query *dto.MaterialListQuery) (*dto.MaterialListResponse, error)
	ListForModeration(db *gorm.DB, query *dto.MaterialListQuery) (*dto.MaterialListResponse, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, uploadID string, status models.UploadStatus) (*models.TeacherUpload, error)
	DeleteUpload(ctx context.Context, db *gorm.DB, requesterID, requesterRole, uploadID string) error
	Download(ctx context.Context, db *gorm.DB, requesterID, requesterRole, uploadID string) (*dto.DownloadResponse, error)
}

// ============================================
// КОНФИГУРАЦИЯ
// ============================================

type UploadConfig struct {
	MaxFileSize    int64
	AllowedTypes   []string
	ExtensionTypes map[string]string
	// AutoApprove - новые материалы сразу видны студентам
	AutoApprove  bool
	SignedURLTTL time.Duration
}

func GetDefaultUploadConfig() *UploadConfig {
	return &UploadConfig{
		MaxFileSize:    config.MaterialFileConfig.MaxSize,
		AllowedTypes:   config.MaterialFileConfig.AllowedTypes,
		ExtensionTypes: config.MaterialFileConfig.ExtensionTypes,
		AutoApprove:    true,
		SignedURLTTL:   15 * time.Minute,
	}
}

type uploadService struct {
	uploadRepo  repositories.UploadRepository
	profileRepo repositories.ProfileRepository
	storage     storage.Storage
	config      *UploadConfig
}

func NewUploadService(
	uploadRepo repositories.UploadRepository,
	profileRepo repositories.ProfileRepository,
	storage storage.Storage,
	cfg *UploadConfig,
) UploadService {
	if cfg == nil {
		cfg = GetDefaultUploadConfig()
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = 15 * time.Minute
	}
	return &uploadService{
		uploadRepo:  uploadRepo,
		profileRepo: profileRepo,
		storage:     storage,
		config:      cfg,
	}
}

// ============================================
// ЗАГРУЗКА
// ============================================

func (s *uploadService) UploadMaterial(ctx context.Context, db *gorm.DB, req *dto.MaterialUploadRequest) (*models.TeacherUpload, error) {
	if req.File == nil {
		return nil, apperrors.ValidationError(map[string]string{"file": "File is required"})
	}
	if req.Semester != nil && !dashboard.SemesterBelongsToYear(req.Year, *req.Semester) {
		return nil, apperrors.ValidationError(map[string]string{
			"semester": "Semester does not belong to the selected year",
		})
	}

	mimeType, err := s.validateFile(req.File)
	if err != nil {
		return nil, err
	}

	path := s.buildPath(req)

	src, err := req.File.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("failed to read uploaded file")
	}
	defer src.Close()

	if err := s.storage.Save(ctx, path, src, mimeType); err != nil {
		logger.CtxWithError(ctx, "material save failed", err, "path", path)
		return nil, apperrors.NewRemoteServiceError(err, "storage", "Failed to store file")
	}

	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		logger.CtxWarn(ctx, "failed to build material url", "path", path, "error", err)
	}

	status := models.UploadStatusPending
	if s.config.AutoApprove {
		status = models.UploadStatusApproved
	}

	upload := &models.TeacherUpload{
		Title:        strings.TrimSpace(req.Title),
		Year:         req.Year,
		Semester:     req.Semester,
		SubjectCombo: optionalString(req.SubjectCombo),
		Subject:      strings.TrimSpace(req.Subject),
		Type:         req.Type,
		Description:  req.Description,
		FilePath:     path,
		DownloadURL:  url,
		FileSize:     req.File.Size,
		FileName:     filepath.Base(req.File.Filename),
		MimeType:     mimeType,
		UploadedBy:   req.UploaderID,
		Status:       status,
	}

	if err := s.uploadRepo.Create(db, upload); err != nil {
		// файл без строки в БД никому не виден, убираем его
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			logger.CtxWithError(ctx, "failed to remove orphaned material file", delErr, "path", path)
		}
		return nil, apperrors.NewDataStoreError(err, "upload", "Failed to save material")
	}

	logger.CtxInfo(ctx, "material uploaded", "upload_id", upload.ID, "size", upload.FileSize, "status", upload.Status)
	return upload, nil
}

// ============================================
// КАТАЛОГ
// ============================================

func (s *uploadService) ListMaterials(db *gorm.DB, query *dto.MaterialListQuery) (*dto.MaterialListResponse, error) {
	filter := materialFilter(query)
	filter.Status = models.UploadStatusApproved
	return s.list(db, filter)
}

func (s *uploadService) ListTeacherUploads(db *gorm.DB, teacherID string, query *dto.MaterialListQuery) (*dto.MaterialListResponse, error) {
	filter := materialFilter(query)
	filter.UploadedBy = teacherID
	return s.list(db, filter)
}

func (s *uploadService) ListForModeration(db *gorm.DB, query *dto.MaterialListQuery) (*dto.MaterialListResponse, error) {
	return s.list(db, materialFilter(query))
}

func (s *uploadService) list(db *gorm.DB, filter repositories.MaterialFilter) (*dto.MaterialListResponse, error) {
	materials, total, err := s.uploadRepo.List(db, filter)
	if err != nil {
		return nil, apperrors.NewDataStoreError(err, "upload", "Failed to list materials")
	}
	return &dto.MaterialListResponse{
		Materials: materials,
		Total:     total,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}, nil
}

// ============================================
// МОДЕРАЦИЯ И УДАЛЕНИЕ
// ============================================

func (s *uploadService) UpdateStatus(ctx context.Context, db *gorm.DB, uploadID string, status models.UploadStatus) (*models.TeacherUpload, error) {
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus("upload", "Unknown upload status")
	}
	if err := s.uploadRepo.UpdateStatus(db, uploadID, status); err != nil {
		return nil, handleUploadError(err)
	}
	logger.CtxInfo(ctx, "upload status changed", "upload_id", uploadID, "status", status)

	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		return nil, handleUploadError(err)
	}
	return upload, nil
}

func (s *uploadService) DeleteUpload(ctx context.Context, db *gorm.DB, requesterID, requesterRole, uploadID string) error {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		return handleUploadError(err)
	}
	if upload.UploadedBy != requesterID && requesterRole != auth.RoleAdmin {
		return apperrors.ErrNotUploadOwner
	}

	if err := s.uploadRepo.Delete(db, uploadID); err != nil {
		return handleUploadError(err)
	}

	// строки уже нет, файл удаляется после
	if err := s.storage.Delete(ctx, upload.FilePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.CtxWithError(ctx, "failed to delete material file", err, "path", upload.FilePath)
	}

	logger.CtxInfo(ctx, "material deleted", "upload_id", uploadID)
	return nil
}

// ============================================
// СКАЧИВАНИЕ
// ============================================

func (s *uploadService) Download(ctx context.Context, db *gorm.DB, requesterID, requesterRole, uploadID string) (*dto.DownloadResponse, error) {
	upload, err := s.uploadRepo.FindByID(db, uploadID)
	if err != nil {
		return nil, handleUploadError(err)
	}
	// преподаватели и админы видят материалы до модерации
	if upload.Status != models.UploadStatusApproved && requesterRole == auth.RoleStudent {
		return nil, apperrors.NewNotFoundError("upload", "Material not found")
	}

	url, err := s.storage.GetSignedURL(ctx, upload.FilePath, s.config.SignedURLTTL)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("upload", "Material file not found")
		}
		return nil, apperrors.NewRemoteServiceError(err, "storage", "Failed to create download link")
	}

	if err := s.profileRepo.IncrementDownloads(db, requesterID); err != nil {
		logger.CtxWarn(ctx, "failed to count download", "upload_id", uploadID, "error", err)
	}

	return &dto.DownloadResponse{
		URL:       url,
		ExpiresIn: int(s.config.SignedURLTTL.Seconds()),
	}, nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ
// ============================================

// validateFile проверяет размер и тип, возвращает итоговый MIME
func (s *uploadService) validateFile(file *multipart.FileHeader) (string, error) {
	if file.Size > s.config.MaxFileSize {
		return "", apperrors.ErrFileTooLarge
	}

	mimeType := strings.TrimSpace(strings.SplitN(file.Header.Get("Content-Type"), ";", 2)[0])
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = s.config.ExtensionTypes[strings.ToLower(filepath.Ext(file.Filename))]
	}

	for _, allowed := range s.config.AllowedTypes {
		if mimeType == allowed {
			return mimeType, nil
		}
	}
	return "", apperrors.ErrInvalidFileType
}

// buildPath: year{Y}/{combo|sem{S}|general}/{subject}/{type}/{unixnano}_{rand}{ext}
func (s *uploadService) buildPath(req *dto.MaterialUploadRequest) string {
	scope := "general"
	switch {
	case slugify(req.SubjectCombo) != "":
		scope = slugify(req.SubjectCombo)
	case req.Semester != nil:
		scope = fmt.Sprintf("sem%d", *req.Semester)
	}

	subject := slugify(req.Subject)
	if subject == "" {
		subject = "misc"
	}

	ext := strings.ToLower(filepath.Ext(req.File.Filename))
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), generateSecureToken(4), ext)

	return strings.Join([]string{
		fmt.Sprintf("year%d", req.Year),
		scope,
		subject,
		slugify(string(req.Type)),
		name,
	}, "/")
}

func materialFilter(query *dto.MaterialListQuery) repositories.MaterialFilter {
	if query == nil {
		return repositories.MaterialFilter{Page: 1, PageSize: 20}
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return repositories.MaterialFilter{
		Year:         query.Year,
		Semester:     query.Semester,
		SubjectCombo: query.SubjectCombo,
		Subject:      query.Subject,
		Type:         query.Type,
		Status:       query.Status,
		Page:         page,
		PageSize:     pageSize,
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func handleUploadError(err error) error {
	if errors.Is(err, repositories.ErrUploadNotFound) {
		return apperrors.NewNotFoundError("upload", "Material not found")
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.NewDataStoreError(err, "upload", "Database error")
}
