package services

import (
	"context"
	"errors"
	"strings"

	"studyhub_backend/internal/dashboard"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/models"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ProfileService interface {
	GetProfile(db *gorm.DB, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*models.Profile, error)
	DeleteAccount(ctx context.Context, db *gorm.DB, userID string) error
	// ResolveRedirect - путь дашборда по академическим полям профиля
	ResolveRedirect(db *gorm.DB, userID string) (*dto.RedirectResponse, error)
}

type profileService struct {
	profileRepo      repositories.ProfileRepository
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) ProfileService {
	return &profileService{
		profileRepo:      profileRepo,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

func (s *profileService) GetProfile(db *gorm.DB, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	fields := map[string]interface{}{}
	year, semester := profile.Year, profile.Semester

	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Year != nil {
		year = req.Year
		fields["year"] = *req.Year
	}
	if req.Semester != nil {
		semester = req.Semester
		fields["semester"] = *req.Semester
	}
	if req.CollegeID != nil {
		fields["college_id"] = nullableString(*req.CollegeID)
	}
	if req.SubjectCombo != nil {
		fields["subject_combo"] = nullableString(*req.SubjectCombo)
	}

	// семестр проверяется вместе с годом, с учетом уже сохраненных значений
	if year != nil && semester != nil && !dashboard.SemesterBelongsToYear(*year, *semester) {
		return nil, apperrors.ValidationError(map[string]string{
			"semester": "Semester does not belong to the selected year",
		})
	}

	if len(fields) == 0 {
		return profile, nil
	}

	if err := s.profileRepo.UpdateFields(db, userID, fields); err != nil {
		return nil, handleUserError(err)
	}
	logger.CtxInfo(ctx, "profile updated", "fields", len(fields))

	return s.GetProfile(db, userID)
}

// DeleteAccount - профиль обезличивается, учетная запись блокируется,
// refresh-токены удаляются. Уже выданный access-токен живет до истечения TTL.
func (s *profileService) DeleteAccount(ctx context.Context, db *gorm.DB, userID string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.profileRepo.Tombstone(tx, userID); err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
			return err
		}
		if err := s.userRepo.Anonymize(tx, userID); err != nil {
			return err
		}
		return s.refreshTokenRepo.DeleteByUserID(tx, userID)
	})
	if err != nil {
		return handleUserError(err)
	}

	logger.CtxInfo(ctx, "account deleted")
	return nil
}

func (s *profileService) ResolveRedirect(db *gorm.DB, userID string) (*dto.RedirectResponse, error) {
	profile, err := s.profileRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return &dto.RedirectResponse{Path: dashboard.DefaultPath}, nil
		}
		return nil, handleUserError(err)
	}
	return &dto.RedirectResponse{
		Path: dashboard.ResolvePath(profile.Year, profile.Semester, profile.SubjectCombo),
	}, nil
}

func nullableString(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
