package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/logger"
	"studyhub_backend/internal/models"
	"studyhub_backend/internal/repositories"
	"studyhub_backend/internal/services/dto"
	"studyhub_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, db *gorm.DB, refreshToken string) error
	GetUser(db *gorm.DB, userID string) (*dto.UserDTO, error)
	SetRole(ctx context.Context, db *gorm.DB, adminID, userID string, role models.UserRole) error
	SeedAdmin(ctx context.Context, db *gorm.DB, email, password, name string) (bool, error)
}

type authService struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenManager
	refreshTTL       time.Duration
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenManager,
	refreshTTL time.Duration,
) AuthService {
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &authService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		refreshTTL:       refreshTTL,
	}
}

// Signup - создает пользователя-студента и его профиль в одной транзакции
func (s *authService) Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.UserRoleStudent,
		Status:       models.UserStatusActive,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Create(tx, user); err != nil {
			return err
		}
		return s.profileRepo.Create(tx, &models.Profile{
			ID:       user.ID,
			Email:    user.Email,
			FullName: req.FullName,
			Role:     models.UserRoleStudent,
		})
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.NewDataStoreError(err, "auth", "Failed to create account")
	}

	logger.CtxInfo(ctx, "user signed up", "user_id", user.ID)
	return s.issueTokens(db, user)
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.NewDataStoreError(err, "auth", "Failed to load user")
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountDeleted
	}

	if err := s.userRepo.Touch(db, user.ID); err != nil {
		logger.CtxWarn(ctx, "failed to update last login", "user_id", user.ID, "error", err.Error())
	}

	return s.issueTokens(db, user)
}

// RefreshToken - выпускает новую пару токенов, старый refresh токен удаляется
func (s *authService) RefreshToken(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	token, err := s.refreshTokenRepo.FindByToken(db, refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if time.Now().After(token.ExpiresAt) {
		_ = s.refreshTokenRepo.DeleteByToken(db, refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, token.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.ErrAccountDeleted
	}

	if err := s.refreshTokenRepo.DeleteByToken(db, refreshToken); err != nil {
		// токен уже использован параллельным запросом
		return nil, apperrors.ErrInvalidToken
	}

	return s.issueTokens(db, user)
}

// Logout - пустой refresh токен допустим: клиент мог потерять его, cookie все равно сбрасывается
func (s *authService) Logout(ctx context.Context, db *gorm.DB, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	err := s.refreshTokenRepo.DeleteByToken(db, refreshToken)
	if err != nil && !errors.Is(err, repositories.ErrRefreshTokenNotFound) {
		return apperrors.NewDataStoreError(err, "auth", "Failed to revoke token")
	}
	return nil
}

func (s *authService) GetUser(db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	result := dto.NewUserDTO(user)
	return &result, nil
}

// SetRole - админ меняет роль пользователя, профиль обновляется вместе с users
func (s *authService) SetRole(ctx context.Context, db *gorm.DB, adminID, userID string, role models.UserRole) error {
	if !role.IsValid() {
		return apperrors.ValidationError(map[string]string{"role": "invalid role"})
	}
	if adminID == userID && role != models.UserRoleAdmin {
		return apperrors.NewForbiddenError("Admins cannot demote themselves")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.UpdateRole(tx, userID, role); err != nil {
			return err
		}
		err := s.profileRepo.UpdateFields(tx, userID, map[string]interface{}{"role": role})
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return handleUserError(err)
	}

	logger.CtxInfo(ctx, "user role changed", "target_user_id", userID, "role", role, "admin_id", adminID)
	return nil
}

// SeedAdmin создает первого администратора, если пользователя с таким email еще нет
func (s *authService) SeedAdmin(ctx context.Context, db *gorm.DB, email, password, name string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	if _, err := s.userRepo.FindByEmail(db, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return false, fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		admin := &models.User{
			Email:        email,
			PasswordHash: hash,
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
		}
		if err := s.userRepo.Create(tx, admin); err != nil {
			return err
		}
		return s.profileRepo.Create(tx, &models.Profile{
			ID:       admin.ID,
			Email:    admin.Email,
			FullName: name,
			Role:     models.UserRoleAdmin,
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.CtxInfo(ctx, "first admin user created", "email", email)
	return true, nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		if errors.Is(err, auth.ErrNoSecret) {
			return nil, apperrors.NewConfigurationError("auth", "JWT secret is not configured")
		}
		return nil, apperrors.InternalError(err)
	}

	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     generateSecureToken(32),
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.refreshTokenRepo.Create(db, refresh); err != nil {
		return nil, apperrors.NewDataStoreError(err, "auth", "Failed to store refresh token")
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		ExpiresAt:    time.Now().Add(s.tokens.TTL()),
		User:         dto.NewUserDTO(user),
	}, nil
}

func generateSecureToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func handleUserError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperrors.NewNotFoundError("user", "User not found")
	case errors.Is(err, repositories.ErrProfileNotFound):
		return apperrors.NewNotFoundError("profile", "Profile not found")
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	return apperrors.NewDataStoreError(err, "user", "Database error")
}
