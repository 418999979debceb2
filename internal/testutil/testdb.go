package testutil

import (
	"fmt"
	"testing"

	"studyhub_backend/database"
	"studyhub_backend/internal/auth"
	"studyhub_backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB - отдельная in-memory SQLite база на каждый тест, со всеми миграциями
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "не удалось открыть тестовую БД")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одно соединение: память живет, пока оно открыто, и нет блокировок записи
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db), "миграции тестовой БД")
	return db
}

// CreateUser создает пользователя с профилем. Пароль хешируется.
func CreateUser(t *testing.T, db *gorm.DB, email, password string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error, "создание пользователя %s", email)
	require.NoError(t, db.Create(&models.Profile{
		ID:    user.ID,
		Email: user.Email,
		Role:  role,
	}).Error)

	return user
}
