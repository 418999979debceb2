package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt игнорирует все после 72 байт
const maxPasswordBytes = 72

// HashPassword создает bcrypt хеш пароля
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash проверяет пароль против хеша
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword проверяет длину пароля
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if len(password) > maxPasswordBytes {
		return errors.New("password must be at most 72 bytes long")
	}
	return nil
}
