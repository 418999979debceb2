package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrNotFound - преобразует ошибку репозитория (gorm.ErrRecordNotFound) в 404
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - 409
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrInvalidStatus - 400 для недопустимого перехода статуса
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ошибки
// =========================================================================

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный или просроченный токен (access или refresh).
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrAccountDeleted = New(
	CodeForbidden,
	"auth",
	"Account has been deleted",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Payments ---

// ErrInvalidSignature - подпись от платежного шлюза не совпала.
var ErrInvalidSignature = New(
	CodeValidationFailed,
	"payment",
	"invalid signature",
	http.StatusBadRequest,
)

var ErrPaymentNotFound = New(
	CodeNotFound,
	"payment",
	"Payment not found",
	http.StatusNotFound,
)

var ErrInvalidPaymentAmount = New(
	CodeValidationFailed,
	"payment",
	"Amount must be positive",
	http.StatusBadRequest,
)

// ErrSubscriptionRequired - у студента нет активной подписки (402).
var ErrSubscriptionRequired = New(
	CodeSubscriptionRequired,
	"subscription",
	"Active subscription required",
	http.StatusPaymentRequired,
)

// --- Uploads ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"upload",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"upload",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// ErrNotUploadOwner - удалять материал может только автор или админ.
var ErrNotUploadOwner = New(
	CodeForbidden,
	"upload",
	"Only the uploader can modify this material",
	http.StatusForbidden,
)
