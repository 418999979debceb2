package apperrors

// ErrorCode - машинно-читаемый код ошибки, уходит клиенту в поле "code"
type ErrorCode string

// Системные ошибки
const (
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeConfigurationError   ErrorCode = "CONFIGURATION_ERROR"
)

// Ошибки бизнес-логики
const (
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeAlreadyExists        ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	CodeConflict             ErrorCode = "CONFLICT"
	CodeLimitExceeded        ErrorCode = "LIMIT_EXCEEDED"
	CodeInvalidStatus        ErrorCode = "INVALID_STATUS"
	CodeSubscriptionRequired ErrorCode = "SUBSCRIPTION_REQUIRED"
)

// Аутентификация и авторизация
const (
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)
