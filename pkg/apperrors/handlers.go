package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse - тело ответа об ошибке
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    ErrorCode   `json:"code"`
	Domain  string      `json:"domain,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

var debugErrors = true

// SetDebug включает/выключает отдачу деталей внутренних ошибок клиенту.
func SetDebug(debug bool) {
	debugErrors = debug
}

// HandleGinError пишет ошибку в ответ, не-AppError становятся InternalError
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.HTTPCode >= 500 {
		slog.ErrorContext(c.Request.Context(), "server error",
			"code", appErr.Code,
			"domain", appErr.Domain,
			"error", appErr.Unwrap(),
		)
	}

	resp := ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Domain:  appErr.Domain,
		Details: appErr.Details,
	}
	if !h.Debug && appErr.Code == CodeInternalError {
		resp.Details = nil
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, resp)
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debugErrors}
	handler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
