package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/takahashi-jo/care-emr/internal/services"
	"go.uber.org/zap"
)

// apiError renders { "error": { "code", "message" } } with the message
// localized for the request language.
func (handler *Handler) apiError(c *fiber.Ctx, status int, code string, args ...any) error {
	language := currentLanguage(c)
	var message string
	if len(args) > 0 {
		message = handler.i18n.Translatef(language, code, args...)
	} else {
		message = handler.i18n.Translate(language, code)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps domain errors onto status codes and falls back to
// a generic per-operation code for anything unrecognized.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, fallbackCode string) error {
	var conflict *services.DateConflictError
	switch {
	case errors.Is(err, services.ErrResidentNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "error.resident_not_found")
	case errors.Is(err, services.ErrRecordNotFound):
		return handler.apiError(c, fiber.StatusNotFound, "error.record_not_found")
	case errors.As(err, &conflict):
		return handler.apiError(c, fiber.StatusConflict, "error.record_date_conflict", conflict.Date.Format("2006-01-02"))
	case errors.Is(err, services.ErrInvalidCredentials):
		return handler.apiError(c, fiber.StatusUnauthorized, "error.invalid_credentials")
	}

	handler.logger.Error("operation failed",
		zap.String("path", c.Path()),
		zap.String("fallback_code", fallbackCode),
		zap.Error(err),
	)
	return handler.apiError(c, fiber.StatusInternalServerError, fallbackCode)
}
