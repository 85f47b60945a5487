package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidtube/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// apiResponse is the envelope of every successful response.
type apiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// errorResponse is the envelope of every failed response.
type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	if data == nil {
		data = fiber.Map{}
	}
	return c.Status(status).JSON(apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < fiber.StatusBadRequest,
	})
}

// ErrorHandler renders errors returned by handlers and middleware. Causes of
// internal errors are logged and never sent to the client.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorResponse{
				StatusCode: fe.Code,
				Kind:       kindForStatus(fe.Code),
				Message:    fe.Message,
				Success:    false,
			})
		}

		status := apperrors.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(status).JSON(errorResponse{
			StatusCode: status,
			Kind:       string(apperrors.KindOf(err)),
			Message:    apperrors.PublicMessage(err),
			Success:    false,
		})
	}
}

func kindForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(apperrors.KindValidation)
	case fiber.StatusUnauthorized:
		return string(apperrors.KindAuth)
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return string(apperrors.KindNotFound)
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	default:
		return string(apperrors.KindInternal)
	}
}

// validationError turns validator output into a ValidationError naming the
// first failing field.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return apperrors.Validation("field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return apperrors.Validation("invalid request body")
}

// saveUpload stores the multipart file in field under dir with a random name.
// It returns "" when the request carries no such file.
func saveUpload(c *fiber.Ctx, field, dir string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.Internal(err, "failed to prepare upload directory")
	}

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveFile(fh, path); err != nil {
		return "", apperrors.Internal(fmt.Errorf("save %s: %w", field, err), "failed to store uploaded file")
	}
	return path, nil
}

// removeTemp deletes temp files the uploader did not consume.
func removeTemp(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("failed to remove temp file", zap.String("path", p), zap.Error(err))
		}
	}
}
