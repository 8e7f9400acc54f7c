package middleware

import (
	"letterdesk/apperr"

	"github.com/gofiber/fiber/v2"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Validation failed!", errors)
}

// ErrorResponse maps a classified core error to its HTTP status. Every
// controller converts core errors through here so that status codes stay
// consistent.
func ErrorResponse(c *fiber.Ctx, err error) error {
	var status int
	switch apperr.KindOf(err) {
	case apperr.Authorization:
		status = fiber.StatusForbidden
	case apperr.Validation, apperr.InvalidTransition:
		status = fiber.StatusUnprocessableEntity
	case apperr.Conflict:
		status = fiber.StatusConflict
	case apperr.NotFound:
		status = fiber.StatusNotFound
	default:
		status = fiber.StatusServiceUnavailable
	}
	return JsonResponse(c, status, false, err.Error(), nil)
}
