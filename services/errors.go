package services

import (
	"errors"

	"space-games-system/games"
	"space-games-system/store"

	"github.com/gofiber/fiber/v2"
)

// Client-facing domain errors. All of them leave session state untouched;
// only ErrInternal escalates past the engine boundary.
var (
	ErrValidation    = errors.New("validation failed")
	ErrTurnViolation = errors.New("not this user's turn")
	ErrConflict      = errors.New("conflicting session state")
	ErrForbidden     = errors.New("forbidden")
	ErrInternal      = errors.New("internal error")
)

// httpError maps the domain taxonomy onto a fiber response body of the shape
// {"error": ..., "code": ...}. StaleVersion is flagged as retryable: the
// client should refetch the session and resubmit.
func httpError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(), "code": "validation_error",
		})
	case errors.Is(err, ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(), "code": "forbidden",
		})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(), "code": "not_found",
		})
	case errors.Is(err, store.ErrStaleVersion):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(), "code": "stale_version", "retryable": true,
		})
	case errors.Is(err, ErrTurnViolation):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(), "code": "turn_violation",
		})
	case errors.Is(err, ErrConflict), errors.Is(err, store.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(), "code": "conflict",
		})
	case errors.Is(err, games.ErrInvalidMove):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(), "code": "invalid_move",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error", "code": "internal",
		})
	}
}
