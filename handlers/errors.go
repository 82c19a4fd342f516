package handlers

import (
	"errors"
	"time"

	"eco-gamification-system/services"

	"github.com/gofiber/fiber/v2"
)

// engineError maps the engine's error taxonomy onto HTTP responses.
func engineError(c *fiber.Ctx, err error) error {
	var invalid *services.InvalidEventError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid event",
			"cause": invalid.Reason,
		})
	}

	var closed *services.ChallengeClosedError
	if errors.As(err, &closed) {
		// Business-rule rejection, not a failure
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":    "not_eligible",
			"error":     "challenge is closed",
			"challenge": closed.ChallengeKey,
		})
	}

	var conflict *services.ConcurrencyConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "temporarily busy, please try again",
		})
	}

	var storage *services.StorageUnavailableError
	if errors.As(err, &storage) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "service temporarily unavailable, please try again",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}

// parseOccurredAt reads an RFC3339 timestamp, defaulting to now when absent.
func parseOccurredAt(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	return time.Parse(time.RFC3339, raw)
}
