// handlers/challenge_routes.go
package handlers

import (
	"eco-gamification-system/middleware"
	"eco-gamification-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, engine *services.Engine) {
	securedGroup := app.Group("/s/challenges", middleware.UserContextMiddleware())

	// List open challenges with the caller's participation state
	securedGroup.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		defs, err := engine.ListChallenges()
		if err != nil {
			return engineError(c, err)
		}

		var response []fiber.Map
		for _, def := range defs {
			entry := fiber.Map{
				"key":              def.Key,
				"name":             def.Name,
				"description":      def.Description,
				"type":             def.Type,
				"category":         def.Category,
				"target_value":     def.TargetValue,
				"points_reward":    def.PointsReward,
				"bonus_multiplier": def.BonusMultiplier,
				"start_date":       def.StartDate,
				"end_date":         def.EndDate,
			}
			part, err := engine.Challenges.Participation(userID, def.Key)
			if err != nil {
				return engineError(c, err)
			}
			if part != nil {
				entry["joined"] = true
				entry["progress"] = part.Progress
				entry["is_completed"] = part.IsCompleted
			} else {
				entry["joined"] = false
			}
			response = append(response, entry)
		}
		return c.JSON(response)
	})

	securedGroup.Post("/:key/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		part, err := engine.JoinChallenge(userID, c.Params("key"))
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(part)
	})

	securedGroup.Post("/:key/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			Delta      float64 `json:"delta"`
			OccurredAt string  `json:"occurred_at"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		occurredAt, err := parseOccurredAt(req.OccurredAt, engine.Clock.Now())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid occurred_at timestamp",
				"cause": err.Error(),
			})
		}

		part, err := engine.UpdateChallengeProgress(c.Context(), userID, c.Params("key"), req.Delta, occurredAt)
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(part)
	})
}
