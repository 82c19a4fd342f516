// handlers/gamification_routes.go
package handlers

import (
	"eco-gamification-system/middleware"
	"eco-gamification-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGamificationRoutes(app *fiber.App, engine *services.Engine) {
	// 🔐 Secured routes — require user context from the gateway
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/user/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		prof, err := engine.GetProfile(userID)
		if err != nil {
			return engineError(c, err)
		}

		return c.JSON(fiber.Map{
			"id":                      prof.ID,
			"user_id":                 prof.UserID,
			"total_points":            prof.TotalPoints,
			"level":                   prof.Level,
			"level_progress":          prof.LevelProgress,
			"classifications_count":   prof.ClassificationsCount,
			"weekly_classifications":  prof.WeeklyClassifications,
			"monthly_classifications": prof.MonthlyClassifications,
			"quiz_answers_count":      prof.QuizAnswersCount,
			"accuracy_rate":           prof.AccuracyRate,
			"streak_days":             prof.StreakDays,
			"longest_streak":          prof.LongestStreak,
			"last_activity_date":      prof.LastActivityDate,
			"last_level_up_at":        prof.LastLevelUpAt,
		})
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		statuses, err := engine.ListAchievements(userID)
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(statuses)
	})

	securedGroup.Post("/events/classification", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			IsCorrect  bool   `json:"is_correct"`
			Category   string `json:"category"`
			OccurredAt string `json:"occurred_at"` // RFC3339, defaults to now
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

		prof, unlocked, err := engine.RecordClassification(c.Context(), userID, req.IsCorrect, req.Category, occurredAt)
		if err != nil {
			return engineError(c, err)
		}

		return c.JSON(fiber.Map{
			"profile":        prof,
			"newly_unlocked": unlocked,
		})
	})

	securedGroup.Post("/events/quiz/answer", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			IsCorrect   bool   `json:"is_correct"`
			PointsValue int64  `json:"points_value"`
			OccurredAt  string `json:"occurred_at"`
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

		prof, err := engine.RecordQuizAnswer(c.Context(), userID, req.IsCorrect, req.PointsValue, occurredAt)
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(fiber.Map{"profile": prof})
	})

	securedGroup.Post("/events/quiz/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			OccurredAt string `json:"occurred_at"`
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

		prof, err := engine.RecordQuizComplete(c.Context(), userID, occurredAt)
		if err != nil {
			return engineError(c, err)
		}
		return c.JSON(fiber.Map{"profile": prof})
	})
}
