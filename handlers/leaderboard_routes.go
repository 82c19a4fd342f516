// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"eco-gamification-system/models"
	"eco-gamification-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, engine *services.Engine) {
	// Leaderboards are gateway-authenticated but need no user context
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		scope := models.LeaderboardScope{
			Kind: models.LeaderboardScopeKind(c.Query("scope", string(models.ScopeGlobal))),
			Key:  c.Query("key"),
		}
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		offset, _ := strconv.Atoi(c.Query("offset", "0"))

		entries, err := engine.GetLeaderboard(c.Context(), scope, limit, offset)
		if err != nil {
			return engineError(c, err)
		}

		return c.JSON(fiber.Map{
			"scope":   scope.Kind,
			"key":     scope.Key,
			"limit":   limit,
			"offset":  offset,
			"entries": entries,
		})
	})
}
