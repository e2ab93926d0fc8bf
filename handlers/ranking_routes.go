// handlers/ranking_routes.go
package handlers

import (
	"strconv"

	"snowvillage-system/middleware"
	"snowvillage-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRankingRoutes(app *fiber.App, rankingService *services.RankingService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Get("/ranking", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))

		entries, err := rankingService.GetRanking(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get ranking",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"leaderboard": entries,
			"total":       len(entries),
		})
	})
}
