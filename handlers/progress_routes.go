// handlers/progress_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"snowvillage-system/middleware"
	"snowvillage-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressRoutes(app *fiber.App, userService *services.UserService, completionService *services.CompletionService) {
	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	// Login: ensure the ledger exists, then run the streak decision table.
	securedGroup.Post("/login", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		if _, err := userService.EnsureUser(userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to ensure user ledger",
				"cause": err.Error(),
			})
		}

		user, err := userService.UpdateLogin(userID, time.Now())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update login",
				"cause": err.Error(),
			})
		}
		return c.JSON(user)
	})

	securedGroup.Get("/user", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		user, err := userService.GetByExternalID(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "DB error fetching user",
				"cause": err.Error(),
			})
		}
		return c.JSON(user)
	})

	securedGroup.Post("/tasks/:taskID/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		taskID, err := strconv.Atoi(c.Params("taskID"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid task id"})
		}

		var req struct {
			MissionID     int    `json:"mission_id"`
			AnswerPayload string `json:"answer_payload"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		result, err := completionService.CompleteTask(userID, taskID, req.MissionID, req.AnswerPayload)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) || errors.Is(err, services.ErrMissionNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "catalog entry missing",
					"cause": err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "task completion failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(result)
	})

	securedGroup.Get("/missions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		states, err := completionService.MissionsWithProgress(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get mission progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(states)
	})

	securedGroup.Get("/missions/:missionID/tasks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		missionID, err := strconv.Atoi(c.Params("missionID"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid mission id"})
		}

		states, err := completionService.TasksWithProgress(userID, missionID)
		if err != nil {
			if errors.Is(err, services.ErrMissionNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "mission not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get task progress",
				"cause": err.Error(),
			})
		}
		return c.JSON(states)
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/users/:externalID/reset", func(c *fiber.Ctx) error {
		externalID := c.Params("externalID")

		if err := userService.ResetAccount(externalID); err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "account reset failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "account reset",
			"user_id": externalID,
		})
	})
}
