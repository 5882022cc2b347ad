package server

import (
	"context"
	"time"

	"muttonhub-backend/internal/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/health
func HealthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "DOWN",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "UP"})
	}
}
