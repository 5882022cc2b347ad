package dashboard

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxChartDays = 90

// GET /api/dashboard/summary
func SummaryHandler(svc *Service, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Summary(c.UserContext())
		if err != nil {
			log.Error("dashboard summary failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load dashboard summary")
		}
		return c.JSON(sum)
	}
}

// GET /api/dashboard/chart?days=7
func ChartHandler(svc *Service, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := 7
		if s := c.Query("days"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > maxChartDays {
				return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 90")
			}
			days = n
		}

		resp, err := svc.Chart(c.UserContext(), days, time.Now())
		if err != nil {
			log.Error("dashboard chart failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load chart data")
		}
		return c.JSON(resp)
	}
}
