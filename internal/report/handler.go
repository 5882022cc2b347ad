package report

import (
	"bytes"
	"errors"
	"time"

	"muttonhub-backend/internal/export"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type workbookFunc func(rep *Report, now time.Time) (*bytes.Buffer, string, error)

func build(c *fiber.Ctx, svc *Service, log *zap.Logger) (*Report, error) {
	r, err := ParseRange(c.Query("start"), c.Query("end"), time.Now())
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rep, err := svc.Build(c.UserContext(), r)
	if errors.Is(err, ErrInvalidRange) {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		log.Error("build report failed", zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Could not load reports")
	}
	return rep, nil
}

// GET /api/reports?start=2025-01-01&end=2025-01-31
func ReportHandler(svc *Service, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rep, err := build(c, svc, log)
		if err != nil {
			return err
		}
		return c.JSON(rep.Response())
	}
}

// GET /api/reports/export/:kind  (buyers, sellers, combined)
func ExportHandler(svc *Service, log *zap.Logger) fiber.Handler {
	workbooks := map[string]workbookFunc{
		"buyers":   BuyerWorkbook,
		"sellers":  SellerWorkbook,
		"combined": CombinedWorkbook,
	}

	return func(c *fiber.Ctx) error {
		wb, ok := workbooks[c.Params("kind")]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Unknown report type")
		}

		rep, err := build(c, svc, log)
		if err != nil {
			return err
		}

		buf, filename, err := wb(rep, time.Now())
		if err != nil {
			return err
		}
		return export.Send(c, filename, buf)
	}
}
