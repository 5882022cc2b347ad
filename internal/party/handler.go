package party

import (
	"errors"
	"strconv"
	"time"

	"muttonhub-backend/internal/export"
	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CreatePartyRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type PartyResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

func toResponse(p models.Profile) PartyResponse {
	return PartyResponse{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/buyers, /api/sellers
func CreateHandler(repo *Repository, kind models.PartyKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePartyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		p := models.Profile{Name: body.Name, Phone: body.Phone, Address: body.Address}
		if err := repo.Create(c.UserContext(), kind, &p); err != nil {
			if errors.Is(err, ErrInvalid) {
				return fiber.NewError(fiber.StatusBadRequest, "Name and phone are required")
			}
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(p))
	}
}

// GET /api/buyers?q=...
func ListHandler(repo *Repository, kind models.PartyKind, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parties, err := repo.List(c.UserContext(), kind, c.Query("q"))
		if err != nil {
			log.Error("list parties failed", zap.String("kind", string(kind)), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load "+kind.Table())
		}

		resp := make([]PartyResponse, 0, len(parties))
		for _, p := range parties {
			resp = append(resp, toResponse(p))
		}
		return c.JSON(resp)
	}
}

// GET /api/buyers/:id
func GetHandler(repo *Repository, kind models.PartyKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid id")
		}

		p, err := repo.Get(c.UserContext(), kind, uint(id))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, string(kind)+" not found")
		}
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*p))
	}
}

// GET /api/buyers/export
func ExportHandler(repo *Repository, kind models.PartyKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parties, err := repo.List(c.UserContext(), kind, c.Query("q"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load "+kind.Table())
		}

		rows := make([][]any, 0, len(parties))
		for _, p := range parties {
			rows = append(rows, []any{p.Name, p.Phone, p.Address, p.CreatedAt.Format("2006-01-02")})
		}

		sheet := "Buyers"
		if kind == models.PartySeller {
			sheet = "Sellers"
		}
		buf, err := export.Build(export.Sheet{
			Name:    sheet,
			Headers: []string{"Name", "Phone", "Address", "Created Date"},
			Rows:    rows,
		})
		if err != nil {
			return err
		}
		return export.Send(c, export.DatedFileName(kind.Table()+"-list", time.Now()), buf)
	}
}
