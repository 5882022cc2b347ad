// Package navigation declares the dashboard sections and which roles see them.
// Roles are a flat set; nothing is inherited.
package navigation

import (
	"muttonhub-backend/internal/auth"
	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type Item struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	Roles []models.Role `json:"-"`
}

var everyone = []models.Role{models.RoleOwner, models.RoleAdmin, models.RoleAccountant}

// Menu is in display order.
var Menu = []Item{
	{ID: "dashboard", Label: "Dashboard", Roles: everyone},
	{ID: "buyers", Label: "Buyers", Roles: everyone},
	{ID: "sellers", Label: "Sellers", Roles: everyone},
	{ID: "reports", Label: "Reports", Roles: everyone},
	{ID: "logs", Label: "Logs", Roles: []models.Role{models.RoleOwner}},
	{ID: "users", Label: "User Management", Roles: []models.Role{models.RoleOwner}},
}

func (i Item) AllowedFor(role models.Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// VisibleItems returns the menu entries role may see.
func VisibleItems(role models.Role) []Item {
	items := make([]Item, 0, len(Menu))
	for _, it := range Menu {
		if it.AllowedFor(role) {
			items = append(items, it)
		}
	}
	return items
}

// GET /api/navigation
func Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.Role)
		return c.JSON(fiber.Map{
			"role":  role,
			"items": VisibleItems(role),
		})
	}
}
