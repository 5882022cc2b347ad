package admin

import (
	"strconv"
	"time"

	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserRoleResponse struct {
	UserID       uint        `json:"user_id"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	CreatedAt    string      `json:"created_at"`
	LastSignInAt *string     `json:"last_sign_in_at"` // null = never signed in
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role"`
}

type userRoleRow struct {
	UserID       uint
	Email        string
	Role         models.Role
	CreatedAt    time.Time
	LastSignInAt *time.Time
}

func toUserRoleResponse(r userRoleRow) UserRoleResponse {
	resp := UserRoleResponse{
		UserID:    r.UserID,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.LastSignInAt != nil {
		s := r.LastSignInAt.Format("2006-01-02 15:04:05")
		resp.LastSignInAt = &s
	}
	return resp
}

// ----------------------------------------
// USER ROLES (owner only)
// ----------------------------------------

// GET /api/admin/users
func ListUsersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var rows []userRoleRow
		err := db.WithContext(c.UserContext()).
			Table("user_roles").
			Select("user_roles.user_id, users.email, user_roles.role, users.created_at, users.last_sign_in_at").
			Joins("JOIN users ON users.id = user_roles.user_id").
			Order("users.created_at ASC").
			Scan(&rows).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list users")
		}

		res := make([]UserRoleResponse, 0, len(rows))
		for _, r := range rows {
			res = append(res, toUserRoleResponse(r))
		}
		return c.JSON(res)
	}
}

// PUT /api/admin/users/:user_id/role
func UpdateUserRoleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := parseUserID(c)
		if err != nil {
			return err
		}

		var body UpdateRoleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !body.Role.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "role must be owner, admin or accountant")
		}

		res := db.WithContext(c.UserContext()).
			Model(&models.UserRoleAssignment{}).
			Where("user_id = ?", userID).
			Update("role", body.Role)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update role")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}

		return c.JSON(fiber.Map{"user_id": userID, "role": body.Role})
	}
}

// DELETE /api/admin/users/:user_id
// Removes the role assignment only; the account itself stays.
func DeleteUserRoleHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := parseUserID(c)
		if err != nil {
			return err
		}

		var assignment models.UserRoleAssignment
		if err := db.WithContext(c.UserContext()).First(&assignment, "user_id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		if assignment.Role == models.RoleOwner {
			return fiber.NewError(fiber.StatusForbidden, "Owner accounts cannot be removed")
		}

		if err := db.WithContext(c.UserContext()).Delete(&models.UserRoleAssignment{}, "user_id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not remove user")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("user_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid user id")
	}
	return uint(id), nil
}
