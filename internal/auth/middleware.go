package auth

import (
	"strings"

	"muttonhub-backend/internal/audit"
	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxEmailKey    = "user_email"
)

// JWTMiddleware authenticates the bearer token and resolves the caller's
// role from the store on every request. The role claim in the token is
// ignored so a demotion takes effect immediately.
func JWTMiddleware(secret string, roles *RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		role, err := roles.Resolve(c.UserContext(), claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "Your role could not be determined")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, role)
		c.Locals(CtxEmailKey, claims.Email)

		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.Role)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role unavailable")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to do this")
	}
}

// CurrentActor returns the identity the JWT middleware stored on c.
func CurrentActor(c *fiber.Ctx) (audit.Actor, error) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok || userID == 0 {
		return audit.Actor{}, fiber.NewError(fiber.StatusUnauthorized, "Not signed in")
	}
	role, _ := c.Locals(CtxUserRoleKey).(models.Role)
	email, _ := c.Locals(CtxEmailKey).(string)
	return audit.Actor{UserID: userID, Email: email, Role: role}, nil
}
