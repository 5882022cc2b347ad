package auth

import (
	"errors"
	"strings"

	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SignUpRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	SecurityCode string `json:"security_code"`
	Role         string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID           uint        `json:"id"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	CreatedAt    string      `json:"created_at"`
	LastSignInAt *string     `json:"last_sign_in_at"`
}

func toUserResponse(s *Session) UserResponse {
	resp := UserResponse{
		ID:        s.User.ID,
		Email:     s.User.Email,
		Role:      s.Role,
		CreatedAt: s.User.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if s.User.LastSignInAt != nil {
		ts := s.User.LastSignInAt.Format("2006-01-02 15:04:05")
		resp.LastSignInAt = &ts
	}
	return resp
}

// POST /api/auth/signup
func SignUpHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SignUpRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		session, err := svc.SignUp(c.UserContext(), SignUpInput{
			Email:        body.Email,
			Password:     body.Password,
			SecurityCode: body.SecurityCode,
			Role:         models.Role(strings.TrimSpace(body.Role)),
		})
		switch {
		case errors.Is(err, ErrInvalidSecurityCode):
			return fiber.NewError(fiber.StatusForbidden, "Invalid security code")
		case errors.Is(err, ErrEmailTaken):
			return fiber.NewError(fiber.StatusConflict, "User already registered")
		case errors.Is(err, ErrInvalidSignUp):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case err != nil:
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(toUserResponse(session))
	}
}

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		token, session, err := svc.SignIn(c.UserContext(), body.Email, body.Password)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid login credentials")
		case errors.Is(err, ErrRoleUnavailable):
			return fiber.NewError(fiber.StatusForbidden, "Your role could not be determined")
		case err != nil:
			return err
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  toUserResponse(session),
		})
	}
}

// GET /api/auth/session
func SessionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not signed in")
		}

		session, err := svc.Session(c.UserContext(), userID)
		switch {
		case errors.Is(err, ErrUserNotFound):
			return fiber.NewError(fiber.StatusUnauthorized, "User no longer exists")
		case errors.Is(err, ErrRoleUnavailable):
			return fiber.NewError(fiber.StatusForbidden, "Your role could not be determined")
		case err != nil:
			return err
		}

		return c.JSON(toUserResponse(session))
	}
}

// POST /api/auth/logout. Tokens are stateless; the client drops its copy.
func LogoutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}
}
