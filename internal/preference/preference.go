// Package preference persists per-user UI settings.
package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"muttonhub-backend/internal/auth"
	"muttonhub-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns the zero preference when the user never saved one.
func (s *Store) Get(ctx context.Context, userID uint) (models.UserPreference, error) {
	pref := models.UserPreference{UserID: userID}
	err := s.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserPreference{UserID: userID}, nil
	}
	if err != nil {
		return pref, fmt.Errorf("get preference: %w", err)
	}
	return pref, nil
}

func (s *Store) SetDarkMode(ctx context.Context, userID uint, dark bool) (models.UserPreference, error) {
	pref := models.UserPreference{UserID: userID, DarkMode: dark, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dark_mode", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return pref, fmt.Errorf("save preference: %w", err)
	}
	return pref, nil
}

type PreferenceResponse struct {
	DarkMode bool `json:"dark_mode"`
}

type UpdatePreferenceRequest struct {
	DarkMode *bool `json:"dark_mode"`
}

// GET /api/preferences
func GetHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}
		pref, err := store.Get(c.UserContext(), actor.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load preferences")
		}
		return c.JSON(PreferenceResponse{DarkMode: pref.DarkMode})
	}
}

// PUT /api/preferences
func UpdateHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body UpdatePreferenceRequest
		if err := c.BodyParser(&body); err != nil || body.DarkMode == nil {
			return fiber.NewError(fiber.StatusBadRequest, "dark_mode is required")
		}

		pref, err := store.SetDarkMode(c.UserContext(), actor.UserID, *body.DarkMode)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save preferences")
		}
		return c.JSON(PreferenceResponse{DarkMode: pref.DarkMode})
	}
}
