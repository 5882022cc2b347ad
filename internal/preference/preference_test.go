package preference

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"muttonhub-backend/internal/auth"
	"muttonhub-backend/internal/database/dbtest"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefaultsAndUpsert(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	ctx := context.Background()

	pref, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, pref.DarkMode)

	_, err = store.SetDarkMode(ctx, 5, true)
	require.NoError(t, err)
	pref, err = store.Get(ctx, 5)
	require.NoError(t, err)
	assert.True(t, pref.DarkMode)

	_, err = store.SetDarkMode(ctx, 5, false)
	require.NoError(t, err)
	pref, err = store.Get(ctx, 5)
	require.NoError(t, err)
	assert.False(t, pref.DarkMode)
}

func TestHandlers(t *testing.T) {
	store := NewStore(dbtest.Open(t))
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(9))
		return c.Next()
	})
	app.Get("/preferences", GetHandler(store))
	app.Put("/preferences", UpdateHandler(store))

	req := httptest.NewRequest("PUT", "/preferences", strings.NewReader(`{"dark_mode":true}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/preferences", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"dark_mode":true}`, string(body))

	req = httptest.NewRequest("PUT", "/preferences", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
