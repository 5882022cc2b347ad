package trade

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"muttonhub-backend/internal/auth"
	"muttonhub-backend/internal/party"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(svc *Service) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, owner.UserID)
		c.Locals(auth.CtxUserRoleKey, owner.Role)
		c.Locals(auth.CtxEmailKey, owner.Email)
		return c.Next()
	})
	app.Post("/buyer-transactions", CreateBuyerTransactionHandler(svc))
	app.Get("/buyer-transactions", ListBuyerTransactionsHandler(svc))
	app.Post("/buyer-transactions/:id/settle", SettleBuyerTransactionHandler(svc))
	app.Post("/seller-transactions", CreateSellerTransactionHandler(svc))
	app.Get("/seller-transactions/:id", GetSellerTransactionHandler(svc))
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, _ := io.ReadAll(resp.Body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestSettleHandlerAcceptsStringAndNumber(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	app := newTestApp(f.svc)

	tx, err := f.svc.CreateBuyerTransaction(context.Background(), BuyerInput{
		BuyerID: f.buyer.ID, EntryDate: "2025-03-01", TotalAmount: dec("10000"), PaidAmount: dec("4000"),
	}, owner)
	require.NoError(t, err)

	resp := post(t, app, "/buyer-transactions/1/settle", `{"amount":"2000"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "Pending", out["status"])
	assert.Equal(t, "2025-03-01", out["entry_date"])

	resp = post(t, app, "/buyer-transactions/1/settle", `{"amount":4000}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out = decode(t, resp)
	assert.Equal(t, "Paid", out["status"])
	assert.Equal(t, "0", out["remaining_balance"])
	assert.EqualValues(t, tx.ID, out["id"])
}

func TestSettleHandlerErrors(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	app := newTestApp(f.svc)

	_, err := f.svc.CreateBuyerTransaction(context.Background(), BuyerInput{BuyerID: f.buyer.ID, TotalAmount: dec("100")}, owner)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/buyer-transactions/1/settle", `{"amount":"abc"}`).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/buyer-transactions/1/settle", `{}`).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/buyer-transactions/1/settle", `{"amount":"0"}`).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/buyer-transactions/1/settle", `{"amount":"0.004"}`).StatusCode)
	assert.Equal(t, fiber.StatusNotFound, post(t, app, "/buyer-transactions/42/settle", `{"amount":"10"}`).StatusCode)

	racing := NewService(&racingRepo{GormRepository: NewRepository(f.db), competing: dec("10")},
		party.NewRepository(f.db), f.audit, zap.NewNop())
	assert.Equal(t, fiber.StatusConflict, post(t, newTestApp(racing), "/buyer-transactions/1/settle", `{"amount":"10"}`).StatusCode)
}

func TestCreateSellerHandlerIgnoresClientTotal(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	app := newTestApp(f.svc)

	resp := post(t, app, "/seller-transactions",
		`{"seller_id":1,"entry_date":"2025-03-02","total_weight":"12.5","price_per_kg":"640","paid_amount":"0","total_amount":"1"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	out := decode(t, resp)
	assert.Equal(t, "8000", out["total_amount"])
	assert.Equal(t, "8000", out["remaining_balance"])

	resp = post(t, app, "/seller-transactions", `{"seller_id":1,"total_weight":"0","price_per_kg":"640"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/seller-transactions/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	out = decode(t, resp)
	seller, ok := out["seller"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Hotel Grand", seller["name"])
}

func TestListHandlerBadDate(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	app := newTestApp(f.svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/buyer-transactions?start=March", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/buyer-transactions", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))
}

