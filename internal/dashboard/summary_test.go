package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"muttonhub-backend/internal/database/dbtest"
	"muttonhub-backend/internal/models"
	"muttonhub-backend/internal/party"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(db *gorm.DB) *Service {
	return NewService(db, party.NewRepository(db))
}

type failingCounter struct{}

func (failingCounter) Count(context.Context, models.PartyKind) (int64, error) {
	return 0, errors.New("count buyers: connection refused")
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	buyer := models.Buyer{Profile: models.Profile{Name: "Ravi", Phone: "1"}}
	require.NoError(t, db.Create(&buyer).Error)
	require.NoError(t, db.Create(&models.Buyer{Profile: models.Profile{Name: "Salim", Phone: "2"}}).Error)
	seller := models.Seller{Profile: models.Profile{Name: "Hotel Grand", Phone: "3"}}
	require.NoError(t, db.Create(&seller).Error)

	require.NoError(t, db.Create(&models.BuyerTransaction{BuyerID: buyer.ID, NumberOfGoats: 5, Ledger: models.Ledger{
		EntryDate: day("2025-03-09"), TotalAmount: dec("10000"), PaidAmount: dec("4000"),
		RemainingBalance: dec("6000"), PaymentMode: models.PaymentCash, Version: 1,
	}}).Error)
	require.NoError(t, db.Create(&models.SellerTransaction{SellerID: seller.ID, TotalWeight: dec("25"), PricePerKg: dec("600"), Ledger: models.Ledger{
		EntryDate: day("2025-03-10"), TotalAmount: dec("15000"), PaidAmount: dec("5000"),
		RemainingBalance: dec("10000"), PaymentMode: models.PaymentUPI, Version: 1,
	}}).Error)
}

func TestSummary(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)

	sum, err := newService(db).Summary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.TotalBuyers)
	assert.EqualValues(t, 1, sum.TotalSellers)
	assert.True(t, dec("6000").Equal(sum.PendingBuyerAmount))
	assert.True(t, dec("4000").Equal(sum.PaidBuyerAmount))
	assert.True(t, dec("10000").Equal(sum.PendingSellerAmount))
	assert.True(t, dec("5000").Equal(sum.PaidSellerAmount))
}

func TestSummaryEmpty(t *testing.T) {
	sum, err := newService(dbtest.Open(t)).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalBuyers)
	assert.True(t, sum.PendingBuyerAmount.IsZero())
}

func TestSummaryCountFailure(t *testing.T) {
	_, err := NewService(dbtest.Open(t), failingCounter{}).Summary(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestChartFillsMissingDays(t *testing.T) {
	db := dbtest.Open(t)
	seed(t, db)

	resp, err := newService(db).Chart(context.Background(), 3, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-08", resp.From)
	assert.Equal(t, "2025-03-10", resp.To)
	require.Len(t, resp.Points, 3)

	assert.True(t, resp.Points[0].Net.IsZero())
	assert.True(t, dec("10000").Equal(resp.Points[1].Purchases))
	assert.True(t, dec("-10000").Equal(resp.Points[1].Net))
	assert.True(t, dec("15000").Equal(resp.Points[2].Sales))
}

func TestChartHandlerValidatesDays(t *testing.T) {
	app := fiber.New()
	app.Get("/chart", ChartHandler(newService(dbtest.Open(t)), zap.NewNop()))
	app.Get("/summary", SummaryHandler(newService(dbtest.Open(t)), zap.NewNop()))

	resp, err := app.Test(httptest.NewRequest("GET", "/chart?days=365", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/summary", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"total_buyers":0`)
}
