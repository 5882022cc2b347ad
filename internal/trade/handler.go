package trade

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"muttonhub-backend/internal/audit"
	"muttonhub-backend/internal/auth"
	"muttonhub-backend/internal/models"
	"muttonhub-backend/internal/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateBuyerTransactionRequest struct {
	BuyerID       uint               `json:"buyer_id"`
	EntryDate     string             `json:"entry_date"` // "2025-03-01"
	NumberOfGoats int                `json:"number_of_goats"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	PaymentMode   models.PaymentMode `json:"payment_mode"`
}

// total_amount is not accepted; it is derived from weight and price.
type CreateSellerTransactionRequest struct {
	SellerID    uint               `json:"seller_id"`
	EntryDate   string             `json:"entry_date"`
	TotalWeight decimal.Decimal    `json:"total_weight"`
	PricePerKg  decimal.Decimal    `json:"price_per_kg"`
	PaidAmount  decimal.Decimal    `json:"paid_amount"`
	PaymentMode models.PaymentMode `json:"payment_mode"`
}

// Amount may be sent as "6000" or 6000.
type SettleRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type BuyerTransactionResponse struct {
	models.BuyerTransaction
	EntryDate string `json:"entry_date"`
	Status    string `json:"status"`
}

type SellerTransactionResponse struct {
	models.SellerTransaction
	EntryDate string `json:"entry_date"`
	Status    string `json:"status"`
}

// BuyerResponse adds the calendar entry_date and the derived status.
func BuyerResponse(tx models.BuyerTransaction) BuyerTransactionResponse {
	return BuyerTransactionResponse{
		BuyerTransaction: tx,
		EntryDate:        tx.EntryDate.Format("2006-01-02"),
		Status:           settlement.StatusOf(tx.RemainingBalance),
	}
}

func SellerResponse(tx models.SellerTransaction) SellerTransactionResponse {
	return SellerTransactionResponse{
		SellerTransaction: tx,
		EntryDate:         tx.EntryDate.Format("2006-01-02"),
		Status:            settlement.StatusOf(tx.RemainingBalance),
	}
}

// -------------------------
// Buyer transactions
// -------------------------

// POST /api/buyer-transactions
func CreateBuyerTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body CreateBuyerTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		tx, err := svc.CreateBuyerTransaction(c.UserContext(), BuyerInput{
			BuyerID:       body.BuyerID,
			EntryDate:     body.EntryDate,
			NumberOfGoats: body.NumberOfGoats,
			TotalAmount:   body.TotalAmount,
			PaidAmount:    body.PaidAmount,
			PaymentMode:   body.PaymentMode,
		}, actor)
		if err != nil {
			return mapError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(BuyerResponse(*tx))
	}
}

// GET /api/buyer-transactions?q=&start=&end=
func ListBuyerTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}

		txs, err := svc.ListBuyerTransactions(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load buyer transactions")
		}

		resp := make([]BuyerTransactionResponse, 0, len(txs))
		for _, tx := range txs {
			resp = append(resp, BuyerResponse(tx))
		}
		return c.JSON(resp)
	}
}

// GET /api/buyer-transactions/:id
func GetBuyerTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		tx, err := svc.GetBuyerTransaction(c.UserContext(), id)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(BuyerResponse(*tx))
	}
}

// POST /api/buyer-transactions/:id/settle
func SettleBuyerTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, id, amount, err := settleParams(c)
		if err != nil {
			return err
		}
		tx, err := svc.SettleBuyerTransaction(c.UserContext(), id, amount, actor)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(BuyerResponse(*tx))
	}
}

// -------------------------
// Seller transactions
// -------------------------

// POST /api/seller-transactions
func CreateSellerTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.CurrentActor(c)
		if err != nil {
			return err
		}

		var body CreateSellerTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		tx, err := svc.CreateSellerTransaction(c.UserContext(), SellerInput{
			SellerID:    body.SellerID,
			EntryDate:   body.EntryDate,
			TotalWeight: body.TotalWeight,
			PricePerKg:  body.PricePerKg,
			PaidAmount:  body.PaidAmount,
			PaymentMode: body.PaymentMode,
		}, actor)
		if err != nil {
			return mapError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(SellerResponse(*tx))
	}
}

// GET /api/seller-transactions?q=&start=&end=
func ListSellerTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}

		txs, err := svc.ListSellerTransactions(c.UserContext(), f)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load seller transactions")
		}

		resp := make([]SellerTransactionResponse, 0, len(txs))
		for _, tx := range txs {
			resp = append(resp, SellerResponse(tx))
		}
		return c.JSON(resp)
	}
}

// GET /api/seller-transactions/:id
func GetSellerTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		tx, err := svc.GetSellerTransaction(c.UserContext(), id)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(SellerResponse(*tx))
	}
}

// POST /api/seller-transactions/:id/settle
func SettleSellerTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, id, amount, err := settleParams(c)
		if err != nil {
			return err
		}
		tx, err := svc.SettleSellerTransaction(c.UserContext(), id, amount, actor)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(SellerResponse(*tx))
	}
}

// -------------------------
// Helpers
// -------------------------

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func settleParams(c *fiber.Ctx) (actor audit.Actor, id uint, amount decimal.Decimal, err error) {
	actor, err = auth.CurrentActor(c)
	if err != nil {
		return
	}
	id, err = parseID(c)
	if err != nil {
		return
	}

	var body SettleRequest
	if perr := c.BodyParser(&body); perr != nil {
		err = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		return
	}
	amount, perr := settlement.ParseAmount(strings.Trim(string(body.Amount), `"`))
	if perr != nil {
		err = fiber.NewError(fiber.StatusBadRequest, "Amount must be a number")
	}
	return
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{Search: c.Query("q")}

	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"start", &f.Start}, {"end", &f.End}} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, p.key+" must be YYYY-MM-DD")
		}
		*p.dst = &d
	}
	return f, nil
}

func mapError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Msg)
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, "Amount must be greater than zero")
	case errors.Is(err, ErrPartyNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "Party does not exist")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
	case errors.Is(err, ErrVersionConflict):
		return fiber.NewError(fiber.StatusConflict, "Transaction was updated by someone else, reload and try again")
	}
	return err
}
