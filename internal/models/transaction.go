package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMode string

const (
	PaymentCash         PaymentMode = "cash"
	PaymentUPI          PaymentMode = "upi"
	PaymentBankTransfer PaymentMode = "bank_transfer"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentBankTransfer:
		return true
	}
	return false
}

// Ledger holds the money columns common to both transaction tables.
// RemainingBalance is always TotalAmount - PaidAmount after a write.
type Ledger struct {
	EntryDate        time.Time       `gorm:"type:date;index;not null" json:"entry_date"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	PaidAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"paid_amount"`
	RemainingBalance decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"remaining_balance"`
	PaymentMode      PaymentMode     `gorm:"size:20;not null" json:"payment_mode"`
	// Version guards settlements against concurrent writers.
	Version int64 `gorm:"not null;default:1" json:"version"`
}

// BuyerTransaction: goats bought from a buyer-side party.
type BuyerTransaction struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	BuyerID       uint   `gorm:"index;not null" json:"buyer_id"`
	Buyer         *Buyer `gorm:"foreignKey:BuyerID;constraint:OnDelete:RESTRICT" json:"buyer,omitempty"`
	NumberOfGoats int    `gorm:"not null" json:"number_of_goats"`
	Ledger
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SellerTransaction: meat sold by weight. TotalAmount = TotalWeight * PricePerKg,
// fixed at creation.
type SellerTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SellerID    uint            `gorm:"index;not null" json:"seller_id"`
	Seller      *Seller         `gorm:"foreignKey:SellerID;constraint:OnDelete:RESTRICT" json:"seller,omitempty"`
	TotalWeight decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"total_weight"`
	PricePerKg  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price_per_kg"`
	Ledger
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
