package models

import "time"

// Profile is the shape shared by buyers and sellers.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Phone     string    `gorm:"size:30;not null;index" json:"phone"`
	Address   string    `gorm:"size:500" json:"address"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type Buyer struct {
	Profile
}

func (Buyer) TableName() string { return "buyers" }

type Seller struct {
	Profile
}

func (Seller) TableName() string { return "sellers" }

// PartyKind selects the buyer or seller side of the business.
type PartyKind string

const (
	PartyBuyer  PartyKind = "buyer"
	PartySeller PartyKind = "seller"
)

func (k PartyKind) Table() string {
	if k == PartySeller {
		return "sellers"
	}
	return "buyers"
}

func (k PartyKind) TransactionTable() string {
	if k == PartySeller {
		return "seller_transactions"
	}
	return "buyer_transactions"
}
