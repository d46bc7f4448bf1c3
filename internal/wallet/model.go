package wallet

import "time"

const (
	TypeDeposit  = "deposit"
	TypePurchase = "purchase"
)

// MaxTopUp caps a single mocked top-up.
const MaxTopUp int64 = 100000

// Transaction is an immutable ledger row. Amount is always positive; Type gives the direction.
type Transaction struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Type         string    `db:"type" json:"type"`
	Description  string    `db:"description" json:"description"`
	ChapterID    *string   `db:"chapter_id" json:"chapter_id,omitempty"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Debit describes a chapter purchase to apply atomically.
type Debit struct {
	UserID      string
	ChapterID   string
	Price       int64
	Description string
}

// Receipt is the state of the wallet after a debit attempt.
type Receipt struct {
	Coins             int64
	PurchasedChapters []string
	Transaction       *Transaction
	// AlreadyOwned is set when the chapter was owned before the lock was taken; nothing changed.
	AlreadyOwned bool
}

type PurchaseResult struct {
	Success           bool         `json:"success"`
	Coins             int64        `json:"coins"`
	AmountCharged     int64        `json:"amount_charged"`
	PurchasedChapters []string     `json:"purchased_chapters"`
	Transaction       *Transaction `json:"transaction,omitempty"`
}

type AddCoinsRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0,lte=100000"`
}

type AddCoinsResult struct {
	Coins       int64        `json:"coins"`
	Transaction *Transaction `json:"transaction"`
}
