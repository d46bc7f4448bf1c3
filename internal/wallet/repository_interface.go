package wallet

import "context"

type Repository interface {
	// Purchase locks the user, re-checks ownership and balance, then debits,
	// records ownership and appends a purchase transaction in one unit.
	Purchase(ctx context.Context, d Debit) (*Receipt, error)
	Deposit(ctx context.Context, userID string, amount int64, description string) (*Transaction, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
}
