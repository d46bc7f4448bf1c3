package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"novelhub/internal/db"
	"novelhub/internal/user"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const transactionColumns = `id, user_id, amount, type, description, chapter_id, balance_after, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Purchase(ctx context.Context, d Debit) (*Receipt, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}
	defer tx.Rollback()

	coins, err := lockCoins(ctx, tx, d.UserID)
	if err != nil {
		return nil, err
	}

	owned, err := db.Exists(ctx, tx,
		`SELECT EXISTS(SELECT 1 FROM purchased_chapters WHERE user_id = $1 AND chapter_id = $2)`,
		d.UserID, d.ChapterID,
	)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if owned {
		chapters, err := user.PurchasedChapters(ctx, tx, d.UserID)
		if err != nil {
			return nil, err
		}
		return &Receipt{Coins: coins, PurchasedChapters: chapters, AlreadyOwned: true}, nil
	}

	if coins < d.Price {
		return nil, ErrInsufficientFunds
	}
	balance := coins - d.Price

	if d.Price > 0 {
		if err := setCoins(ctx, tx, d.UserID, balance); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO purchased_chapters (user_id, chapter_id) VALUES ($1, $2)`,
		d.UserID, d.ChapterID,
	)
	if err != nil {
		return nil, fmt.Errorf("record ownership: %w", err)
	}

	var ledger *Transaction
	if d.Price > 0 {
		chapterID := d.ChapterID
		ledger = &Transaction{
			UserID:       d.UserID,
			Amount:       d.Price,
			Type:         TypePurchase,
			Description:  d.Description,
			ChapterID:    &chapterID,
			BalanceAfter: balance,
		}
		if err := insertTransaction(ctx, tx, ledger); err != nil {
			return nil, err
		}
	}

	chapters, err := user.PurchasedChapters(ctx, tx, d.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return &Receipt{Coins: balance, PurchasedChapters: chapters, Transaction: ledger}, nil
}

func (r *repository) Deposit(ctx context.Context, userID string, amount int64, description string) (*Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin deposit: %w", err)
	}
	defer tx.Rollback()

	coins, err := lockCoins(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	balance := coins + amount
	if err := setCoins(ctx, tx, userID, balance); err != nil {
		return nil, err
	}

	ledger := &Transaction{
		UserID:       userID,
		Amount:       amount,
		Type:         TypeDeposit,
		Description:  description,
		BalanceAfter: balance,
	}
	if err := insertTransaction(ctx, tx, ledger); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit deposit: %w", err)
	}
	return ledger, nil
}

func (r *repository) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	txs := []Transaction{}
	err := r.db.SelectContext(ctx, &txs, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func lockCoins(ctx context.Context, tx *sqlx.Tx, userID string) (int64, error) {
	var coins int64
	err := tx.GetContext(ctx, &coins, `SELECT coins FROM users WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, user.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock user: %w", err)
	}
	return coins, nil
}

func setCoins(ctx context.Context, tx *sqlx.Tx, userID string, coins int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET coins = $2, updated_at = NOW() WHERE id = $1`,
		userID, coins,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	t.ID = uuid.NewString()
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, type, description, chapter_id, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		t.ID, t.UserID, t.Amount, t.Type, t.Description, t.ChapterID, t.BalanceAfter,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}
