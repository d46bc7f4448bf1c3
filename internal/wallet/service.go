package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"novelhub/internal/entitlement"
	"novelhub/internal/logger"
	"novelhub/internal/metrics"
	"novelhub/internal/novel"
	"novelhub/internal/settings"
	"novelhub/internal/user"
)

var (
	ErrInsufficientFunds = errors.New("insufficient coins")
	ErrInvalidAmount     = errors.New("amount must be between 1 and 100000")
)

const notifyTimeout = 2 * time.Second

// Catalog is the read side of the content store used for pricing.
type Catalog interface {
	GetChapterByID(ctx context.Context, id string) (*novel.Chapter, error)
	GetNovelByID(ctx context.Context, id string) (*novel.Novel, error)
}

type Accounts interface {
	GetByID(ctx context.Context, userID string) (*user.User, error)
}

type SettingsSource interface {
	Fresh(ctx context.Context) (*settings.SiteSettings, error)
}

// Notifier sends receipts. Failures never affect the ledger.
type Notifier interface {
	SendPurchaseReceipt(ctx context.Context, to, name, chapterTitle string, amount, balance int64) error
	SendDepositReceipt(ctx context.Context, to, name string, amount, balance int64) error
}

type Service interface {
	Purchase(ctx context.Context, userID, chapterID string) (*PurchaseResult, error)
	AddCoins(ctx context.Context, userID string, amount int64) (*AddCoinsResult, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	accounts Accounts
	settings SettingsSource
	notifier Notifier
}

// NewService builds the ledger service. notifier may be nil.
func NewService(repo Repository, catalog Catalog, accounts Accounts, settings SettingsSource, notifier Notifier) Service {
	return &service{
		repo:     repo,
		catalog:  catalog,
		accounts: accounts,
		settings: settings,
		notifier: notifier,
	}
}

func (s *service) Purchase(ctx context.Context, userID, chapterID string) (*PurchaseResult, error) {
	res, err := s.purchase(ctx, userID, chapterID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientFunds):
			metrics.RecordPurchase("insufficient_funds", 0)
		case errors.Is(err, novel.ErrChapterNotFound), errors.Is(err, novel.ErrNovelNotFound), errors.Is(err, user.ErrUserNotFound):
			metrics.RecordPurchase("not_found", 0)
		default:
			metrics.RecordPurchase("error", 0)
		}
		return nil, err
	}
	return res, nil
}

func (s *service) purchase(ctx context.Context, userID, chapterID string) (*PurchaseResult, error) {
	ch, err := s.catalog.GetChapterByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	n, err := s.catalog.GetNovelByID(ctx, ch.NovelID)
	if err != nil {
		return nil, err
	}

	// never the cached copy: an admin may have just switched payments on
	current, err := s.settings.Fresh(ctx)
	if err != nil {
		return nil, err
	}

	d, err := entitlement.Evaluate(ch.Pricing(), n.Pricing(), u, current.Entitlement())
	if err != nil {
		return nil, err
	}

	if !d.Locked {
		metrics.RecordPurchase("unlocked", 0)
		return &PurchaseResult{
			Success:           true,
			Coins:             u.Coins,
			PurchasedChapters: u.PurchasedChapters,
		}, nil
	}

	if u.Coins < d.EffectivePrice {
		return nil, ErrInsufficientFunds
	}

	receipt, err := s.repo.Purchase(ctx, Debit{
		UserID:      userID,
		ChapterID:   chapterID,
		Price:       d.EffectivePrice,
		Description: fmt.Sprintf("Unlocked chapter %d: %s", ch.Number, ch.Title),
	})
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{
		Success:           true,
		Coins:             receipt.Coins,
		PurchasedChapters: receipt.PurchasedChapters,
		Transaction:       receipt.Transaction,
	}

	if receipt.AlreadyOwned {
		metrics.RecordPurchase("owned", 0)
		return result, nil
	}

	result.AmountCharged = d.EffectivePrice
	metrics.RecordPurchase("charged", d.EffectivePrice)
	logger.Info("chapter purchased",
		"user_id", userID,
		"chapter_id", chapterID,
		"amount", d.EffectivePrice,
		"balance", receipt.Coins,
	)

	if s.notifier != nil && result.AmountCharged > 0 {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendPurchaseReceipt(nctx, u.Email, u.Name, ch.Title, result.AmountCharged, receipt.Coins); err != nil {
			logger.WithError(err).WithField("user_id", userID).Warn("purchase receipt not queued")
		}
	}

	return result, nil
}

func (s *service) AddCoins(ctx context.Context, userID string, amount int64) (*AddCoinsResult, error) {
	if amount <= 0 || amount > MaxTopUp {
		return nil, ErrInvalidAmount
	}

	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.repo.Deposit(ctx, userID, amount, "Coin top-up")
	if err != nil {
		return nil, err
	}

	metrics.RecordDeposit(amount)
	logger.Info("coins added", "user_id", userID, "amount", amount, "balance", ledger.BalanceAfter)

	if s.notifier != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendDepositReceipt(nctx, u.Email, u.Name, amount, ledger.BalanceAfter); err != nil {
			logger.WithError(err).WithField("user_id", userID).Warn("deposit receipt not queued")
		}
	}

	return &AddCoinsResult{Coins: ledger.BalanceAfter, Transaction: ledger}, nil
}

func (s *service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
