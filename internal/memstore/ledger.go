package memstore

import (
	"context"

	"novelhub/internal/user"
	"novelhub/internal/wallet"

	"github.com/google/uuid"
)

type ledger struct {
	s *Store
}

// Purchase holds the write lock for the whole check-and-debit, which
// serializes it against every other mutation.
func (r ledger) Purchase(_ context.Context, d wallet.Debit) (*wallet.Receipt, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[d.UserID]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	if s.ownsLocked(d.UserID, d.ChapterID) {
		return &wallet.Receipt{
			Coins:             rec.Coins,
			PurchasedChapters: s.ownedCopyLocked(d.UserID),
			AlreadyOwned:      true,
		}, nil
	}

	if rec.Coins < d.Price {
		return nil, wallet.ErrInsufficientFunds
	}

	snap := s.snapshotUserLocked(d.UserID)

	now := s.now()
	rec.Coins -= d.Price
	rec.UpdatedAt = now
	s.users[d.UserID] = rec
	s.owned[d.UserID] = append(s.ownedCopyLocked(d.UserID), d.ChapterID)

	var t *wallet.Transaction
	if d.Price > 0 {
		chapterID := d.ChapterID
		t = &wallet.Transaction{
			ID:           uuid.NewString(),
			UserID:       d.UserID,
			Amount:       d.Price,
			Type:         wallet.TypePurchase,
			Description:  d.Description,
			ChapterID:    &chapterID,
			BalanceAfter: rec.Coins,
			CreatedAt:    now,
		}
		s.transactions = append(s.transactions, *t)
	}

	if err := s.persistLocked(); err != nil {
		snap.restore(s)
		return nil, err
	}

	return &wallet.Receipt{
		Coins:             rec.Coins,
		PurchasedChapters: s.ownedCopyLocked(d.UserID),
		Transaction:       t,
	}, nil
}

func (r ledger) Deposit(_ context.Context, userID string, amount int64, description string) (*wallet.Transaction, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	snap := s.snapshotUserLocked(userID)

	now := s.now()
	rec.Coins += amount
	rec.UpdatedAt = now
	s.users[userID] = rec

	t := wallet.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Amount:       amount,
		Type:         wallet.TypeDeposit,
		Description:  description,
		BalanceAfter: rec.Coins,
		CreatedAt:    now,
	}
	s.transactions = append(s.transactions, t)

	if err := s.persistLocked(); err != nil {
		snap.restore(s)
		return nil, err
	}
	return &t, nil
}

func (r ledger) ListTransactions(_ context.Context, userID string, limit, offset int) ([]wallet.Transaction, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	// transactions are appended in time order
	mine := []wallet.Transaction{}
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			mine = append(mine, s.transactions[i])
		}
	}
	return page(mine, limit, offset), nil
}

func (s *Store) ownsLocked(userID, chapterID string) bool {
	for _, id := range s.owned[userID] {
		if id == chapterID {
			return true
		}
	}
	return false
}

func (s *Store) ownedCopyLocked(userID string) []string {
	out := make([]string, len(s.owned[userID]))
	copy(out, s.owned[userID])
	return out
}

// userSnapshot is the wallet state of one user before a write, restored when
// the write cannot be persisted.
type userSnapshot struct {
	userID  string
	record  userRecord
	owned   []string
	hadOwns bool
	txCount int
}

func (s *Store) snapshotUserLocked(userID string) userSnapshot {
	owned, ok := s.owned[userID]
	return userSnapshot{
		userID:  userID,
		record:  s.users[userID],
		owned:   owned,
		hadOwns: ok,
		txCount: len(s.transactions),
	}
}

func (snap userSnapshot) restore(s *Store) {
	s.users[snap.userID] = snap.record
	if snap.hadOwns {
		s.owned[snap.userID] = snap.owned
	} else {
		delete(s.owned, snap.userID)
	}
	s.transactions = s.transactions[:snap.txCount]
}
