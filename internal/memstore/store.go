// Package memstore keeps the whole data set in process memory, optionally
// mirrored to a JSON file after every write. It backs the offline mode and
// implements the same repository interfaces as the Postgres adapters.
package memstore

import (
	"strings"
	"sync"
	"time"

	"novelhub/internal/novel"
	"novelhub/internal/settings"
	"novelhub/internal/user"
	"novelhub/internal/wallet"
)

type Store struct {
	mu   sync.RWMutex
	path string
	now  func() time.Time

	users        map[string]userRecord
	usersByEmail map[string]string
	owned        map[string][]string

	novels   map[string]novel.Novel
	chapters map[string]novel.Chapter

	transactions []wallet.Transaction
	settings     *settings.SiteSettings
}

// userRecord is the stored form of a user. user.User hides the hash from JSON.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Coins        int64     `json:"coins"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func New() *Store {
	s, _ := Open("")
	return s
}

// Open loads path if it exists. An empty path keeps everything in memory.
func Open(path string) (*Store, error) {
	s := &Store{
		path:         strings.TrimSpace(path),
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]userRecord),
		usersByEmail: make(map[string]string),
		owned:        make(map[string][]string),
		novels:       make(map[string]novel.Novel),
		chapters:     make(map[string]novel.Chapter),
	}
	if s.path == "" {
		return s, nil
	}
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Novels() novel.Repository {
	return novels{s}
}

func (s *Store) Users() user.Repository {
	return users{s}
}

func (s *Store) Wallet() wallet.Repository {
	return ledger{s}
}

func (s *Store) Settings() settings.Repository {
	return siteSettings{s}
}

func (r userRecord) toUser(owned []string) *user.User {
	purchased := make([]string, len(owned))
	copy(purchased, owned)
	return &user.User{
		ID:                r.ID,
		Name:              r.Name,
		Email:             r.Email,
		PasswordHash:      r.PasswordHash,
		Role:              r.Role,
		Coins:             r.Coins,
		PurchasedChapters: purchased,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
