package memstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"novelhub/internal/novel"
	"novelhub/internal/settings"
	"novelhub/internal/user"
	"novelhub/internal/wallet"
)

type persistentState struct {
	Users        map[string]userRecord    `json:"users"`
	Owned        map[string][]string      `json:"owned"`
	Novels       map[string]novel.Novel   `json:"novels"`
	Chapters     map[string]novel.Chapter `json:"chapters"`
	Transactions []wallet.Transaction     `json:"transactions"`
	Settings     *settings.SiteSettings   `json:"settings,omitempty"`
}

func (s *Store) loadLocked() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read store file: %w", err)
	}

	var state persistentState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode store file: %w", err)
	}

	if state.Users != nil {
		s.users = state.Users
		for id, u := range s.users {
			s.usersByEmail[user.NormalizeEmail(u.Email)] = id
		}
	}
	if state.Owned != nil {
		s.owned = state.Owned
	}
	if state.Novels != nil {
		s.novels = state.Novels
	}
	if state.Chapters != nil {
		s.chapters = state.Chapters
	}
	s.transactions = state.Transactions
	s.settings = state.Settings

	return nil
}

// persistLocked replaces the file through a temp file and rename.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}

	state := persistentState{
		Users:        s.users,
		Owned:        s.owned,
		Novels:       s.novels,
		Chapters:     s.chapters,
		Transactions: s.transactions,
		Settings:     s.settings,
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return os.Rename(tmp, s.path)
}
