package memstore

import (
	"context"

	"novelhub/internal/user"

	"github.com/google/uuid"
)

type users struct {
	s *Store
}

func (r users) Create(_ context.Context, u *user.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	email := user.NormalizeEmail(u.Email)
	if _, taken := s.usersByEmail[email]; taken {
		return user.ErrEmailExists
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	now := s.now()
	u.Coins = 0
	u.CreatedAt, u.UpdatedAt = now, now
	u.PurchasedChapters = []string{}

	s.users[u.ID] = userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.usersByEmail[email] = u.ID

	if err := s.persistLocked(); err != nil {
		delete(s.users, u.ID)
		delete(s.usersByEmail, email)
		return err
	}
	return nil
}

func (r users) FindByEmail(_ context.Context, email string) (*user.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	rec := s.users[id]
	return rec.toUser(s.owned[id]), nil
}

func (r users) FindByID(_ context.Context, id string) (*user.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return rec.toUser(s.owned[id]), nil
}

func (r users) EmailExists(_ context.Context, email string) (bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.usersByEmail[user.NormalizeEmail(email)]
	return ok, nil
}

func (r users) SetRole(_ context.Context, id, role string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	prev := rec
	rec.Role = role
	rec.UpdatedAt = s.now()
	s.users[id] = rec

	if err := s.persistLocked(); err != nil {
		s.users[id] = prev
		return err
	}
	return nil
}
