package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID also loads the purchased chapter ids.
	FindByID(ctx context.Context, id string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetRole(ctx context.Context, id, role string) error
}
