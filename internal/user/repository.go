package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"novelhub/internal/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, password_hash, role, coins, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING coins, created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.Coins, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	u.PurchasedChapters = []string{}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	owned, err := PurchasedChapters(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	u.PurchasedChapters = owned
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *repository) SetRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// PurchasedChapters lists the chapters a user owns, oldest purchase first.
// q may be the pool or an open transaction.
func PurchasedChapters(ctx context.Context, q sqlx.QueryerContext, userID string) ([]string, error) {
	owned := []string{}
	err := sqlx.SelectContext(ctx, q, &owned, `
		SELECT chapter_id
		FROM purchased_chapters
		WHERE user_id = $1
		ORDER BY created_at, chapter_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchased chapters: %w", err)
	}
	return owned, nil
}
