package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Get returns the settings row, creating it with defaults on first use.
	Get(ctx context.Context) (*SiteSettings, error)
	Update(ctx context.Context, enablePayments bool) (*SiteSettings, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*SiteSettings, error) {
	s, err := r.find(ctx)
	if !errors.Is(err, sql.ErrNoRows) {
		return s, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO site_settings (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`,
		GlobalKey,
	)
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}

	s, err = r.find(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// find returns sql.ErrNoRows unwrapped so Get can create the row.
func (r *repository) find(ctx context.Context) (*SiteSettings, error) {
	var s SiteSettings
	err := r.db.GetContext(ctx, &s,
		`SELECT key, enable_payments, updated_at FROM site_settings WHERE key = $1`,
		GlobalKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, enablePayments bool) (*SiteSettings, error) {
	var s SiteSettings
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO site_settings (key, enable_payments, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET enable_payments = EXCLUDED.enable_payments, updated_at = NOW()
		RETURNING key, enable_payments, updated_at`,
		GlobalKey, enablePayments,
	).StructScan(&s)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &s, nil
}
