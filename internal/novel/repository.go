package novel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	novelColumns   = `id, title, author, description, is_free, offer_price, created_at, updated_at`
	chapterColumns = `id, novel_id, number, title, content, is_paid, price, created_at, updated_at`
	// table of contents rows skip the chapter body
	tocColumns = `id, novel_id, number, title, is_paid, price, created_at, updated_at`
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateNovel(ctx context.Context, n *Novel) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO novels (id, title, author, description, is_free, offer_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		n.ID, n.Title, n.Author, n.Description, n.IsFree, n.OfferPrice,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert novel: %w", err)
	}
	return nil
}

func (r *repository) UpdateNovel(ctx context.Context, n *Novel) error {
	err := r.db.QueryRowxContext(ctx, `
		UPDATE novels
		SET title = $2, author = $3, description = $4, is_free = $5, offer_price = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		n.ID, n.Title, n.Author, n.Description, n.IsFree, n.OfferPrice,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNovelNotFound
	}
	if err != nil {
		return fmt.Errorf("update novel: %w", err)
	}
	return nil
}

func (r *repository) GetNovelByID(ctx context.Context, id string) (*Novel, error) {
	var n Novel
	err := r.db.GetContext(ctx, &n, `SELECT `+novelColumns+` FROM novels WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNovelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get novel: %w", err)
	}
	return &n, nil
}

func (r *repository) ListNovels(ctx context.Context, limit, offset int) ([]Novel, error) {
	novels := []Novel{}
	err := r.db.SelectContext(ctx, &novels, `
		SELECT `+novelColumns+`
		FROM novels
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	return novels, nil
}

func (r *repository) CreateChapter(ctx context.Context, ch *Chapter) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO chapters (id, novel_id, number, title, content, is_paid, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		ch.ID, ch.NovelID, ch.Number, ch.Title, ch.Content, ch.IsPaid, ch.Price,
	).Scan(&ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return chapterWriteError("insert chapter", err)
	}
	return nil
}

func (r *repository) UpdateChapter(ctx context.Context, ch *Chapter) error {
	err := r.db.QueryRowxContext(ctx, `
		UPDATE chapters
		SET number = $2, title = $3, content = $4, is_paid = $5, price = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING novel_id, created_at, updated_at`,
		ch.ID, ch.Number, ch.Title, ch.Content, ch.IsPaid, ch.Price,
	).Scan(&ch.NovelID, &ch.CreatedAt, &ch.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrChapterNotFound
	}
	if err != nil {
		return chapterWriteError("update chapter", err)
	}
	return nil
}

func (r *repository) GetChapterByID(ctx context.Context, id string) (*Chapter, error) {
	var ch Chapter
	err := r.db.GetContext(ctx, &ch, `SELECT `+chapterColumns+` FROM chapters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChapterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter: %w", err)
	}
	return &ch, nil
}

func (r *repository) ListChapters(ctx context.Context, novelID string) ([]Chapter, error) {
	chapters := []Chapter{}
	err := r.db.SelectContext(ctx, &chapters, `
		SELECT `+tocColumns+`
		FROM chapters
		WHERE novel_id = $1
		ORDER BY number ASC`,
		novelID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return chapters, nil
}

func chapterWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrChapterNumberTaken
		case "23503":
			return ErrNovelNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
