package novel

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	novelCols   = []string{"id", "title", "author", "description", "is_free", "offer_price", "created_at", "updated_at"}
	chapterCols = []string{"id", "novel_id", "number", "title", "content", "is_paid", "price", "created_at", "updated_at"}
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepository_CreateNovel(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	offer := int64(5)

	mock.ExpectQuery(`INSERT INTO novels`).
		WithArgs(sqlmock.AnyArg(), "Ashes", "Mira", "", false, &offer).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	n := &Novel{Title: "Ashes", Author: "Mira", OfferPrice: &offer}
	err := repo.CreateNovel(context.Background(), n)

	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, now, n.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetNovelByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + novelColumns + ` FROM novels WHERE id = $1`)).
			WithArgs("n1").
			WillReturnRows(sqlmock.NewRows(novelCols).AddRow("n1", "Ashes", "Mira", "desc", false, nil, now, now))

		n, err := repo.GetNovelByID(context.Background(), "n1")
		require.NoError(t, err)
		assert.Equal(t, "Ashes", n.Title)
		assert.Nil(t, n.OfferPrice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .* FROM novels WHERE id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetNovelByID(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNovelNotFound)
	})
}

func TestRepository_UpdateNovel_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE novels`).
		WithArgs("n1", "T", "", "", true, nil).
		WillReturnError(sql.ErrNoRows)

	err := repo.UpdateNovel(context.Background(), &Novel{ID: "n1", Title: "T", IsFree: true})
	assert.ErrorIs(t, err, ErrNovelNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListNovels(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM novels\s+ORDER BY created_at DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(novelCols).
			AddRow("n2", "B", "", "", true, nil, now, now).
			AddRow("n1", "A", "", "", false, int64(7), now, now))

	novels, err := repo.ListNovels(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, novels, 2)
	assert.Equal(t, int64(7), *novels[1].OfferPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateChapter(t *testing.T) {
	tests := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{"ok", nil, nil},
		{"duplicate number", &pq.Error{Code: "23505"}, ErrChapterNumberTaken},
		{"unknown novel", &pq.Error{Code: "23503"}, ErrNovelNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			now := time.Now()

			exp := mock.ExpectQuery(`INSERT INTO chapters`).
				WithArgs(sqlmock.AnyArg(), "n1", 1, "Prologue", "text", true, int64(10))
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
			}

			ch := &Chapter{NovelID: "n1", Number: 1, Title: "Prologue", Content: "text", IsPaid: true, Price: 10}
			err := repo.CreateChapter(context.Background(), ch)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, ch.ID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_UpdateChapter(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE chapters`).
		WithArgs("c1", 2, "Two", "body", false, int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"novel_id", "created_at", "updated_at"}).AddRow("n1", now, now))

	ch := &Chapter{ID: "c1", Number: 2, Title: "Two", Content: "body"}
	require.NoError(t, repo.UpdateChapter(context.Background(), ch))
	assert.Equal(t, "n1", ch.NovelID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetChapterByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + chapterColumns + ` FROM chapters WHERE id = $1`)).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(chapterCols).AddRow("c1", "n1", 1, "One", "body", true, int64(10), now, now))
	mock.ExpectQuery(`FROM chapters WHERE id = \$1`).
		WithArgs("c2").
		WillReturnError(sql.ErrNoRows)

	ch, err := repo.GetChapterByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), ch.Price)
	assert.True(t, ch.IsPaid)

	_, err = repo.GetChapterByID(context.Background(), "c2")
	assert.ErrorIs(t, err, ErrChapterNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListChapters(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT ` + regexp.QuoteMeta(tocColumns) + `\s+FROM chapters\s+WHERE novel_id = \$1\s+ORDER BY number ASC`).
		WithArgs("n1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "novel_id", "number", "title", "is_paid", "price", "created_at", "updated_at"}).
			AddRow("c1", "n1", 1, "One", false, int64(0), now, now).
			AddRow("c2", "n1", 2, "Two", true, int64(10), now, now))

	chapters, err := repo.ListChapters(context.Background(), "n1")
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, 2, chapters[1].Number)
	assert.Empty(t, chapters[1].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}
