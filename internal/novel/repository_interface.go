package novel

import "context"

type Repository interface {
	CreateNovel(ctx context.Context, n *Novel) error
	UpdateNovel(ctx context.Context, n *Novel) error
	GetNovelByID(ctx context.Context, id string) (*Novel, error)
	ListNovels(ctx context.Context, limit, offset int) ([]Novel, error)

	CreateChapter(ctx context.Context, ch *Chapter) error
	UpdateChapter(ctx context.Context, ch *Chapter) error
	GetChapterByID(ctx context.Context, id string) (*Chapter, error)
	ListChapters(ctx context.Context, novelID string) ([]Chapter, error)
}
