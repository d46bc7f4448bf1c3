package novel

import (
	"context"
	"errors"
	"fmt"

	"novelhub/internal/entitlement"
	"novelhub/internal/metrics"
)

var (
	ErrNovelNotFound      = errors.New("novel not found")
	ErrChapterNotFound    = errors.New("chapter not found")
	ErrChapterNumberTaken = errors.New("chapter number already used in this novel")
)

// RequesterLookup resolves an authenticated user id for entitlement checks.
// A user that no longer exists resolves to a nil Requester.
type RequesterLookup interface {
	LookupRequester(ctx context.Context, userID string) (entitlement.Requester, error)
}

type SettingsReader interface {
	EntitlementSettings(ctx context.Context) (entitlement.Settings, error)
}

type Service interface {
	CreateNovel(ctx context.Context, req CreateNovelRequest) (*Novel, error)
	UpdateNovel(ctx context.Context, id string, req UpdateNovelRequest) (*Novel, error)
	GetNovel(ctx context.Context, id string) (*Novel, error)
	ListNovels(ctx context.Context, limit, offset int) ([]Novel, error)

	CreateChapter(ctx context.Context, novelID string, req CreateChapterRequest) (*Chapter, error)
	UpdateChapter(ctx context.Context, id string, req UpdateChapterRequest) (*Chapter, error)

	ReadChapter(ctx context.Context, chapterID, userID string) (*ChapterView, error)
	TableOfContents(ctx context.Context, novelID, userID string) ([]TOCEntry, error)
}

type service struct {
	repo     Repository
	readers  RequesterLookup
	settings SettingsReader
}

func NewService(repo Repository, readers RequesterLookup, settings SettingsReader) Service {
	return &service{
		repo:     repo,
		readers:  readers,
		settings: settings,
	}
}

func (s *service) CreateNovel(ctx context.Context, req CreateNovelRequest) (*Novel, error) {
	n := &Novel{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		IsFree:      req.IsFree,
		OfferPrice:  req.OfferPrice,
	}
	if err := s.repo.CreateNovel(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) UpdateNovel(ctx context.Context, id string, req UpdateNovelRequest) (*Novel, error) {
	n := &Novel{
		ID:          id,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		IsFree:      req.IsFree,
		OfferPrice:  req.OfferPrice,
	}
	if err := s.repo.UpdateNovel(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) GetNovel(ctx context.Context, id string) (*Novel, error) {
	return s.repo.GetNovelByID(ctx, id)
}

func (s *service) ListNovels(ctx context.Context, limit, offset int) ([]Novel, error) {
	return s.repo.ListNovels(ctx, limit, offset)
}

func (s *service) CreateChapter(ctx context.Context, novelID string, req CreateChapterRequest) (*Chapter, error) {
	if _, err := s.repo.GetNovelByID(ctx, novelID); err != nil {
		return nil, err
	}

	ch := &Chapter{
		NovelID: novelID,
		Number:  req.Number,
		Title:   req.Title,
		Content: req.Content,
		IsPaid:  req.IsPaid,
		Price:   req.Price,
	}
	if err := s.repo.CreateChapter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *service) UpdateChapter(ctx context.Context, id string, req UpdateChapterRequest) (*Chapter, error) {
	ch := &Chapter{
		ID:      id,
		Number:  req.Number,
		Title:   req.Title,
		Content: req.Content,
		IsPaid:  req.IsPaid,
		Price:   req.Price,
	}
	if err := s.repo.UpdateChapter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *service) ReadChapter(ctx context.Context, chapterID, userID string) (*ChapterView, error) {
	ch, err := s.repo.GetChapterByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.GetNovelByID(ctx, ch.NovelID)
	if err != nil {
		return nil, err
	}

	who, settings, err := s.readerContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	d, err := entitlement.Evaluate(ch.Pricing(), n.Pricing(), who, settings)
	if err != nil {
		return nil, err
	}
	metrics.RecordEntitlement(d.State())

	view := &ChapterView{Chapter: *ch, Decision: d}
	if d.Locked {
		view.Content = ""
	}
	return view, nil
}

func (s *service) TableOfContents(ctx context.Context, novelID, userID string) ([]TOCEntry, error) {
	n, err := s.repo.GetNovelByID(ctx, novelID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.repo.ListChapters(ctx, novelID)
	if err != nil {
		return nil, err
	}

	who, settings, err := s.readerContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]TOCEntry, 0, len(chapters))
	for _, ch := range chapters {
		d, err := entitlement.Evaluate(ch.Pricing(), n.Pricing(), who, settings)
		if err != nil {
			return nil, fmt.Errorf("chapter %s: %w", ch.ID, err)
		}
		ch.Content = ""
		entries = append(entries, TOCEntry{Chapter: ch, Decision: d})
	}
	return entries, nil
}

// readerContext loads the requester and the display settings shared by every decision of a request.
func (s *service) readerContext(ctx context.Context, userID string) (entitlement.Requester, entitlement.Settings, error) {
	settings, err := s.settings.EntitlementSettings(ctx)
	if err != nil {
		return nil, entitlement.Settings{}, err
	}
	if userID == "" {
		return nil, settings, nil
	}
	who, err := s.readers.LookupRequester(ctx, userID)
	if err != nil {
		return nil, entitlement.Settings{}, err
	}
	return who, settings, nil
}
