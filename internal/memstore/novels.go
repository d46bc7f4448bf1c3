package memstore

import (
	"context"
	"sort"

	"novelhub/internal/novel"

	"github.com/google/uuid"
)

type novels struct {
	s *Store
}

func (r novels) CreateNovel(_ context.Context, n *novel.Novel) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := s.now()
	n.CreatedAt, n.UpdatedAt = now, now
	n.OfferPrice = clonePrice(n.OfferPrice)
	s.novels[n.ID] = *n

	if err := s.persistLocked(); err != nil {
		delete(s.novels, n.ID)
		return err
	}
	return nil
}

func (r novels) UpdateNovel(_ context.Context, n *novel.Novel) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.novels[n.ID]
	if !ok {
		return novel.ErrNovelNotFound
	}
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = s.now()
	n.OfferPrice = clonePrice(n.OfferPrice)
	s.novels[n.ID] = *n

	if err := s.persistLocked(); err != nil {
		s.novels[n.ID] = existing
		return err
	}
	return nil
}

func (r novels) GetNovelByID(_ context.Context, id string) (*novel.Novel, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.novels[id]
	if !ok {
		return nil, novel.ErrNovelNotFound
	}
	n.OfferPrice = clonePrice(n.OfferPrice)
	return &n, nil
}

func (r novels) ListNovels(_ context.Context, limit, offset int) ([]novel.Novel, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]novel.Novel, 0, len(s.novels))
	for _, n := range s.novels {
		n.OfferPrice = clonePrice(n.OfferPrice)
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	return page(all, limit, offset), nil
}

func (r novels) CreateChapter(_ context.Context, ch *novel.Chapter) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.novels[ch.NovelID]; !ok {
		return novel.ErrNovelNotFound
	}
	if s.numberTakenLocked(ch.NovelID, ch.Number, "") {
		return novel.ErrChapterNumberTaken
	}

	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	now := s.now()
	ch.CreatedAt, ch.UpdatedAt = now, now
	s.chapters[ch.ID] = *ch

	if err := s.persistLocked(); err != nil {
		delete(s.chapters, ch.ID)
		return err
	}
	return nil
}

func (r novels) UpdateChapter(_ context.Context, ch *novel.Chapter) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.chapters[ch.ID]
	if !ok {
		return novel.ErrChapterNotFound
	}
	if s.numberTakenLocked(existing.NovelID, ch.Number, ch.ID) {
		return novel.ErrChapterNumberTaken
	}

	ch.NovelID = existing.NovelID
	ch.CreatedAt = existing.CreatedAt
	ch.UpdatedAt = s.now()
	s.chapters[ch.ID] = *ch

	if err := s.persistLocked(); err != nil {
		s.chapters[ch.ID] = existing
		return err
	}
	return nil
}

func (r novels) GetChapterByID(_ context.Context, id string) (*novel.Chapter, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.chapters[id]
	if !ok {
		return nil, novel.ErrChapterNotFound
	}
	return &ch, nil
}

func (r novels) ListChapters(_ context.Context, novelID string) ([]novel.Chapter, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []novel.Chapter{}
	for _, ch := range s.chapters {
		if ch.NovelID != novelID {
			continue
		}
		ch.Content = ""
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (s *Store) numberTakenLocked(novelID string, number int, except string) bool {
	for id, ch := range s.chapters {
		if id != except && ch.NovelID == novelID && ch.Number == number {
			return true
		}
	}
	return false
}

func clonePrice(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
