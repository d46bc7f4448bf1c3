package novel

import (
	"context"
	"errors"
	"testing"

	"novelhub/internal/entitlement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateNovel(ctx context.Context, n *Novel) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) UpdateNovel(ctx context.Context, n *Novel) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) GetNovelByID(ctx context.Context, id string) (*Novel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Novel), args.Error(1)
}

func (m *MockRepository) ListNovels(ctx context.Context, limit, offset int) ([]Novel, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Novel), args.Error(1)
}

func (m *MockRepository) CreateChapter(ctx context.Context, ch *Chapter) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockRepository) UpdateChapter(ctx context.Context, ch *Chapter) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockRepository) GetChapterByID(ctx context.Context, id string) (*Chapter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Chapter), args.Error(1)
}

func (m *MockRepository) ListChapters(ctx context.Context, novelID string) ([]Chapter, error) {
	args := m.Called(ctx, novelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Chapter), args.Error(1)
}

type member struct {
	admin bool
	owned []string
}

func (m member) IsAdmin() bool { return m.admin }

func (m member) HasPurchased(id string) bool {
	for _, o := range m.owned {
		if o == id {
			return true
		}
	}
	return false
}

type readers map[string]entitlement.Requester

func (r readers) LookupRequester(_ context.Context, userID string) (entitlement.Requester, error) {
	return r[userID], nil
}

type staticSettings struct {
	payments bool
	err      error
}

func (s staticSettings) EntitlementSettings(context.Context) (entitlement.Settings, error) {
	return entitlement.Settings{EnablePayments: s.payments}, s.err
}

func fixtures() (*Novel, *Chapter, *Chapter) {
	n := &Novel{ID: "n1", Title: "Ashes"}
	free := &Chapter{ID: "c1", NovelID: "n1", Number: 1, Title: "One", Content: "free text"}
	paid := &Chapter{ID: "c2", NovelID: "n1", Number: 2, Title: "Two", Content: "paid text", IsPaid: true, Price: 10}
	return n, free, paid
}

func TestService_ReadChapter(t *testing.T) {
	people := readers{
		"reader": member{},
		"owner":  member{owned: []string{"c2"}},
		"admin":  member{admin: true},
	}

	tests := []struct {
		name        string
		chapterID   string
		userID      string
		payments    bool
		wantLocked  bool
		wantReason  entitlement.Reason
		wantContent string
	}{
		{"free chapter anonymous", "c1", "", true, false, entitlement.ReasonNone, "free text"},
		{"paid chapter anonymous", "c2", "", true, true, entitlement.ReasonLoginRequired, ""},
		{"paid chapter anonymous payments off", "c2", "", false, true, entitlement.ReasonLoginRequired, ""},
		{"paid chapter reader", "c2", "reader", true, true, entitlement.ReasonPurchaseRequired, ""},
		{"paid chapter reader payments off", "c2", "reader", false, false, entitlement.ReasonNone, "paid text"},
		{"paid chapter owner", "c2", "owner", true, false, entitlement.ReasonNone, "paid text"},
		{"paid chapter admin", "c2", "admin", true, false, entitlement.ReasonNone, "paid text"},
		{"deleted user reads as anonymous", "c2", "ghost", true, true, entitlement.ReasonLoginRequired, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, free, paid := fixtures()
			repo := new(MockRepository)
			repo.On("GetChapterByID", mock.Anything, "c1").Return(free, nil).Maybe()
			repo.On("GetChapterByID", mock.Anything, "c2").Return(paid, nil).Maybe()
			repo.On("GetNovelByID", mock.Anything, "n1").Return(n, nil)

			svc := NewService(repo, people, staticSettings{payments: tt.payments})
			view, err := svc.ReadChapter(context.Background(), tt.chapterID, tt.userID)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLocked, view.Locked)
			assert.Equal(t, tt.wantReason, view.Reason)
			assert.Equal(t, tt.wantContent, view.Content)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_ReadChapter_QuotesOfferPrice(t *testing.T) {
	_, _, paid := fixtures()
	offer := int64(4)
	repo := new(MockRepository)
	repo.On("GetChapterByID", mock.Anything, "c2").Return(paid, nil)
	repo.On("GetNovelByID", mock.Anything, "n1").Return(&Novel{ID: "n1", OfferPrice: &offer}, nil)

	svc := NewService(repo, readers{"reader": member{}}, staticSettings{payments: true})
	view, err := svc.ReadChapter(context.Background(), "c2", "reader")

	require.NoError(t, err)
	assert.True(t, view.Locked)
	assert.Equal(t, int64(4), view.EffectivePrice)
	assert.Equal(t, int64(10), view.Price)
}

func TestService_ReadChapter_Errors(t *testing.T) {
	t.Run("chapter not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetChapterByID", mock.Anything, "c9").Return(nil, ErrChapterNotFound)

		svc := NewService(repo, readers{}, staticSettings{payments: true})
		_, err := svc.ReadChapter(context.Background(), "c9", "")
		assert.ErrorIs(t, err, ErrChapterNotFound)
	})

	t.Run("settings unavailable", func(t *testing.T) {
		n, _, paid := fixtures()
		repo := new(MockRepository)
		repo.On("GetChapterByID", mock.Anything, "c2").Return(paid, nil)
		repo.On("GetNovelByID", mock.Anything, "n1").Return(n, nil)

		boom := errors.New("db down")
		svc := NewService(repo, readers{}, staticSettings{err: boom})
		_, err := svc.ReadChapter(context.Background(), "c2", "")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("negative price is invalid input", func(t *testing.T) {
		n, _, _ := fixtures()
		repo := new(MockRepository)
		repo.On("GetChapterByID", mock.Anything, "c3").Return(&Chapter{ID: "c3", NovelID: "n1", IsPaid: true, Price: -1}, nil)
		repo.On("GetNovelByID", mock.Anything, "n1").Return(n, nil)

		svc := NewService(repo, readers{}, staticSettings{payments: true})
		_, err := svc.ReadChapter(context.Background(), "c3", "")
		assert.ErrorIs(t, err, entitlement.ErrInvalidInput)
	})
}

func TestService_TableOfContents(t *testing.T) {
	n, free, paid := fixtures()
	repo := new(MockRepository)
	repo.On("GetNovelByID", mock.Anything, "n1").Return(n, nil)
	repo.On("ListChapters", mock.Anything, "n1").Return([]Chapter{*free, *paid}, nil)

	svc := NewService(repo, readers{"owner": member{owned: []string{"c2"}}, "reader": member{}}, staticSettings{payments: true})

	toc, err := svc.TableOfContents(context.Background(), "n1", "reader")
	require.NoError(t, err)
	require.Len(t, toc, 2)
	assert.False(t, toc[0].Locked)
	assert.True(t, toc[1].Locked)
	assert.Equal(t, entitlement.ReasonPurchaseRequired, toc[1].Reason)
	assert.Equal(t, int64(10), toc[1].EffectivePrice)
	assert.Empty(t, toc[0].Content)

	toc, err = svc.TableOfContents(context.Background(), "n1", "owner")
	require.NoError(t, err)
	assert.False(t, toc[1].Locked)
}

func TestService_TableOfContents_NovelNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetNovelByID", mock.Anything, "n9").Return(nil, ErrNovelNotFound)

	svc := NewService(repo, readers{}, staticSettings{payments: true})
	_, err := svc.TableOfContents(context.Background(), "n9", "")
	assert.ErrorIs(t, err, ErrNovelNotFound)
	repo.AssertNotCalled(t, "ListChapters", mock.Anything, mock.Anything)
}

func TestService_CreateChapter(t *testing.T) {
	t.Run("unknown novel", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetNovelByID", mock.Anything, "n9").Return(nil, ErrNovelNotFound)

		svc := NewService(repo, readers{}, staticSettings{})
		_, err := svc.CreateChapter(context.Background(), "n9", CreateChapterRequest{Number: 1, Title: "x"})
		assert.ErrorIs(t, err, ErrNovelNotFound)
	})

	t.Run("created", func(t *testing.T) {
		n, _, _ := fixtures()
		repo := new(MockRepository)
		repo.On("GetNovelByID", mock.Anything, "n1").Return(n, nil)
		repo.On("CreateChapter", mock.Anything, mock.MatchedBy(func(ch *Chapter) bool {
			return ch.NovelID == "n1" && ch.Number == 3 && ch.IsPaid && ch.Price == 15
		})).Return(nil)

		svc := NewService(repo, readers{}, staticSettings{})
		ch, err := svc.CreateChapter(context.Background(), "n1", CreateChapterRequest{Number: 3, Title: "Three", IsPaid: true, Price: 15})
		require.NoError(t, err)
		assert.Equal(t, "Three", ch.Title)
		repo.AssertExpectations(t)
	})
}

func TestService_UpdateNovel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UpdateNovel", mock.Anything, mock.MatchedBy(func(n *Novel) bool {
		return n.ID == "n1" && n.IsFree && n.OfferPrice == nil
	})).Return(nil)

	svc := NewService(repo, readers{}, staticSettings{})
	n, err := svc.UpdateNovel(context.Background(), "n1", UpdateNovelRequest{Title: "Ashes", IsFree: true})
	require.NoError(t, err)
	assert.True(t, n.IsFree)
	repo.AssertExpectations(t)
}
