package novel

import (
	"time"

	"novelhub/internal/entitlement"
)

type Novel struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Author      string    `db:"author" json:"author"`
	Description string    `db:"description" json:"description"`
	IsFree      bool      `db:"is_free" json:"is_free"`
	OfferPrice  *int64    `db:"offer_price" json:"offer_price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

func (n *Novel) Pricing() *entitlement.Novel {
	return &entitlement.Novel{ID: n.ID, IsFree: n.IsFree, OfferPrice: n.OfferPrice}
}

type Chapter struct {
	ID        string    `db:"id" json:"id"`
	NovelID   string    `db:"novel_id" json:"novel_id"`
	Number    int       `db:"number" json:"number"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content,omitempty"`
	IsPaid    bool      `db:"is_paid" json:"is_paid"`
	Price     int64     `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (c *Chapter) Pricing() *entitlement.Chapter {
	return &entitlement.Chapter{ID: c.ID, NovelID: c.NovelID, IsPaid: c.IsPaid, Price: c.Price}
}

// ChapterView is a chapter as served to a reader: content is blanked while locked.
type ChapterView struct {
	Chapter
	entitlement.Decision
}

// TOCEntry is one table-of-contents row; Content is never loaded for it.
type TOCEntry struct {
	Chapter
	entitlement.Decision
}

type CreateNovelRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"max=255"`
	Description string `json:"description"`
	IsFree      bool   `json:"is_free"`
	OfferPrice  *int64 `json:"offer_price" validate:"omitempty,gt=0"`
}

// UpdateNovelRequest replaces every editable field; a null offer_price removes the offer.
type UpdateNovelRequest = CreateNovelRequest

type CreateChapterRequest struct {
	Number  int    `json:"number" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content"`
	IsPaid  bool   `json:"is_paid"`
	Price   int64  `json:"price" validate:"gte=0"`
}

type UpdateChapterRequest = CreateChapterRequest
