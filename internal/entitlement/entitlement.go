// Package entitlement decides whether a requester may read a chapter and
// what unlocking it would cost. It performs no I/O; callers load the chapter,
// its novel, the requester and the site settings and pass them in.
package entitlement

import (
	"errors"
	"fmt"
)

var ErrInvalidInput = errors.New("invalid entitlement input")

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonLoginRequired    Reason = "login_required"
	ReasonPurchaseRequired Reason = "purchase_required"
)

// Chapter carries the pricing flags of a chapter. Price is ignored when IsPaid is false.
type Chapter struct {
	ID      string
	NovelID string
	IsPaid  bool
	Price   int64
}

// Novel carries the novel-level overrides. IsFree wins over OfferPrice.
type Novel struct {
	ID         string
	IsFree     bool
	OfferPrice *int64
}

type Settings struct {
	EnablePayments bool
}

// Requester is an authenticated reader. A nil Requester is anonymous.
type Requester interface {
	IsAdmin() bool
	HasPurchased(chapterID string) bool
}

type Decision struct {
	Locked         bool   `json:"locked"`
	Reason         Reason `json:"lock_reason,omitempty"`
	EffectivePrice int64  `json:"effective_price"`
}

// State is a short label for the decision, used in metrics and logs.
func (d Decision) State() string {
	if !d.Locked {
		return "unlocked"
	}
	return string(d.Reason)
}

// EffectivePrice applies the novel overrides to a chapter's nominal price.
func EffectivePrice(ch *Chapter, n *Novel) (int64, error) {
	if err := validate(ch, n); err != nil {
		return 0, err
	}
	return effectivePrice(ch, n), nil
}

func effectivePrice(ch *Chapter, n *Novel) int64 {
	switch {
	case !ch.IsPaid:
		return 0
	case n.IsFree:
		return 0
	case n.OfferPrice != nil && *n.OfferPrice > 0:
		return *n.OfferPrice
	default:
		return ch.Price
	}
}

// Evaluate returns the access decision. The order of the checks matters:
// free content never needs a login, and admins never need a purchase record.
func Evaluate(ch *Chapter, n *Novel, who Requester, s Settings) (Decision, error) {
	if err := validate(ch, n); err != nil {
		return Decision{}, err
	}

	if !ch.IsPaid {
		return Decision{}, nil
	}

	price := effectivePrice(ch, n)
	if price == 0 {
		return Decision{}, nil
	}

	if who == nil {
		return Decision{Locked: true, Reason: ReasonLoginRequired, EffectivePrice: price}, nil
	}

	if who.IsAdmin() {
		return Decision{EffectivePrice: price}, nil
	}

	if !s.EnablePayments {
		return Decision{EffectivePrice: price}, nil
	}

	if who.HasPurchased(ch.ID) {
		return Decision{EffectivePrice: price}, nil
	}

	return Decision{Locked: true, Reason: ReasonPurchaseRequired, EffectivePrice: price}, nil
}

func validate(ch *Chapter, n *Novel) error {
	switch {
	case ch == nil:
		return fmt.Errorf("%w: chapter is required", ErrInvalidInput)
	case n == nil:
		return fmt.Errorf("%w: novel is required", ErrInvalidInput)
	case ch.ID == "":
		return fmt.Errorf("%w: chapter id is required", ErrInvalidInput)
	case ch.Price < 0:
		return fmt.Errorf("%w: chapter price is negative", ErrInvalidInput)
	case n.OfferPrice != nil && *n.OfferPrice < 0:
		return fmt.Errorf("%w: offer price is negative", ErrInvalidInput)
	case ch.NovelID != "" && n.ID != "" && ch.NovelID != n.ID:
		return fmt.Errorf("%w: chapter %s does not belong to novel %s", ErrInvalidInput, ch.ID, n.ID)
	}
	return nil
}
