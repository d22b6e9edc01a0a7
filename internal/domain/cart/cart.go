// Package cart implements per-owner shopping cart reconciliation: a local
// session view of cart lines mirrored to the persisted store, with the store
// as source of truth once an owner identity is known.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emberhall/commerce/internal/domain/catalog"
)

// Sentinel errors for cart operations.
var (
	ErrNotFound        = errors.New("cart line not found")
	ErrEmptyItemID     = errors.New("item id required")
	ErrInvalidType     = errors.New("invalid item type")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrNegativePrice   = errors.New("price must not be negative")
)

// Line is one distinct product an owner intends to purchase. At most one
// line exists per (OwnerID, ItemID, ItemType); adding the same product again
// merges into the existing line's quantity.
type Line struct {
	ID                 string
	OwnerID            string
	ItemID             string
	ItemType           catalog.ItemType
	Name               string
	Quantity           int
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	Image              string
	Category           string
	CreatedAt          time.Time
}

// DiscountedUnitPrice returns the unit price after the percentage discount.
func (l Line) DiscountedUnitPrice() decimal.Decimal {
	if l.DiscountPercentage.IsZero() {
		return l.UnitPrice
	}
	factor := decimal.NewFromInt(1).Sub(l.DiscountPercentage.Div(decimal.NewFromInt(100)))
	return l.UnitPrice.Mul(factor)
}

// Summary holds the derived totals for a cart, recomputed after every
// mutation.
type Summary struct {
	TotalItems int
	Subtotal   decimal.Decimal
}

// Summarize computes the totals over a set of lines: TotalItems is the sum
// of quantities, Subtotal the sum of discounted unit price times quantity,
// rounded to 2 decimal places.
func Summarize(lines []Line) Summary {
	total := 0
	subtotal := decimal.Zero
	for _, l := range lines {
		total += l.Quantity
		qty := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(l.DiscountedUnitPrice().Mul(qty))
	}
	return Summary{TotalItems: total, Subtotal: subtotal.Round(2)}
}

// SyncOutcome reports whether a mutation reached the persisted store or was
// applied to local session state only.
type SyncOutcome string

const (
	// SyncPersisted means the store accepted the mutation.
	SyncPersisted SyncOutcome = "persisted"
	// SyncLocalOnly means the mutation lives only in the session: either the
	// owner is a guest, or the store call failed and the cart degraded to
	// local state. The cart trades strict consistency for availability.
	SyncLocalOnly SyncOutcome = "local-only"
)

// Repository defines persistence operations for cart lines.
type Repository interface {
	// ListByOwner returns all lines for an owner, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]Line, error)

	// Upsert inserts the line or, when a line for the same
	// (owner, item, item type) already exists, atomically increments its
	// quantity by line.Quantity. It returns the resulting row and whether a
	// new row was created.
	Upsert(ctx context.Context, line Line) (*Line, bool, error)

	// SetQuantity sets a line's quantity to an absolute value.
	// Returns ErrNotFound when no such line exists.
	SetQuantity(ctx context.Context, lineID string, quantity int) (*Line, error)

	// Delete removes a line. Deleting an absent line is a no-op.
	Delete(ctx context.Context, lineID string) error

	// DeleteByOwner removes every line belonging to an owner.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
