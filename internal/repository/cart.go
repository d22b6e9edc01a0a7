package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhall/commerce/internal/domain/cart"
)

const (
	listCartLinesSQL = `SELECT id, user_id, item_id, item_name, quantity, price, discount_percentage,
		image, category, item_type, created_at
		FROM cart_items WHERE user_id = $1 ORDER BY created_at DESC`

	// The unique constraint on (user_id, item_id, item_type) makes this a
	// single atomic merge-on-add: no check-then-act window between looking
	// for an existing line and writing the new quantity.
	upsertCartLineSQL = `INSERT INTO cart_items
		(id, user_id, item_id, item_name, quantity, price, discount_percentage, image, category, item_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT cart_items_owner_item_uniq
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, item_id, item_name, quantity, price, discount_percentage,
			image, category, item_type, created_at, (xmax = 0) AS inserted`

	setCartQuantitySQL = `UPDATE cart_items SET quantity = $2 WHERE id = $1
		RETURNING id, user_id, item_id, item_name, quantity, price, discount_percentage,
			image, category, item_type, created_at`

	deleteCartLineSQL    = `DELETE FROM cart_items WHERE id = $1`
	deleteCartByOwnerSQL = `DELETE FROM cart_items WHERE user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// ListByOwner returns all cart lines for an owner, newest first.
func (r *CartRepository) ListByOwner(ctx context.Context, ownerID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartLinesSQL, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing cart lines for %q: %w", ownerID, err)
	}
	return pgx.CollectRows(rows, scanCartLine)
}

// Upsert inserts the line or atomically increments the quantity of the
// existing line for the same (owner, item, item type). The returned bool is
// true when a new row was inserted.
func (r *CartRepository) Upsert(ctx context.Context, line cart.Line) (*cart.Line, bool, error) {
	var (
		out      cart.Line
		inserted bool
	)
	err := r.pool.QueryRow(ctx, upsertCartLineSQL,
		line.ID, line.OwnerID, line.ItemID, line.Name, line.Quantity,
		line.UnitPrice, line.DiscountPercentage, line.Image, line.Category, line.ItemType,
	).Scan(
		&out.ID, &out.OwnerID, &out.ItemID, &out.Name, &out.Quantity,
		&out.UnitPrice, &out.DiscountPercentage, &out.Image, &out.Category,
		&out.ItemType, &out.CreatedAt, &inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upserting cart line for %q/%q: %w", line.OwnerID, line.ItemID, err)
	}
	return &out, inserted, nil
}

// SetQuantity sets a line's quantity to an absolute value. Unknown and
// malformed line IDs both report cart.ErrNotFound.
func (r *CartRepository) SetQuantity(ctx context.Context, lineID string, quantity int) (*cart.Line, error) {
	id, err := uuid.Parse(lineID)
	if err != nil {
		return nil, cart.ErrNotFound
	}

	var out cart.Line
	err = r.pool.QueryRow(ctx, setCartQuantitySQL, id, quantity).Scan(
		&out.ID, &out.OwnerID, &out.ItemID, &out.Name, &out.Quantity,
		&out.UnitPrice, &out.DiscountPercentage, &out.Image, &out.Category,
		&out.ItemType, &out.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("updating cart line %q: %w", lineID, err)
	}
	return &out, nil
}

// Delete removes a line. Deleting an absent or malformed ID is a no-op.
func (r *CartRepository) Delete(ctx context.Context, lineID string) error {
	id, err := uuid.Parse(lineID)
	if err != nil {
		return nil
	}
	if _, err := r.pool.Exec(ctx, deleteCartLineSQL, id); err != nil {
		return fmt.Errorf("deleting cart line %q: %w", lineID, err)
	}
	return nil
}

// DeleteByOwner removes every cart line belonging to an owner.
func (r *CartRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.pool.Exec(ctx, deleteCartByOwnerSQL, ownerID); err != nil {
		return fmt.Errorf("clearing cart for %q: %w", ownerID, err)
	}
	return nil
}

func scanCartLine(row pgx.CollectableRow) (cart.Line, error) {
	var l cart.Line
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.ItemID, &l.Name, &l.Quantity,
		&l.UnitPrice, &l.DiscountPercentage, &l.Image, &l.Category,
		&l.ItemType, &l.CreatedAt,
	)
	return l, err
}
