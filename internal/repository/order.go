package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhall/commerce/internal/domain/order"
)

const (
	// Atomic per-year sequence increment backing token numbers. The counter
	// row is created on first use; concurrent creators serialize on the row
	// lock, so two orders can never draw the same sequence value.
	nextTokenSeqSQL = `INSERT INTO order_counters (year, current_value) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET current_value = order_counters.current_value + 1
		RETURNING current_value`

	insertOrderSQL = `INSERT INTO orders
		(customer_name, customer_phone, customer_email, total_amount, payment_status, status, token_number, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, token_number, payment_status, order_date`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, item_id, name, price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	updatePaymentStatusSQL = `UPDATE orders SET payment_status = $2, updated_at = now()
		WHERE id = $1 RETURNING id, token_number, payment_status, order_date`

	updateFulfillmentSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 RETURNING id, token_number, payment_status, order_date`

	getTicketSQL = `SELECT id, token_number, payment_status, order_date
		FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Token
// numbers are issued from the order_counters table inside the same
// transaction as the order insert, so a token is assigned exactly once and
// only to orders that commit.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order and its line snapshots, issuing the token number
// atomically with the insert.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	year := o.OrderDate.Year()
	var seq int64
	if err := tx.QueryRow(ctx, nextTokenSeqSQL, year).Scan(&seq); err != nil {
		return nil, fmt.Errorf("advancing token counter: %w", err)
	}
	token := formatToken(year, seq)

	var ticket order.Ticket
	err = tx.QueryRow(ctx, insertOrderSQL,
		o.CustomerName, o.CustomerPhone, o.CustomerEmail, o.TotalAmount,
		o.PaymentStatus, o.Status, token, o.OrderDate,
	).Scan(&ticket.ID, &ticket.TokenNumber, &ticket.PaymentStatus, &ticket.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	for _, line := range o.Lines {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			ticket.ID, line.ItemID, line.Name, line.Price, line.Quantity,
		); err != nil {
			return nil, fmt.Errorf("inserting order item %q: %w", line.ItemID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing order: %w", err)
	}

	o.ID = ticket.ID
	o.TokenNumber = ticket.TokenNumber
	return &ticket, nil
}

// UpdatePaymentStatus sets the payment status and returns the refreshed
// ticket projection. The token number column is never touched.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) (*order.Ticket, error) {
	return r.ticketRow(ctx, updatePaymentStatusSQL, id, string(status))
}

// UpdateFulfillment sets the admin-facing fulfillment status.
func (r *OrderRepository) UpdateFulfillment(ctx context.Context, id string, status order.Status) (*order.Ticket, error) {
	return r.ticketRow(ctx, updateFulfillmentSQL, id, string(status))
}

// GetTicket fetches the pickup projection by order id.
func (r *OrderRepository) GetTicket(ctx context.Context, id string) (*order.Ticket, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, order.ErrNotFound
	}

	var ticket order.Ticket
	err = r.pool.QueryRow(ctx, getTicketSQL, orderID).Scan(
		&ticket.ID, &ticket.TokenNumber, &ticket.PaymentStatus, &ticket.OrderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order ticket %q: %w", id, err)
	}
	return &ticket, nil
}

func (r *OrderRepository) ticketRow(ctx context.Context, sql, id string, status string) (*order.Ticket, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, order.ErrNotFound
	}

	var ticket order.Ticket
	err = r.pool.QueryRow(ctx, sql, orderID, status).Scan(
		&ticket.ID, &ticket.TokenNumber, &ticket.PaymentStatus, &ticket.OrderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order %q: %w", id, err)
	}
	return &ticket, nil
}

// formatToken renders a short human-readable pickup token, e.g. T26-0042.
// Uniqueness is guaranteed by the per-year counter plus the UNIQUE
// constraint on orders.token_number.
func formatToken(year int, seq int64) string {
	return fmt.Sprintf("T%02d-%04d", year%100, seq)
}
