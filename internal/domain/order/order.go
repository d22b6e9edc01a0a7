// Package order turns checkout submissions into durable order rows with
// unique pickup tokens, and tracks their status afterward.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order operations.
var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError indicates a missing or malformed required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// PaymentStatus tracks the customer-facing payment lifecycle. The observed
// flow sets PENDING at creation and moves to COD or SUCCESS once, driven by
// the checkout payment-method choice. The set is deliberately open: callers
// may supply other values and the store records them as-is.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCOD       PaymentStatus = "COD"
	PaymentSuccess   PaymentStatus = "SUCCESS"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Status is the admin-facing fulfillment lifecycle, independent of
// PaymentStatus. The two state machines are intentionally not reconciled;
// only administrator actions move this one.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known fulfillment status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Order is a finalized purchase intent. TokenNumber is assigned exactly once
// at creation and never changes.
type Order struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	Status        Status
	TokenNumber   string
	OrderDate     time.Time
	Lines         []Line
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Line is a snapshot of one purchased item, decoupled from later catalog
// price changes.
type Line struct {
	ID       string
	OrderID  string
	ItemID   string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Ticket is the order projection handed to the customer for pickup and
// tracking: the id, the issued token, the payment status, and the order
// date (date-only granularity).
type Ticket struct {
	ID            string
	TokenNumber   string
	PaymentStatus PaymentStatus
	OrderDate     time.Time
}

// Repository defines persistence operations for orders. Create is expected
// to issue the token number atomically with the insert: the token must be
// non-empty, unique across all orders, and stable once assigned.
type Repository interface {
	Create(ctx context.Context, o *Order) (*Ticket, error)
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) (*Ticket, error)
	UpdateFulfillment(ctx context.Context, id string, status Status) (*Ticket, error)
	GetTicket(ctx context.Context, id string) (*Ticket, error)
}
