package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emberhall/commerce/internal/domain/cart"
)

// CreateRequest holds the input for creating an order directly from a
// checkout submission.
type CreateRequest struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	TotalAmount   decimal.Decimal
	PaymentStatus PaymentStatus
	Lines         []LineInput
}

// LineInput is an optional purchased-item snapshot supplied with the order.
type LineInput struct {
	ItemID   string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// CustomerInfo identifies the customer on a cart checkout.
type CustomerInfo struct {
	Name  string
	Phone string
	Email string
}

// Service encapsulates order creation, token issuance, and status
// progression.
type Service struct {
	orders Repository
	carts  cart.Repository
	lg     *zap.Logger
}

// NewService creates the order service. The cart repository is used by
// Checkout to read and clear the customer's cart.
func NewService(orders Repository, carts cart.Repository, lg *zap.Logger) *Service {
	return &Service{orders: orders, carts: carts, lg: lg.Named("order")}
}

// Create validates the submission and persists a new order. The order date
// is stamped with date-only granularity and the token number is issued by
// the store atomically with the insert. No row is created when validation
// fails.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Ticket, error) {
	if req.CustomerName == "" {
		return nil, &ValidationError{Field: "customer_name"}
	}
	if req.CustomerPhone == "" {
		return nil, &ValidationError{Field: "customer_phone"}
	}
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Field: "total_amount"}
	}

	status := req.PaymentStatus
	if status == "" {
		status = PaymentPending
	}

	now := time.Now()
	o := &Order{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		TotalAmount:   req.TotalAmount.Round(2),
		PaymentStatus: status,
		Status:        StatusPending,
		OrderDate:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}
	for _, in := range req.Lines {
		o.Lines = append(o.Lines, Line{
			ItemID:   in.ItemID,
			Name:     in.Name,
			Price:    in.Price,
			Quantity: in.Quantity,
		})
	}

	ticket, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.lg.Info("order created",
		zap.String("order_id", ticket.ID),
		zap.String("token_number", ticket.TokenNumber),
		zap.String("payment_status", string(ticket.PaymentStatus)))
	return ticket, nil
}

// Checkout reads the customer's persisted cart, computes the total from the
// captured line snapshots, creates the order with one order line per cart
// line, and clears the cart. The line price snapshot is the discounted unit
// price, i.e. what the customer is actually charged.
func (s *Service) Checkout(ctx context.Context, ownerID string, customer CustomerInfo, status PaymentStatus) (*Ticket, error) {
	if ownerID == "" {
		return nil, &ValidationError{Field: "user_id"}
	}

	lines, err := s.carts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	summary := cart.Summarize(lines)
	req := CreateRequest{
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		TotalAmount:   summary.Subtotal,
		PaymentStatus: status,
	}
	for _, l := range lines {
		req.Lines = append(req.Lines, LineInput{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Price:    l.DiscountedUnitPrice().Round(2),
			Quantity: l.Quantity,
		})
	}

	ticket, err := s.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	// The order is durable at this point; a failed cart clear is logged and
	// left for the next explicit clear rather than failing the checkout.
	if err := s.carts.DeleteByOwner(ctx, ownerID); err != nil {
		s.lg.Warn("post-checkout cart clear failed",
			zap.String("owner_id", ownerID),
			zap.String("order_id", ticket.ID), zap.Error(err))
	}

	return ticket, nil
}

// UpdateStatus progresses the payment status and returns the refreshed
// ticket. The token number is never altered.
func (s *Service) UpdateStatus(ctx context.Context, id string, status PaymentStatus) (*Ticket, error) {
	if status == "" {
		return nil, &ValidationError{Field: "payment_status"}
	}
	ticket, err := s.orders.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update payment status")
	}
	return ticket, nil
}

// UpdateFulfillment moves the admin-facing fulfillment status. Unlike the
// payment status, the value is restricted to the known enum.
func (s *Service) UpdateFulfillment(ctx context.Context, id string, status Status) (*Ticket, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status"}
	}
	ticket, err := s.orders.UpdateFulfillment(ctx, id, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update fulfillment status")
	}
	return ticket, nil
}

// Ticket fetches the pickup projection for an order.
func (s *Service) Ticket(ctx context.Context, id string) (*Ticket, error) {
	ticket, err := s.orders.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order ticket")
	}
	return ticket, nil
}
