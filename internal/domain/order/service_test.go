package order

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberhall/commerce/internal/domain/cart"
	"github.com/emberhall/commerce/internal/domain/catalog"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	lastOrder *Order
	seq       int
	createErr error

	tickets   map[string]*Ticket
	updateErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{tickets: make(map[string]*Ticket)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) (*Ticket, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.seq++
	m.lastOrder = o
	t := &Ticket{
		ID:            fmt.Sprintf("order-%d", m.seq),
		TokenNumber:   fmt.Sprintf("T26-%04d", m.seq),
		PaymentStatus: o.PaymentStatus,
		OrderDate:     o.OrderDate,
	}
	m.tickets[t.ID] = t
	return t, nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id string, status PaymentStatus) (*Ticket, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.PaymentStatus = status
	return t, nil
}

func (m *mockOrderRepo) UpdateFulfillment(_ context.Context, id string, _ Status) (*Ticket, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *mockOrderRepo) GetTicket(_ context.Context, id string) (*Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

type mockCartRepo struct {
	lines     []cart.Line
	listErr   error
	deleteErr error
	cleared   []string
}

func (m *mockCartRepo) ListByOwner(_ context.Context, _ string) ([]cart.Line, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.lines, nil
}

func (m *mockCartRepo) Upsert(_ context.Context, _ cart.Line) (*cart.Line, bool, error) {
	return nil, false, errors.New("not used")
}

func (m *mockCartRepo) SetQuantity(_ context.Context, _ string, _ int) (*cart.Line, error) {
	return nil, errors.New("not used")
}

func (m *mockCartRepo) Delete(_ context.Context, _ string) error {
	return errors.New("not used")
}

func (m *mockCartRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.cleared = append(m.cleared, ownerID)
	m.lines = nil
	return nil
}

// --- Helpers ---

func newTestService(orders Repository, carts cart.Repository) *Service {
	return NewService(orders, carts, zap.NewNop())
}

func validRequest() CreateRequest {
	return CreateRequest{
		CustomerName:  "Ada Lovelace",
		CustomerPhone: "+1-555-0100",
		TotalAmount:   decimal.RequireFromString("42.50"),
	}
}

func cartLine(itemID, name, price string, qty int, discount string) cart.Line {
	return cart.Line{
		ID:                 "line-" + itemID,
		OwnerID:            "u1",
		ItemID:             itemID,
		ItemType:           catalog.TypeMenu,
		Name:               name,
		Quantity:           qty,
		UnitPrice:          decimal.RequireFromString(price),
		DiscountPercentage: decimal.RequireFromString(discount),
	}
}

// --- Tests ---

func TestCreate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
		field  string
	}{
		{"missing name", func(r *CreateRequest) { r.CustomerName = "" }, "customer_name"},
		{"missing phone", func(r *CreateRequest) { r.CustomerPhone = "" }, "customer_phone"},
		{"zero total", func(r *CreateRequest) { r.TotalAmount = decimal.Zero }, "total_amount"},
		{"negative total", func(r *CreateRequest) { r.TotalAmount = decimal.NewFromInt(-5) }, "total_amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockOrderRepo()
			svc := newTestService(repo, &mockCartRepo{})

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Nil(t, repo.lastOrder, "rejected submission must not create a row")
		})
	}
}

func TestCreate_DefaultsPaymentStatusToPending(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockCartRepo{})

	ticket, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, ticket.PaymentStatus)
}

func TestCreate_KeepsSuppliedPaymentStatus(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockCartRepo{})

	req := validRequest()
	req.PaymentStatus = PaymentCOD
	ticket, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, PaymentCOD, ticket.PaymentStatus)
}

func TestCreate_AcceptsUnknownPaymentStatus(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockCartRepo{})

	req := validRequest()
	req.PaymentStatus = "STRIPE_HOLD"
	ticket, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatus("STRIPE_HOLD"), ticket.PaymentStatus)
}

func TestCreate_DateOnlyStamp(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockCartRepo{})

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	d := repo.lastOrder.OrderDate
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, 0, d.Minute())
	assert.Equal(t, 0, d.Second())
	assert.Equal(t, time.Now().Day(), d.Day())
}

func TestCreate_TokensUniquePerOrder(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockCartRepo{})

	t1, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	t2, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, t1.TokenNumber)
	assert.NotEqual(t, t1.TokenNumber, t2.TokenNumber)
}

func TestCreate_RepoError(t *testing.T) {
	repo := newMockOrderRepo()
	repo.createErr = errors.New("db write failed")
	svc := newTestService(repo, &mockCartRepo{})

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), &mockCartRepo{})

	_, err := svc.Checkout(context.Background(), "u1",
		CustomerInfo{Name: "Ada", Phone: "+1-555-0100"}, PaymentCOD)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_MissingOwner(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), &mockCartRepo{})

	_, err := svc.Checkout(context.Background(), "",
		CustomerInfo{Name: "Ada", Phone: "+1-555-0100"}, PaymentCOD)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "user_id", vErr.Field)
}

func TestCheckout_SnapshotsDiscountedPrices(t *testing.T) {
	orders := newMockOrderRepo()
	carts := &mockCartRepo{lines: []cart.Line{
		cartLine("m1", "Brisket", "100.00", 2, "20"),
		cartLine("m2", "Lemonade", "4.50", 1, "0"),
	}}
	svc := newTestService(orders, carts)

	ticket, err := svc.Checkout(context.Background(), "u1",
		CustomerInfo{Name: "Ada", Phone: "+1-555-0100"}, PaymentCOD)
	require.NoError(t, err)
	require.NotNil(t, orders.lastOrder)

	// 100 * 0.8 * 2 + 4.50 = 164.50
	assert.True(t, decimal.RequireFromString("164.50").Equal(orders.lastOrder.TotalAmount),
		"got %s", orders.lastOrder.TotalAmount)

	require.Len(t, orders.lastOrder.Lines, 2)
	assert.True(t, decimal.RequireFromString("80.00").Equal(orders.lastOrder.Lines[0].Price))
	assert.Equal(t, 2, orders.lastOrder.Lines[0].Quantity)

	assert.Equal(t, []string{"u1"}, carts.cleared, "cart is cleared after checkout")
	assert.NotEmpty(t, ticket.TokenNumber)
}

func TestCheckout_CartClearFailureDoesNotFailCheckout(t *testing.T) {
	orders := newMockOrderRepo()
	carts := &mockCartRepo{
		lines:     []cart.Line{cartLine("m1", "Widget", "10.00", 1, "0")},
		deleteErr: errors.New("connection refused"),
	}
	svc := newTestService(orders, carts)

	ticket, err := svc.Checkout(context.Background(), "u1",
		CustomerInfo{Name: "Ada", Phone: "+1-555-0100"}, PaymentSuccess)
	require.NoError(t, err, "order is durable; clear failure is logged only")
	assert.NotEmpty(t, ticket.TokenNumber)
}

func TestUpdateStatus(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockCartRepo{})

	ticket, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	token := ticket.TokenNumber

	updated, err := svc.UpdateStatus(context.Background(), ticket.ID, PaymentSuccess)
	require.NoError(t, err)
	assert.Equal(t, PaymentSuccess, updated.PaymentStatus)
	assert.Equal(t, token, updated.TokenNumber, "token never changes after issuance")
}

func TestUpdateStatus_Validation(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), &mockCartRepo{})

	_, err := svc.UpdateStatus(context.Background(), "order-1", "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), &mockCartRepo{})

	_, err := svc.UpdateStatus(context.Background(), "missing", PaymentSuccess)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFulfillment_RejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), &mockCartRepo{})

	_, err := svc.UpdateFulfillment(context.Background(), "order-1", "shipped")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)
}

func TestTicket_NotFound(t *testing.T) {
	svc := newTestService(newMockOrderRepo(), &mockCartRepo{})

	_, err := svc.Ticket(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
