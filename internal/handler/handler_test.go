package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emberhall/commerce/internal/domain/auth"
	"github.com/emberhall/commerce/internal/domain/cart"
	"github.com/emberhall/commerce/internal/domain/catalog"
	"github.com/emberhall/commerce/internal/domain/order"
)

// --- Mock implementations ---

type mockCartRepo struct {
	lines map[string]*cart.Line

	listErr   error
	upsertErr error
	setErr    error
	deleteErr error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{lines: make(map[string]*cart.Line)}
}

func (m *mockCartRepo) ListByOwner(_ context.Context, ownerID string) ([]cart.Line, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []cart.Line
	for _, l := range m.lines {
		if l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockCartRepo) Upsert(_ context.Context, line cart.Line) (*cart.Line, bool, error) {
	if m.upsertErr != nil {
		return nil, false, m.upsertErr
	}
	for _, l := range m.lines {
		if l.OwnerID == line.OwnerID && l.ItemID == line.ItemID && l.ItemType == line.ItemType {
			l.Quantity += line.Quantity
			merged := *l
			return &merged, false, nil
		}
	}
	stored := line
	m.lines[line.ID] = &stored
	created := stored
	return &created, true, nil
}

func (m *mockCartRepo) SetQuantity(_ context.Context, lineID string, quantity int) (*cart.Line, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	l, ok := m.lines[lineID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	l.Quantity = quantity
	updated := *l
	return &updated, nil
}

func (m *mockCartRepo) Delete(_ context.Context, lineID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.lines, lineID)
	return nil
}

func (m *mockCartRepo) DeleteByOwner(_ context.Context, ownerID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for id, l := range m.lines {
		if l.OwnerID == ownerID {
			delete(m.lines, id)
		}
	}
	return nil
}

type mockOrderRepo struct {
	lastOrder *order.Order
	seq       int
	createErr error
	tickets   map[string]*order.Ticket
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{tickets: make(map[string]*order.Ticket)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) (*order.Ticket, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.seq++
	m.lastOrder = o
	t := &order.Ticket{
		ID:            fmt.Sprintf("order-%d", m.seq),
		TokenNumber:   fmt.Sprintf("T26-%04d", m.seq),
		PaymentStatus: o.PaymentStatus,
		OrderDate:     o.OrderDate,
	}
	m.tickets[t.ID] = t
	return t, nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id string, status order.PaymentStatus) (*order.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	t.PaymentStatus = status
	return t, nil
}

func (m *mockOrderRepo) UpdateFulfillment(_ context.Context, id string, _ order.Status) (*order.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return t, nil
}

func (m *mockOrderRepo) GetTicket(_ context.Context, id string) (*order.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return t, nil
}

type mockMenuRepo struct {
	items   []catalog.MenuItem
	byID    map[string]*catalog.MenuItem
	listErr error
}

func newMenuRepo(items ...catalog.MenuItem) *mockMenuRepo {
	byID := make(map[string]*catalog.MenuItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	return &mockMenuRepo{items: items, byID: byID}
}

func (m *mockMenuRepo) List(_ context.Context) ([]catalog.MenuItem, error) {
	return m.items, m.listErr
}

func (m *mockMenuRepo) ListByCategory(_ context.Context, category string) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, it := range m.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, m.listErr
}

func (m *mockMenuRepo) ListBestSelling(_ context.Context) ([]catalog.MenuItem, error) {
	var out []catalog.MenuItem
	for _, it := range m.items {
		if it.IsBestSelling {
			out = append(out, it)
		}
	}
	return out, m.listErr
}

func (m *mockMenuRepo) GetByID(_ context.Context, id string) (*catalog.MenuItem, error) {
	it, ok := m.byID[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return it, nil
}

func (m *mockMenuRepo) Create(_ context.Context, item *catalog.MenuItem) error {
	m.items = append(m.items, *item)
	m.byID[item.ID] = item
	return nil
}

func (m *mockMenuRepo) Update(_ context.Context, item *catalog.MenuItem) error {
	if _, ok := m.byID[item.ID]; !ok {
		return catalog.ErrNotFound
	}
	m.byID[item.ID] = item
	return nil
}

func (m *mockMenuRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockRoomRepo struct {
	rooms []catalog.Room
}

func (m *mockRoomRepo) List(_ context.Context) ([]catalog.Room, error) {
	return m.rooms, nil
}

func (m *mockRoomRepo) ListByCategory(_ context.Context, category string) ([]catalog.Room, error) {
	var out []catalog.Room
	for _, rm := range m.rooms {
		if rm.Category == category {
			out = append(out, rm)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*catalog.Room, error) {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			return &m.rooms[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *mockRoomRepo) Create(_ context.Context, room *catalog.Room) error {
	m.rooms = append(m.rooms, *room)
	return nil
}

func (m *mockRoomRepo) Update(_ context.Context, room *catalog.Room) error {
	for i := range m.rooms {
		if m.rooms[i].ID == room.ID {
			m.rooms[i] = *room
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (m *mockRoomRepo) Delete(_ context.Context, id string) error {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			m.rooms = append(m.rooms[:i], m.rooms[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

type mockEventRepo struct {
	plans []catalog.EventPlan
}

func (m *mockEventRepo) List(_ context.Context) ([]catalog.EventPlan, error) {
	return m.plans, nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*catalog.EventPlan, error) {
	for i := range m.plans {
		if m.plans[i].ID == id {
			return &m.plans[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

type mockCategoryRepo struct {
	cats []catalog.Category
}

func (m *mockCategoryRepo) List(_ context.Context) ([]catalog.Category, error) {
	return m.cats, nil
}

func (m *mockCategoryRepo) ListByType(_ context.Context, t catalog.ItemType) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, c := range m.cats {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockAPIKeyRepo struct {
	info *auth.APIKeyInfo
	err  error
}

func (m *mockAPIKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.info == nil || m.info.KeyHash != hash {
		return nil, errors.New("api key not found")
	}
	return m.info, nil
}

// --- Helpers ---

const testPepper = "test-pepper"

type testEnv struct {
	mux        *http.ServeMux
	carts      *mockCartRepo
	orders     *mockOrderRepo
	menu       *mockMenuRepo
	rooms      *mockRoomRepo
	categories *mockCategoryRepo
	keys       *mockAPIKeyRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		mux:        http.NewServeMux(),
		carts:      newMockCartRepo(),
		orders:     newMockOrderRepo(),
		menu:       newMenuRepo(),
		rooms:      &mockRoomRepo{},
		categories: &mockCategoryRepo{},
		keys:       &mockAPIKeyRepo{},
	}

	lg := zap.NewNop()
	cartSvc := cart.NewService(env.carts, lg)
	orderSvc := order.NewService(env.orders, env.carts, lg)

	h := New(Config{}, cartSvc, orderSvc, env.menu, env.rooms, &mockEventRepo{},
		env.categories, NewSecurity(env.keys, []byte(testPepper)))
	h.Register(env.mux)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func hashKey(key string) string {
	mac := hmac.New(sha256.New, []byte(testPepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

const addBody = `{"user_id":"u1","item_type":"menu","item_id":"m1","item_name":"Widget","quantity":2,"price":"10.00"}`

// --- Cart tests ---

func TestAddToCart_CreatesLine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "persisted", rec.Header().Get("X-Cart-Sync"))

	line := decode[cartLineJSON](t, rec)
	assert.Equal(t, "u1", line.UserID)
	assert.Equal(t, "m1", line.ItemID)
	assert.Equal(t, 2, line.Quantity)
}

func TestAddToCart_MergesExistingLine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusOK, rec.Code, "second add merges, not creates")

	line := decode[cartLineJSON](t, rec)
	assert.Equal(t, 4, line.Quantity)
	assert.Len(t, env.carts.lines, 1)
}

func TestAddToCart_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", `{"user_id":"u1","item_id":"m1"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorBody](t, rec)
	assert.Contains(t, body.Error, "Missing required fields")
	assert.Empty(t, env.carts.lines, "rejected add must not create a row")
}

func TestAddToCart_StoreFailureDegrades(t *testing.T) {
	env := newTestEnv(t)
	env.carts.upsertErr = errors.New("connection refused")

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, "store failure must not fail the request")
	assert.Equal(t, "local-only", rec.Header().Get("X-Cart-Sync"))
}

func TestGetCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/cart/u1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	lines := decode[[]cartLineJSON](t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "Widget", lines[0].ItemName)
}

func TestGetCart_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.carts.listErr = errors.New("connection refused")

	rec := env.do(t, http.MethodGet, "/api/cart/u1", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode[errorBody](t, rec)
	assert.Equal(t, "Internal server error", body.Error, "store details must not leak")
}

func TestUpdateCartLine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	created := decode[cartLineJSON](t, rec)

	rec = env.do(t, http.MethodPut, "/api/cart/"+created.ID, `{"user_id":"u1","quantity":7}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	line := decode[cartLineJSON](t, rec)
	assert.Equal(t, 7, line.Quantity, "update sets the quantity, not adds")
}

func TestUpdateCartLine_QuantityTooLow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/cart/some-id", `{"quantity":0}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorBody](t, rec)
	assert.Equal(t, "Quantity must be at least 1", body.Error)
}

func TestUpdateCartLine_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/cart/missing", `{"quantity":3}`, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveCartLine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	created := decode[cartLineJSON](t, rec)

	rec = env.do(t, http.MethodDelete, "/api/cart/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item removed from cart", decode[messageBody](t, rec).Message)
	assert.Empty(t, env.carts.lines)

	// Deleting again is still a 200.
	rec = env.do(t, http.MethodDelete, "/api/cart/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/cart/user/u1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart cleared", decode[messageBody](t, rec).Message)
	assert.Empty(t, env.carts.lines)
}

// --- Order tests ---

const orderBody = `{"customer_name":"Ada","customer_phone":"+1-555-0100","total_amount":"42.50"}`

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/orders", orderBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ticket := decode[ticketJSON](t, rec)
	assert.NotEmpty(t, ticket.ID)
	assert.NotEmpty(t, ticket.TokenNumber)
	assert.Equal(t, "PENDING", ticket.PaymentStatus)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, ticket.OrderDate)
}

func TestCreateOrder_MissingField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/orders", `{"customer_phone":"+1","total_amount":"10"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode[errorBody](t, rec)
	assert.Equal(t, "customer_name is required", body.Error)
	assert.Nil(t, env.orders.lastOrder)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart", addBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/cart/user/u1/checkout",
		`{"customer_name":"Ada","customer_phone":"+1-555-0100","payment_status":"COD"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ticket := decode[ticketJSON](t, rec)
	assert.Equal(t, "COD", ticket.PaymentStatus)
	assert.NotEmpty(t, ticket.TokenNumber)

	require.NotNil(t, env.orders.lastOrder)
	assert.True(t, decimal.RequireFromString("20.00").Equal(env.orders.lastOrder.TotalAmount))
	assert.Empty(t, env.carts.lines, "cart is cleared after checkout")
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart/user/u1/checkout",
		`{"customer_name":"Ada","customer_phone":"+1-555-0100"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", decode[errorBody](t, rec).Error)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/orders", orderBody, nil)
	ticket := decode[ticketJSON](t, rec)

	rec = env.do(t, http.MethodPost, "/api/orders/"+ticket.ID+"/status",
		`{"payment_status":"SUCCESS"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decode[ticketJSON](t, rec)
	assert.Equal(t, "SUCCESS", updated.PaymentStatus)
	assert.Equal(t, ticket.TokenNumber, updated.TokenNumber)
}

func TestGetOrderToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/orders", orderBody, nil)
	created := decode[ticketJSON](t, rec)

	rec = env.do(t, http.MethodGet, "/api/orders/"+created.ID+"/token", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.TokenNumber, decode[ticketJSON](t, rec).TokenNumber)
}

func TestGetOrderToken_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders/missing/token", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order not found", decode[errorBody](t, rec).Error)
}

// --- Catalog and security tests ---

func TestListMenu(t *testing.T) {
	env := newTestEnv(t)
	env.menu.items = []catalog.MenuItem{
		{ID: "m1", Name: "Widget", Price: decimal.NewFromInt(10), Category: "mains"},
	}

	rec := env.do(t, http.MethodGet, "/api/menu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decode[[]menuItemJSON](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Widget", items[0].Name)
}

func TestGetMenuItem_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/menu/missing", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Item not found", decode[errorBody](t, rec).Error)
}

const menuItemBody = `{"name":"Corn Ribs","price":"8.50","category":"starters"}`

func TestCreateMenuItem_NoKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/menu", menuItemBody, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMenuItem_WrongScope(t *testing.T) {
	env := newTestEnv(t)
	env.keys.info = &auth.APIKeyInfo{
		ID: "k1", KeyHash: hashKey("sk-test"), Name: "ops", Scopes: []string{"orders:manage"},
	}

	rec := env.do(t, http.MethodPost, "/api/menu", menuItemBody,
		http.Header{"X-Api-Key": []string{"sk-test"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateMenuItem_Authorized(t *testing.T) {
	env := newTestEnv(t)
	env.keys.info = &auth.APIKeyInfo{
		ID: "k1", KeyHash: hashKey("sk-test"), Name: "admin", Scopes: []string{"*"},
	}

	rec := env.do(t, http.MethodPost, "/api/menu", menuItemBody,
		http.Header{"X-Api-Key": []string{"sk-test"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	item := decode[menuItemJSON](t, rec)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Corn Ribs", item.Name)
}

func TestCreateMenuItem_WrongKey(t *testing.T) {
	env := newTestEnv(t)
	env.keys.info = &auth.APIKeyInfo{
		ID: "k1", KeyHash: hashKey("sk-test"), Name: "admin", Scopes: []string{"*"},
	}

	rec := env.do(t, http.MethodPost, "/api/menu", menuItemBody,
		http.Header{"X-Api-Key": []string{"sk-wrong"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func seedCategories(env *testEnv) {
	env.categories.cats = []catalog.Category{
		{ID: "c1", Name: "Mains", Slug: "mains", Type: catalog.TypeMenu, SortOrder: 1},
		{ID: "c2", Name: "Drinks", Slug: "drinks", Type: catalog.TypeMenu, SortOrder: 2},
		{ID: "c3", Name: "Suite", Slug: "suite", Type: catalog.TypeRoom, SortOrder: 1},
	}
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t)
	seedCategories(env)

	rec := env.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cats := decode[[]categoryJSON](t, rec)
	require.Len(t, cats, 3)
	assert.Equal(t, "mains", cats[0].Slug)
}

func TestListCategories_MenuOnly(t *testing.T) {
	env := newTestEnv(t)
	seedCategories(env)

	rec := env.do(t, http.MethodGet, "/api/categories/menu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cats := decode[[]categoryJSON](t, rec)
	require.Len(t, cats, 2)
	for _, c := range cats {
		assert.Equal(t, "menu", c.Type)
	}
}

func TestListCategories_RoomsOnly(t *testing.T) {
	env := newTestEnv(t)
	seedCategories(env)

	rec := env.do(t, http.MethodGet, "/api/categories/rooms", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cats := decode[[]categoryJSON](t, rec)
	require.Len(t, cats, 1)
	assert.Equal(t, "suite", cats[0].Slug)
}

func TestListRoomsByCategory(t *testing.T) {
	env := newTestEnv(t)
	env.rooms.rooms = []catalog.Room{
		{ID: "r1", Name: "Garden Suite", Category: "suite", PricePerNight: decimal.NewFromInt(180)},
		{ID: "r2", Name: "Loft Room", Category: "standard", PricePerNight: decimal.NewFromInt(140)},
	}

	rec := env.do(t, http.MethodGet, "/api/rooms/category/suite", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rooms := decode[[]roomJSON](t, rec)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Garden Suite", rooms[0].Name)
}

const roomBody = `{"name":"Loft Room","price_per_night":"140.00","capacity":2,"category":"standard","available":true}`

func TestCreateRoom_NoKey(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/rooms", roomBody, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.rooms.rooms)
}

func TestRoomAdminCRUD(t *testing.T) {
	env := newTestEnv(t)
	env.keys.info = &auth.APIKeyInfo{
		ID: "k1", KeyHash: hashKey("sk-test"), Name: "admin", Scopes: []string{"catalog:write"},
	}
	key := http.Header{"X-Api-Key": []string{"sk-test"}}

	rec := env.do(t, http.MethodPost, "/api/rooms", roomBody, key)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[roomJSON](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "standard", created.Category)

	rec = env.do(t, http.MethodPut, "/api/rooms/"+created.ID,
		`{"name":"Loft Room","price_per_night":"155.00","capacity":3,"category":"standard","available":false}`, key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[roomJSON](t, rec)
	assert.Equal(t, 3, updated.Capacity)
	assert.False(t, updated.Available)

	rec = env.do(t, http.MethodDelete, "/api/rooms/"+created.ID, "", key)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Room deleted", decode[messageBody](t, rec).Message)
	assert.Empty(t, env.rooms.rooms)
}

func TestUpdateRoom_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.keys.info = &auth.APIKeyInfo{
		ID: "k1", KeyHash: hashKey("sk-test"), Name: "admin", Scopes: []string{"*"},
	}

	rec := env.do(t, http.MethodPut, "/api/rooms/missing", roomBody,
		http.Header{"X-Api-Key": []string{"sk-test"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Room not found", decode[errorBody](t, rec).Error)
}
