// Package handler exposes the domain services as a JSON REST API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/emberhall/commerce/internal/domain/auth"
	"github.com/emberhall/commerce/internal/domain/cart"
	"github.com/emberhall/commerce/internal/domain/catalog"
	"github.com/emberhall/commerce/internal/domain/order"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in catalog
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler wires the HTTP routes to the domain services.
type Handler struct {
	cfg        Config
	carts      *cart.Service
	orders     *order.Service
	menu       catalog.MenuRepository
	rooms      catalog.RoomRepository
	events     catalog.EventRepository
	categories catalog.CategoryRepository
	security   *Security
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	carts *cart.Service,
	orders *order.Service,
	menu catalog.MenuRepository,
	rooms catalog.RoomRepository,
	events catalog.EventRepository,
	categories catalog.CategoryRepository,
	security *Security,
) *Handler {
	return &Handler{
		cfg:        cfg,
		carts:      carts,
		orders:     orders,
		menu:       menu,
		rooms:      rooms,
		events:     events,
		categories: categories,
		security:   security,
	}
}

// Register mounts all API routes on the mux. Admin mutations are wrapped
// with the API key check for their scope.
func (h *Handler) Register(mux *http.ServeMux) {
	// Cart.
	mux.HandleFunc("GET /api/cart/{userID}", h.getCart)
	mux.HandleFunc("POST /api/cart", h.addToCart)
	mux.HandleFunc("PUT /api/cart/{id}", h.updateCartLine)
	mux.HandleFunc("DELETE /api/cart/{id}", h.removeCartLine)
	mux.HandleFunc("DELETE /api/cart/user/{userID}", h.clearCart)
	mux.HandleFunc("POST /api/cart/user/{userID}/checkout", h.checkout)

	// Orders.
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("POST /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("GET /api/orders/{id}/token", h.getOrderToken)
	mux.Handle("POST /api/orders/{id}/fulfillment",
		h.security.Require(auth.ScopeOrdersManage, http.HandlerFunc(h.updateFulfillment)))

	// Catalog.
	mux.HandleFunc("GET /api/menu", h.listMenu)
	mux.HandleFunc("GET /api/menu/category/{category}", h.listMenuByCategory)
	mux.HandleFunc("GET /api/menu/best-selling/all", h.listBestSelling)
	mux.HandleFunc("GET /api/menu/{id}", h.getMenuItem)
	mux.Handle("POST /api/menu",
		h.security.Require(auth.ScopeCatalogWrite, http.HandlerFunc(h.createMenuItem)))
	mux.Handle("PUT /api/menu/{id}",
		h.security.Require(auth.ScopeCatalogWrite, http.HandlerFunc(h.updateMenuItem)))
	mux.Handle("DELETE /api/menu/{id}",
		h.security.Require(auth.ScopeCatalogWrite, http.HandlerFunc(h.deleteMenuItem)))
	mux.HandleFunc("GET /api/rooms", h.listRooms)
	mux.HandleFunc("GET /api/rooms/category/{category}", h.listRoomsByCategory)
	mux.HandleFunc("GET /api/rooms/{id}", h.getRoom)
	mux.Handle("POST /api/rooms",
		h.security.Require(auth.ScopeCatalogWrite, http.HandlerFunc(h.createRoom)))
	mux.Handle("PUT /api/rooms/{id}",
		h.security.Require(auth.ScopeCatalogWrite, http.HandlerFunc(h.updateRoom)))
	mux.Handle("DELETE /api/rooms/{id}",
		h.security.Require(auth.ScopeCatalogWrite, http.HandlerFunc(h.deleteRoom)))
	mux.HandleFunc("GET /api/events", h.listEventPlans)
	mux.HandleFunc("GET /api/events/{id}", h.getEventPlan)
	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("GET /api/categories/menu", h.listMenuCategories)
	mux.HandleFunc("GET /api/categories/rooms", h.listRoomCategories)
}

// imageURL resolves a stored image reference against the configured base.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.cfg.ImageBaseURL == "" {
		return path
	}
	return h.cfg.ImageBaseURL + "/" + path
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeStoreError logs the store failure with full detail and responds with
// a generic 500: raw store messages are not passed through to clients.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("store operation failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
