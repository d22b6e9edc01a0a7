package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emberhall/commerce/internal/domain/cart"
	"github.com/emberhall/commerce/internal/domain/catalog"
)

// syncHeader reports whether a cart mutation reached the store or was kept
// in session-local state only.
const syncHeader = "X-Cart-Sync"

type cartLineJSON struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	ItemID             string          `json:"item_id"`
	ItemName           string          `json:"item_name"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Image              string          `json:"image,omitempty"`
	Category           string          `json:"category,omitempty"`
	ItemType           string          `json:"item_type"`
	CreatedAt          string          `json:"created_at,omitempty"`
}

func (h *Handler) cartLineJSON(l cart.Line) cartLineJSON {
	created := ""
	if !l.CreatedAt.IsZero() {
		created = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return cartLineJSON{
		ID:                 l.ID,
		UserID:             l.OwnerID,
		ItemID:             l.ItemID,
		ItemName:           l.Name,
		Quantity:           l.Quantity,
		Price:              l.UnitPrice,
		DiscountPercentage: l.DiscountPercentage,
		Image:              h.imageURL(l.Image),
		Category:           l.Category,
		ItemType:           string(l.ItemType),
		CreatedAt:          created,
	}
}

// getCart returns all cart lines for a user, newest first.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	sess := h.carts.Session(userID)
	lines, err := h.carts.Load(r.Context(), sess)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	out := make([]cartLineJSON, 0, len(lines))
	for _, l := range lines {
		out = append(out, h.cartLineJSON(l))
	}
	writeJSON(w, http.StatusOK, out)
}

type addToCartRequest struct {
	UserID             string          `json:"user_id"`
	ItemType           string          `json:"item_type"`
	ItemID             string          `json:"item_id"`
	ItemName           string          `json:"item_name"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Image              string          `json:"image"`
	Category           string          `json:"category"`
}

// addToCart adds an item to a user's cart, merging quantity into an
// existing line for the same (user, item, item type). A merge responds 200,
// a new line 201.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ItemType == "" || req.ItemID == "" ||
		req.ItemName == "" || req.Quantity == 0 || req.Price.IsZero() {
		writeError(w, http.StatusBadRequest,
			"Missing required fields: user_id, item_type, item_id, item_name, quantity, price")
		return
	}

	sess := h.carts.Session(req.UserID)
	mut, err := h.carts.AddItem(r.Context(), sess, cart.LineInput{
		ItemID:             req.ItemID,
		ItemType:           catalog.ItemType(req.ItemType),
		Name:               req.ItemName,
		Quantity:           req.Quantity,
		UnitPrice:          req.Price,
		DiscountPercentage: req.DiscountPercentage,
		Image:              req.Image,
		Category:           req.Category,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set(syncHeader, string(mut.Outcome))
	status := http.StatusCreated
	if mut.Merged {
		status = http.StatusOK
	}
	writeJSON(w, status, h.cartLineJSON(*mut.Line))
}

type updateCartRequest struct {
	UserID   string `json:"user_id"`
	Quantity *int   `json:"quantity"`
}

// updateCartLine sets a line's quantity to an absolute value. When the body
// carries a user_id the session reconciliation path is used and store
// failures degrade to local state; otherwise the store is mutated directly.
func (h *Handler) updateCartLine(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("id")

	var req updateCartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil || *req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	if req.UserID != "" {
		sess := h.carts.Session(req.UserID)
		mut, err := h.carts.UpdateQuantity(r.Context(), sess, lineID, *req.Quantity)
		if err != nil {
			if errors.Is(err, cart.ErrNotFound) {
				writeError(w, http.StatusNotFound, "cart line not found")
				return
			}
			writeStoreError(w, r, err)
			return
		}
		w.Header().Set(syncHeader, string(mut.Outcome))
		writeJSON(w, http.StatusOK, h.cartLineJSON(*mut.Line))
		return
	}

	line, err := h.carts.SetQuantityByID(r.Context(), lineID, *req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, http.StatusNotFound, "cart line not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartLineJSON(*line))
}

// removeCartLine deletes a single line. Removing an absent line is a no-op.
func (h *Handler) removeCartLine(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.RemoveByID(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Item removed from cart"})
}

// clearCart deletes every line for a user and tears down the session. Used
// after checkout and on sign-out.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	sess := h.carts.Session(userID)
	mut, err := h.carts.Clear(r.Context(), sess)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	h.carts.EndSession(userID)

	w.Header().Set(syncHeader, string(mut.Outcome))
	writeJSON(w, http.StatusOK, messageBody{Message: "Cart cleared"})
}
