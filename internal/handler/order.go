package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emberhall/commerce/internal/domain/order"
)

type ticketJSON struct {
	ID            string `json:"id"`
	TokenNumber   string `json:"token_number"`
	PaymentStatus string `json:"payment_status"`
	OrderDate     string `json:"order_date"`
}

func toTicketJSON(t *order.Ticket) ticketJSON {
	return ticketJSON{
		ID:            t.ID,
		TokenNumber:   t.TokenNumber,
		PaymentStatus: string(t.PaymentStatus),
		OrderDate:     t.OrderDate.Format("2006-01-02"),
	}
}

// writeOrderError maps domain order errors onto the HTTP surface.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	default:
		writeStoreError(w, r, err)
	}
}

type createOrderRequest struct {
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	Items         []orderItemJSON `json:"items"`
}

type orderItemJSON struct {
	ItemID   string          `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// createOrder persists a checkout submission and returns the issued ticket.
// payment_status defaults to PENDING when omitted.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	createReq := order.CreateRequest{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		TotalAmount:   req.TotalAmount,
		PaymentStatus: order.PaymentStatus(req.PaymentStatus),
	}
	for _, item := range req.Items {
		createReq.Lines = append(createReq.Lines, order.LineInput{
			ItemID:   item.ItemID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	ticket, err := h.orders.Create(r.Context(), createReq)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTicketJSON(ticket))
}

type checkoutRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email"`
	PaymentStatus string `json:"payment_status"`
}

// checkout reads the user's persisted cart, creates an order with line
// snapshots, clears the cart, and returns the ticket.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.orders.Checkout(r.Context(), userID, order.CustomerInfo{
		Name:  req.CustomerName,
		Phone: req.CustomerPhone,
		Email: req.CustomerEmail,
	}, order.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	// The persisted cart is already cleared; drop the session view too.
	h.carts.EndSession(userID)

	writeJSON(w, http.StatusCreated, toTicketJSON(ticket))
}

type updateStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// updateOrderStatus progresses the payment status, e.g. after the payment
// step resolves to COD or SUCCESS.
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.orders.UpdateStatus(r.Context(), r.PathValue("id"), order.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketJSON(ticket))
}

type updateFulfillmentRequest struct {
	Status string `json:"status"`
}

// updateFulfillment moves the admin-facing fulfillment status. Requires the
// orders:manage scope.
func (h *Handler) updateFulfillment(w http.ResponseWriter, r *http.Request) {
	var req updateFulfillmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.orders.UpdateFulfillment(r.Context(), r.PathValue("id"), order.Status(req.Status))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketJSON(ticket))
}

// getOrderToken fetches the pickup projection by order id.
func (h *Handler) getOrderToken(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.orders.Ticket(r.Context(), r.PathValue("id"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTicketJSON(ticket))
}
