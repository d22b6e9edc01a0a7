package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emberhall/commerce/internal/domain/catalog"
)

type menuItemJSON struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	Image              string          `json:"image"`
	IsBestSelling      bool            `json:"is_best_selling"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	CreatedAt          string          `json:"created_at,omitempty"`
}

func (h *Handler) menuItemJSON(m catalog.MenuItem) menuItemJSON {
	created := ""
	if !m.CreatedAt.IsZero() {
		created = m.CreatedAt.UTC().Format(time.RFC3339)
	}
	return menuItemJSON{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		Price:              m.Price,
		Category:           m.Category,
		Image:              h.imageURL(m.Image),
		IsBestSelling:      m.IsBestSelling,
		DiscountPercentage: m.DiscountPercentage,
		CreatedAt:          created,
	}
}

func (h *Handler) writeMenuList(w http.ResponseWriter, r *http.Request, items []catalog.MenuItem, err error) {
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	out := make([]menuItemJSON, 0, len(items))
	for _, m := range items {
		out = append(out, h.menuItemJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	h.writeMenuList(w, r, items, err)
}

func (h *Handler) listMenuByCategory(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListByCategory(r.Context(), r.PathValue("category"))
	h.writeMenuList(w, r, items, err)
}

func (h *Handler) listBestSelling(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListBestSelling(r.Context())
	h.writeMenuList(w, r, items, err)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.menu.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.menuItemJSON(*item))
}

type menuItemRequest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	Image              string          `json:"image"`
	IsBestSelling      bool            `json:"is_best_selling"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "name and a non-negative price are required")
		return
	}

	item := catalog.MenuItem{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Category:           req.Category,
		Image:              req.Image,
		IsBestSelling:      req.IsBestSelling,
		DiscountPercentage: req.DiscountPercentage,
	}
	if err := h.menu.Create(r.Context(), &item); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.menuItemJSON(item))
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item := catalog.MenuItem{
		ID:                 r.PathValue("id"),
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Category:           req.Category,
		Image:              req.Image,
		IsBestSelling:      req.IsBestSelling,
		DiscountPercentage: req.DiscountPercentage,
	}
	if err := h.menu.Update(r.Context(), &item); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.menuItemJSON(item))
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.menu.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Item deleted"})
}

type categoryJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	Description string `json:"description"`
	SortOrder   int    `json:"order"`
}

func categoriesJSON(cats []catalog.Category) []categoryJSON {
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryJSON{
			ID:          c.ID,
			Name:        c.Name,
			Slug:        c.Slug,
			Type:        string(c.Type),
			Description: c.Description,
			SortOrder:   c.SortOrder,
		})
	}
	return out
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesJSON(cats))
}

func (h *Handler) listMenuCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListByType(r.Context(), catalog.TypeMenu)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesJSON(cats))
}

func (h *Handler) listRoomCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListByType(r.Context(), catalog.TypeRoom)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesJSON(cats))
}

type roomJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Capacity      int             `json:"capacity"`
	Category      string          `json:"category"`
	Amenities     []string        `json:"amenities"`
	Image         string          `json:"image"`
	Available     bool            `json:"available"`
}

func (h *Handler) roomJSON(rm catalog.Room) roomJSON {
	return roomJSON{
		ID:            rm.ID,
		Name:          rm.Name,
		Description:   rm.Description,
		PricePerNight: rm.PricePerNight,
		Capacity:      rm.Capacity,
		Category:      rm.Category,
		Amenities:     rm.Amenities,
		Image:         h.imageURL(rm.Image),
		Available:     rm.Available,
	}
}

func (h *Handler) writeRoomList(w http.ResponseWriter, r *http.Request, rooms []catalog.Room, err error) {
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	out := make([]roomJSON, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, h.roomJSON(rm))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context())
	h.writeRoomList(w, r, rooms, err)
}

func (h *Handler) listRoomsByCategory(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListByCategory(r.Context(), r.PathValue("category"))
	h.writeRoomList(w, r, rooms, err)
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.roomJSON(*room))
}

type roomRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Capacity      int             `json:"capacity"`
	Category      string          `json:"category"`
	Amenities     []string        `json:"amenities"`
	Image         string          `json:"image"`
	Available     bool            `json:"available"`
}

func (req roomRequest) toRoom(id string) catalog.Room {
	capacity := req.Capacity
	if capacity <= 0 {
		capacity = 2
	}
	amenities := req.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return catalog.Room{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Capacity:      capacity,
		Category:      req.Category,
		Amenities:     amenities,
		Image:         req.Image,
		Available:     req.Available,
	}
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.PricePerNight.IsNegative() {
		writeError(w, http.StatusBadRequest, "name and a non-negative price are required")
		return
	}

	room := req.toRoom(uuid.New().String())
	if err := h.rooms.Create(r.Context(), &room); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.roomJSON(room))
}

func (h *Handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	room := req.toRoom(r.PathValue("id"))
	if err := h.rooms.Update(r.Context(), &room); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.roomJSON(room))
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Room deleted"})
}

type eventPlanJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

func (h *Handler) eventPlanJSON(p catalog.EventPlan) eventPlanJSON {
	return eventPlanJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       h.imageURL(p.Image),
	}
}

func (h *Handler) listEventPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.events.List(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	out := make([]eventPlanJSON, 0, len(plans))
	for _, p := range plans {
		out = append(out, h.eventPlanJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getEventPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.events.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event plan not found")
			return
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.eventPlanJSON(*plan))
}
