package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhall/commerce/internal/domain/catalog"
)

const (
	menuColumns = `id, name, description, price, category, image, is_best_selling, discount_percentage, created_at`

	listMenuSQL = `SELECT ` + menuColumns + ` FROM menu_items
		ORDER BY is_best_selling DESC, created_at DESC`
	listMenuByCategorySQL = `SELECT ` + menuColumns + ` FROM menu_items
		WHERE category = $1 ORDER BY is_best_selling DESC, created_at DESC`
	listBestSellingSQL = `SELECT ` + menuColumns + ` FROM menu_items
		WHERE is_best_selling = TRUE ORDER BY created_at DESC`
	getMenuItemSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	insertMenuItemSQL = `INSERT INTO menu_items
		(id, name, description, price, category, image, is_best_selling, discount_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	updateMenuItemSQL = `UPDATE menu_items SET name = $2, description = $3, price = $4,
		category = $5, image = $6, is_best_selling = $7, discount_percentage = $8
		WHERE id = $1`
	deleteMenuItemSQL = `DELETE FROM menu_items WHERE id = $1`

	roomColumns = `id, name, description, price_per_night, capacity, category, amenities, image, available, created_at`

	listRoomsSQL = `SELECT ` + roomColumns + ` FROM rooms ORDER BY price_per_night`
	listRoomsByCategorySQL = `SELECT ` + roomColumns + ` FROM rooms
		WHERE category = $1 ORDER BY price_per_night`
	getRoomSQL = `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	insertRoomSQL = `INSERT INTO rooms
		(id, name, description, price_per_night, capacity, category, amenities, image, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	updateRoomSQL = `UPDATE rooms SET name = $2, description = $3, price_per_night = $4,
		capacity = $5, category = $6, amenities = $7, image = $8, available = $9
		WHERE id = $1`
	deleteRoomSQL = `DELETE FROM rooms WHERE id = $1`

	listCategoriesSQL = `SELECT id, name, slug, type, description, sort_order, created_at
		FROM categories ORDER BY type, sort_order, name`
	listCategoriesByTypeSQL = `SELECT id, name, slug, type, description, sort_order, created_at
		FROM categories WHERE type = $1 ORDER BY sort_order, name`

	listEventPlansSQL = `SELECT id, name, description, price, image, created_at
		FROM event_plans ORDER BY price`
	getEventPlanSQL = `SELECT id, name, description, price, image, created_at
		FROM event_plans WHERE id = $1`
)

var (
	_ catalog.MenuRepository     = (*MenuRepository)(nil)
	_ catalog.RoomRepository     = (*RoomRepository)(nil)
	_ catalog.EventRepository    = (*EventRepository)(nil)
	_ catalog.CategoryRepository = (*CategoryRepository)(nil)
)

// MenuRepository implements catalog.MenuRepository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

func (r *MenuRepository) List(ctx context.Context) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, listMenuSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func (r *MenuRepository) ListByCategory(ctx context.Context, category string) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, listMenuByCategorySQL, category)
	if err != nil {
		return nil, fmt.Errorf("listing menu items in %q: %w", category, err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func (r *MenuRepository) ListBestSelling(ctx context.Context) ([]catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, listBestSellingSQL)
	if err != nil {
		return nil, fmt.Errorf("listing best-selling menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func (r *MenuRepository) GetByID(ctx context.Context, id string) (*catalog.MenuItem, error) {
	rows, err := r.pool.Query(ctx, getMenuItemSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}
	return &item, nil
}

func (r *MenuRepository) Create(ctx context.Context, item *catalog.MenuItem) error {
	_, err := r.pool.Exec(ctx, insertMenuItemSQL,
		item.ID, item.Name, item.Description, item.Price, item.Category,
		item.Image, item.IsBestSelling, item.DiscountPercentage,
	)
	if err != nil {
		return fmt.Errorf("creating menu item %q: %w", item.ID, err)
	}
	return nil
}

func (r *MenuRepository) Update(ctx context.Context, item *catalog.MenuItem) error {
	tag, err := r.pool.Exec(ctx, updateMenuItemSQL,
		item.ID, item.Name, item.Description, item.Price, item.Category,
		item.Image, item.IsBestSelling, item.DiscountPercentage,
	)
	if err != nil {
		return fmt.Errorf("updating menu item %q: %w", item.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("deleting menu item %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanMenuItem(row pgx.CollectableRow) (catalog.MenuItem, error) {
	var m catalog.MenuItem
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Price, &m.Category,
		&m.Image, &m.IsBestSelling, &m.DiscountPercentage, &m.CreatedAt,
	)
	return m, err
}

// RoomRepository implements catalog.RoomRepository backed by PostgreSQL.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository returns a RoomRepository that uses the given pool.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func (r *RoomRepository) List(ctx context.Context) ([]catalog.Room, error) {
	rows, err := r.pool.Query(ctx, listRoomsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return pgx.CollectRows(rows, scanRoom)
}

func (r *RoomRepository) ListByCategory(ctx context.Context, category string) ([]catalog.Room, error) {
	rows, err := r.pool.Query(ctx, listRoomsByCategorySQL, category)
	if err != nil {
		return nil, fmt.Errorf("listing rooms in %q: %w", category, err)
	}
	return pgx.CollectRows(rows, scanRoom)
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*catalog.Room, error) {
	rows, err := r.pool.Query(ctx, getRoomSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting room %q: %w", id, err)
	}

	room, err := pgx.CollectExactlyOneRow(rows, scanRoom)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting room %q: %w", id, err)
	}
	return &room, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *catalog.Room) error {
	_, err := r.pool.Exec(ctx, insertRoomSQL,
		room.ID, room.Name, room.Description, room.PricePerNight, room.Capacity,
		room.Category, room.Amenities, room.Image, room.Available,
	)
	if err != nil {
		return fmt.Errorf("creating room %q: %w", room.ID, err)
	}
	return nil
}

func (r *RoomRepository) Update(ctx context.Context, room *catalog.Room) error {
	tag, err := r.pool.Exec(ctx, updateRoomSQL,
		room.ID, room.Name, room.Description, room.PricePerNight, room.Capacity,
		room.Category, room.Amenities, room.Image, room.Available,
	)
	if err != nil {
		return fmt.Errorf("updating room %q: %w", room.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteRoomSQL, id)
	if err != nil {
		return fmt.Errorf("deleting room %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanRoom(row pgx.CollectableRow) (catalog.Room, error) {
	var rm catalog.Room
	err := row.Scan(
		&rm.ID, &rm.Name, &rm.Description, &rm.PricePerNight, &rm.Capacity,
		&rm.Category, &rm.Amenities, &rm.Image, &rm.Available, &rm.CreatedAt,
	)
	return rm, err
}

// CategoryRepository implements catalog.CategoryRepository backed by
// PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

func (r *CategoryRepository) ListByType(ctx context.Context, t catalog.ItemType) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesByTypeSQL, string(t))
	if err != nil {
		return nil, fmt.Errorf("listing %s categories: %w", t, err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Type, &c.Description, &c.SortOrder, &c.CreatedAt)
	return c, err
}

// EventRepository implements catalog.EventRepository backed by PostgreSQL.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns an EventRepository that uses the given pool.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) List(ctx context.Context) ([]catalog.EventPlan, error) {
	rows, err := r.pool.Query(ctx, listEventPlansSQL)
	if err != nil {
		return nil, fmt.Errorf("listing event plans: %w", err)
	}
	return pgx.CollectRows(rows, scanEventPlan)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*catalog.EventPlan, error) {
	rows, err := r.pool.Query(ctx, getEventPlanSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting event plan %q: %w", id, err)
	}

	plan, err := pgx.CollectExactlyOneRow(rows, scanEventPlan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting event plan %q: %w", id, err)
	}
	return &plan, nil
}

func scanEventPlan(row pgx.CollectableRow) (catalog.EventPlan, error) {
	var p catalog.EventPlan
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CreatedAt)
	return p, err
}
