// Package catalog holds the menu, room, and event plan entities the
// storefront sells, together with their repository contracts.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested catalog entry does not exist.
var ErrNotFound = errors.New("catalog item not found")

// ItemType distinguishes the three sellable catalog families.
type ItemType string

const (
	TypeMenu  ItemType = "menu"
	TypeRoom  ItemType = "room"
	TypeEvent ItemType = "event"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case TypeMenu, TypeRoom, TypeEvent:
		return true
	}
	return false
}

// MenuItem is a dish or drink on the restaurant menu.
type MenuItem struct {
	ID                 string
	Name               string
	Description        string
	Price              decimal.Decimal
	Category           string
	Image              string
	IsBestSelling      bool
	DiscountPercentage decimal.Decimal
	CreatedAt          time.Time
}

// Room is a bookable hotel room.
type Room struct {
	ID            string
	Name          string
	Description   string
	PricePerNight decimal.Decimal
	Capacity      int
	Category      string
	Amenities     []string
	Image         string
	Available     bool
	CreatedAt     time.Time
}

// Category is a display grouping for menu items or rooms. SortOrder controls
// the storefront ordering within a type.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Type        ItemType
	Description string
	SortOrder   int
	CreatedAt   time.Time
}

// EventPlan is a pre-priced event hosting package.
type EventPlan struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	CreatedAt   time.Time
}

// MenuRepository defines persistence operations for menu items.
type MenuRepository interface {
	List(ctx context.Context) ([]MenuItem, error)
	ListByCategory(ctx context.Context, category string) ([]MenuItem, error)
	ListBestSelling(ctx context.Context) ([]MenuItem, error)
	GetByID(ctx context.Context, id string) (*MenuItem, error)
	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id string) error
}

// RoomRepository defines persistence operations for rooms.
type RoomRepository interface {
	List(ctx context.Context) ([]Room, error)
	ListByCategory(ctx context.Context, category string) ([]Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	Create(ctx context.Context, room *Room) error
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines read operations for display categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	ListByType(ctx context.Context, t ItemType) ([]Category, error)
}

// EventRepository defines read operations for event plans.
type EventRepository interface {
	List(ctx context.Context) ([]EventPlan, error)
	GetByID(ctx context.Context, id string) (*EventPlan, error)
}
