// Command seed-db loads the catalog seed file into the database and seeds
// an admin API key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/emberhall/commerce/internal/repository"
)

type seedFile struct {
	Categories []categoryJSON  `json:"categories"`
	MenuItems  []menuItemJSON  `json:"menu_items"`
	Rooms      []roomJSON      `json:"rooms"`
	EventPlans []eventPlanJSON `json:"event_plans"`
}

type categoryJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	Description string `json:"description"`
	SortOrder   int    `json:"order"`
}

type menuItemJSON struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Category           string          `json:"category"`
	Image              string          `json:"image"`
	IsBestSelling      bool            `json:"is_best_selling"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
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

type eventPlanJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

func main() {
	var (
		databaseURL  string
		catalogFile  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json", "path to catalog JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or EMBER_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or EMBER_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("EMBER_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("EMBER_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile, apiKey, pepper string) error {
	raw, err := os.ReadFile(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog file")
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return errors.Wrap(err, "parse catalog file")
	}

	slog.Info("connecting to database")
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// The catalog tables are independent; load them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return seedCategories(gctx, pool, seed.Categories) })
	g.Go(func() error { return seedMenu(gctx, pool, seed.MenuItems) })
	g.Go(func() error { return seedRooms(gctx, pool, seed.Rooms) })
	g.Go(func() error { return seedEventPlans(gctx, pool, seed.EventPlans) })
	if err := g.Wait(); err != nil {
		return err
	}

	if apiKey != "" {
		if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}

	slog.Info("catalog seeded",
		slog.Int("categories", len(seed.Categories)),
		slog.Int("menu_items", len(seed.MenuItems)),
		slog.Int("rooms", len(seed.Rooms)),
		slog.Int("event_plans", len(seed.EventPlans)))
	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool, cats []categoryJSON) error {
	const sql = `INSERT INTO categories (id, name, slug, type, description, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug,
			type = EXCLUDED.type, description = EXCLUDED.description,
			sort_order = EXCLUDED.sort_order`
	for _, c := range cats {
		if _, err := pool.Exec(ctx, sql,
			c.ID, c.Name, c.Slug, c.Type, c.Description, c.SortOrder,
		); err != nil {
			return errors.Wrapf(err, "seed category %s", c.ID)
		}
	}
	return nil
}

func seedMenu(ctx context.Context, pool *pgxpool.Pool, items []menuItemJSON) error {
	const sql = `INSERT INTO menu_items
		(id, name, description, price, category, image, is_best_selling, discount_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, category = EXCLUDED.category, image = EXCLUDED.image,
			is_best_selling = EXCLUDED.is_best_selling, discount_percentage = EXCLUDED.discount_percentage`
	for _, m := range items {
		if _, err := pool.Exec(ctx, sql,
			m.ID, m.Name, m.Description, m.Price, m.Category,
			m.Image, m.IsBestSelling, m.DiscountPercentage,
		); err != nil {
			return errors.Wrapf(err, "seed menu item %s", m.ID)
		}
	}
	return nil
}

func seedRooms(ctx context.Context, pool *pgxpool.Pool, rooms []roomJSON) error {
	const sql = `INSERT INTO rooms
		(id, name, description, price_per_night, capacity, category, amenities, image, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			price_per_night = EXCLUDED.price_per_night, capacity = EXCLUDED.capacity,
			category = EXCLUDED.category, amenities = EXCLUDED.amenities,
			image = EXCLUDED.image, available = EXCLUDED.available`
	for _, r := range rooms {
		if _, err := pool.Exec(ctx, sql,
			r.ID, r.Name, r.Description, r.PricePerNight, r.Capacity,
			r.Category, r.Amenities, r.Image, r.Available,
		); err != nil {
			return errors.Wrapf(err, "seed room %s", r.ID)
		}
	}
	return nil
}

func seedEventPlans(ctx context.Context, pool *pgxpool.Pool, plans []eventPlanJSON) error {
	const sql = `INSERT INTO event_plans (id, name, description, price, image)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, image = EXCLUDED.image`
	for _, p := range plans {
		if _, err := pool.Exec(ctx, sql, p.ID, p.Name, p.Description, p.Price, p.Image); err != nil {
			return errors.Wrapf(err, "seed event plan %s", p.ID)
		}
	}
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	hash := hex.EncodeToString(mac.Sum(nil))

	const sql = `INSERT INTO api_keys (key_hash, name, scopes)
		VALUES ($1, 'admin', ARRAY['*'])
		ON CONFLICT (key_hash) DO NOTHING`
	_, err := pool.Exec(ctx, sql, hash)
	return err
}
