// Command catalog-ingest loads menu items from gzip-compressed JSONL feed
// exports. Feeds overlap (each nightly export repeats unchanged items), so a
// bloom filter screens out ids already ingested in this run before hitting
// the database.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/emberhall/commerce/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
	feedPattern   = "menufeed*.jsonl.gz"
)

// feedItem is one line of a menu feed export.
type feedItem struct {
	ID                 string
	Name               string
	Description        string
	Price              decimal.Decimal
	Category           string
	Image              string
	IsBestSelling      bool
	DiscountPercentage decimal.Decimal
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing menufeed*.jsonl.gz exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, feedPattern))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no %s files found in %s", feedPattern, dataDir)
	}
	// Duplicate ids across exports carry identical rows, so the dedup filter
	// only exists to avoid redundant upserts; which copy lands first is
	// irrelevant. Sort for stable log output.
	sort.Strings(files)

	slog.Info("ingesting menu feeds", slog.Int("files", len(files)))

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Readers decode feed lines concurrently; a single writer owns the bloom
	// filter and the database connection, so neither needs locking.
	items := make(chan feedItem, 1024)

	g, gctx := errgroup.WithContext(ctx)
	rg, rctx := errgroup.WithContext(gctx)
	for i, f := range files {
		rg.Go(readFeedFile(rctx, i, f, items))
	}
	g.Go(func() error {
		defer close(items)
		return rg.Wait()
	})
	g.Go(func() error {
		return writeItems(gctx, pool, items)
	})

	return g.Wait()
}

func readFeedFile(ctx context.Context, idx int, path string, out chan<- feedItem) func() error {
	return func() error {
		var count uint64

		if err := streamGzLines(ctx, path, func(line []byte) error {
			item, err := decodeFeedLine(line)
			if err != nil {
				return err
			}
			if item.ID == "" || item.Name == "" {
				return nil // skip malformed feed rows
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("read progress",
					slog.Int("file", idx+1),
					slog.Uint64("lines", count),
				)
			}

			select {
			case out <- item:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}); err != nil {
			return errors.Wrapf(err, "read feed file %d", idx+1)
		}

		slog.Info("feed file complete",
			slog.Int("file", idx+1),
			slog.String("path", path),
			slog.Uint64("total_lines", count),
		)
		return nil
	}
}

// streamGzLines opens a gzip-compressed file and calls fn for each line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// decodeFeedLine parses a single JSONL feed row.
func decodeFeedLine(line []byte) (feedItem, error) {
	var item feedItem
	d := jx.DecodeBytes(line)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			item.ID = v
			return err
		case "name":
			v, err := d.Str()
			item.Name = v
			return err
		case "description":
			v, err := d.Str()
			item.Description = v
			return err
		case "price":
			return decodeDecimal(d, &item.Price)
		case "category":
			v, err := d.Str()
			item.Category = v
			return err
		case "image":
			v, err := d.Str()
			item.Image = v
			return err
		case "is_best_selling":
			v, err := d.Bool()
			item.IsBestSelling = v
			return err
		case "discount_percentage":
			return decodeDecimal(d, &item.DiscountPercentage)
		default:
			return d.Skip()
		}
	}); err != nil {
		return feedItem{}, errors.Wrap(err, "decode feed line")
	}
	return item, nil
}

// decodeDecimal accepts both string and number encodings, which vary across
// feed exporters.
func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		*out = v
		return nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(n.String())
		if err != nil {
			return err
		}
		*out = v
		return nil
	default:
		return errors.Errorf("unexpected token %v for decimal", d.Next())
	}
}

// writeItems upserts feed items, skipping ids already seen during this run.
func writeItems(ctx context.Context, pool *pgxpool.Pool, items <-chan feedItem) error {
	const sql = `INSERT INTO menu_items
		(id, name, description, price, category, image, is_best_selling, discount_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
			price = EXCLUDED.price, category = EXCLUDED.category, image = EXCLUDED.image,
			is_best_selling = EXCLUDED.is_best_selling, discount_percentage = EXCLUDED.discount_percentage`

	seen := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	var written, skipped uint64
	for item := range items {
		if seen.TestString(item.ID) {
			skipped++
			continue
		}
		seen.AddString(item.ID)

		if _, err := pool.Exec(ctx, sql,
			item.ID, item.Name, item.Description, item.Price, item.Category,
			item.Image, item.IsBestSelling, item.DiscountPercentage,
		); err != nil {
			return errors.Wrapf(err, "upsert menu item %s", item.ID)
		}

		written++
		if written%progressEvery == 0 {
			slog.Info("write progress",
				slog.Uint64("written", written),
				slog.Uint64("skipped", skipped),
			)
		}
	}

	slog.Info("write complete",
		slog.Uint64("written", written),
		slog.Uint64("skipped", skipped),
	)
	return nil
}
