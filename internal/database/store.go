package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropwatch/dropwatch/internal/models"
)

// ErrPersistence marks storage write failures. It is distinct from the
// other per-item failures because it can leave an item registered with
// no price record for the attempt.
var ErrPersistence = errors.New("persistence failure")

// Store owns the items, price_history and scrape_logs tables. Items
// are registered idempotently by URL; price history and scrape logs
// are append-only.
type Store struct {
	db     *DB
	logger *slog.Logger
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			brand TEXT,
			category TEXT,
			scrape_frequency TEXT NOT NULL DEFAULT 'daily',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			colorway_name TEXT,
			listed_price DOUBLE PRECISION,
			sale_price DOUBLE PRECISION,
			sizes_available JSONB,
			screenshot_url TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_item_date
			ON price_history (item_id, scraped_at)`,
		`CREATE TABLE IF NOT EXISTS scrape_logs (
			id TEXT PRIMARY KEY,
			item_id TEXT REFERENCES items(id) ON DELETE SET NULL,
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			success BOOLEAN NOT NULL,
			error_message TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return nil
}

// RegisterItemIfNew looks up or inserts an item keyed by URL. When the
// URL is already registered the existing item wins: its fields are not
// touched and its id is returned.
func (s *Store) RegisterItemIfNew(ctx context.Context, url, name, brand, category, frequency string) (string, error) {
	if frequency == "" {
		frequency = "daily"
	}

	id := uuid.New().String()
	err := s.db.Transaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO items (id, url, name, brand, category, scrape_frequency)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (url) DO NOTHING
		`, id, url, name, brand, category, frequency)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return tx.QueryRow(ctx, `SELECT id FROM items WHERE url = $1`, url).Scan(&id)
		}

		s.logger.Info("item registered", "id", id, "url", url)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to register item %s: %v", ErrPersistence, url, err)
	}

	return id, nil
}

// InsertPriceRecord appends one observation. Fails when itemID does not
// reference a live item.
func (s *Store) InsertPriceRecord(ctx context.Context, itemID string, product *models.Product, screenshotURL *string) (string, error) {
	sizes := product.SizesAvailable
	if sizes == nil {
		sizes = []string{}
	}
	sizesJSON, err := json.Marshal(sizes)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode sizes: %v", ErrPersistence, err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(ctx, `
		INSERT INTO price_history (id, item_id, colorway_name, listed_price, sale_price, sizes_available, screenshot_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, itemID, product.ColorwayName, product.ListedPrice, product.SalePrice, sizesJSON, screenshotURL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert price record for item %s: %v", ErrPersistence, itemID, err)
	}

	return id, nil
}

// LogScrape appends one attempt to the audit trail. itemID may be nil
// for failures that happened before the item's identity was known.
func (s *Store) LogScrape(ctx context.Context, itemID *string, success bool, errorMessage *string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(ctx, `
		INSERT INTO scrape_logs (id, item_id, success, error_message)
		VALUES ($1, $2, $3, $4)
	`, id, itemID, success, errorMessage)
	if err != nil {
		return "", fmt.Errorf("%w: failed to log scrape attempt: %v", ErrPersistence, err)
	}

	return id, nil
}

// GetItemByURL returns nil when the URL is not registered.
func (s *Store) GetItemByURL(ctx context.Context, url string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.QueryRow(ctx, `
		SELECT id, url, name, COALESCE(brand, ''), COALESCE(category, ''), scrape_frequency, created_at
		FROM items WHERE url = $1
	`, url).Scan(&item.ID, &item.URL, &item.Name, &item.Brand, &item.Category, &item.ScrapeFrequency, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by url: %w", err)
	}
	return item, nil
}

func (s *Store) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	item := &models.Item{}
	err := s.db.QueryRow(ctx, `
		SELECT id, url, name, COALESCE(brand, ''), COALESCE(category, ''), scrape_frequency, created_at
		FROM items WHERE id = $1
	`, id).Scan(&item.ID, &item.URL, &item.Name, &item.Brand, &item.Category, &item.ScrapeFrequency, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*models.Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, url, name, COALESCE(brand, ''), COALESCE(category, ''), scrape_frequency, created_at
		FROM items ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.URL, &item.Name, &item.Brand, &item.Category, &item.ScrapeFrequency, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItemHistory returns the newest price records for an item.
func (s *Store) GetItemHistory(ctx context.Context, itemID string, limit int) ([]*models.PriceRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, item_id, scraped_at, colorway_name, listed_price, sale_price, sizes_available, screenshot_url
		FROM price_history
		WHERE item_id = $1
		ORDER BY scraped_at DESC
		LIMIT $2
	`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get item history: %w", err)
	}
	defer rows.Close()

	records := []*models.PriceRecord{}
	for rows.Next() {
		record, err := scanPriceRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetLatestPrice returns the most recent observation, or nil when the
// item has none yet.
func (s *Store) GetLatestPrice(ctx context.Context, itemID string) (*models.PriceRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, item_id, scraped_at, colorway_name, listed_price, sale_price, sizes_available, screenshot_url
		FROM price_history
		WHERE item_id = $1
		ORDER BY scraped_at DESC
		LIMIT 1
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanPriceRecord(rows)
}

func scanPriceRecord(rows pgx.Rows) (*models.PriceRecord, error) {
	record := &models.PriceRecord{}
	var sizesJSON []byte
	if err := rows.Scan(&record.ID, &record.ItemID, &record.ScrapedAt, &record.ColorwayName,
		&record.ListedPrice, &record.SalePrice, &sizesJSON, &record.ScreenshotURL); err != nil {
		return nil, fmt.Errorf("failed to scan price record: %w", err)
	}

	record.SizesAvailable = []string{}
	if len(sizesJSON) > 0 {
		if err := json.Unmarshal(sizesJSON, &record.SizesAvailable); err != nil {
			return nil, fmt.Errorf("failed to decode sizes: %w", err)
		}
	}
	return record, nil
}

// GetScrapeLogs returns recent attempts, optionally filtered by item.
func (s *Store) GetScrapeLogs(ctx context.Context, itemID *string, limit int) ([]*models.ScrapeLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, item_id, scraped_at, success, error_message
		FROM scrape_logs
		ORDER BY scraped_at DESC
		LIMIT $1
	`
	args := []interface{}{limit}
	if itemID != nil {
		query = `
			SELECT id, item_id, scraped_at, success, error_message
			FROM scrape_logs
			WHERE item_id = $1
			ORDER BY scraped_at DESC
			LIMIT $2
		`
		args = []interface{}{*itemID, limit}
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get scrape logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.ScrapeLog{}
	for rows.Next() {
		log := &models.ScrapeLog{}
		if err := rows.Scan(&log.ID, &log.ItemID, &log.ScrapedAt, &log.Success, &log.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan scrape log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// SuccessRate reports the percentage of successful attempts over the
// last N days, optionally filtered by item. Zero when there are no
// attempts in the window.
func (s *Store) SuccessRate(ctx context.Context, itemID *string, days int) (float64, error) {
	if days <= 0 {
		days = 7
	}

	query := `
		SELECT COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM scrape_logs
		WHERE scraped_at >= now() - make_interval(days => $1)
	`
	args := []interface{}{days}
	if itemID != nil {
		query = `
			SELECT COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0), COUNT(*)
			FROM scrape_logs
			WHERE item_id = $1 AND scraped_at >= now() - make_interval(days => $2)
		`
		args = []interface{}{*itemID, days}
	}

	var successes, total int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&successes, &total); err != nil {
		return 0, fmt.Errorf("failed to compute success rate: %w", err)
	}

	if total == 0 {
		return 0, nil
	}
	return float64(successes) / float64(total) * 100, nil
}
