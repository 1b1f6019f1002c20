package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dropwatch/dropwatch/internal/browser"
	"github.com/dropwatch/dropwatch/internal/config"
	"github.com/dropwatch/dropwatch/internal/content"
	"github.com/dropwatch/dropwatch/internal/events"
	"github.com/dropwatch/dropwatch/internal/extractor"
	"github.com/dropwatch/dropwatch/internal/models"
)

// DefaultConcurrentLimit is the permit count bounding in-flight
// pipelines.
const DefaultConcurrentLimit = 5

// Session is the fetch resource shared by every item in a batch.
type Session interface {
	Fetch(ctx context.Context, url string) (*browser.Page, error)
	Close() error
}

// SessionFactory opens the session a batch will share. The crawler
// closes it exactly once when the batch is done.
type SessionFactory func(ctx context.Context) (Session, error)

// ExtractionClient issues one structured-completion request per item.
type ExtractionClient interface {
	Extract(ctx context.Context, prompt, window string) (string, error)
}

// Store is the persistence surface the pipeline needs.
type Store interface {
	RegisterItemIfNew(ctx context.Context, url, name, brand, category, frequency string) (string, error)
	InsertPriceRecord(ctx context.Context, itemID string, product *models.Product, screenshotURL *string) (string, error)
	LogScrape(ctx context.Context, itemID *string, success bool, errorMessage *string) (string, error)
}

// Publisher emits best-effort events after a successful persist.
type Publisher interface {
	PublishPriceObserved(ctx context.Context, ev *events.PriceObserved) error
}

type Options struct {
	ConcurrentLimit int
	MaxContentChars int
}

// Crawler drives tracked items through the extraction pipeline:
// resolve strategy, fetch, select window, extract, normalize, persist.
type Crawler struct {
	registry  *extractor.Registry
	sessions  SessionFactory
	llm       ExtractionClient
	store     Store
	publisher Publisher // optional
	logger    *slog.Logger
	limit     int
	maxChars  int
}

func New(registry *extractor.Registry, sessions SessionFactory, llm ExtractionClient, store Store, publisher Publisher, logger *slog.Logger, opts Options) *Crawler {
	limit := opts.ConcurrentLimit
	if limit < 1 {
		limit = DefaultConcurrentLimit
	}
	maxChars := opts.MaxContentChars
	if maxChars < 1 {
		maxChars = content.DefaultMaxChars
	}

	return &Crawler{
		registry:  registry,
		sessions:  sessions,
		llm:       llm,
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "crawler"),
		limit:     limit,
		maxChars:  maxChars,
	}
}

// ItemResult is one entry of a batch result, at the same index as its
// input item.
type ItemResult struct {
	URL      string          `json:"url"`
	Success  bool            `json:"success"`
	ItemID   string          `json:"item_id,omitempty"`
	RecordID string          `json:"record_id,omitempty"`
	Product  *models.Product `json:"product,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type BatchResult struct {
	Results   []ItemResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// RunBatch runs every item through the pipeline. At most the permit
// count of pipelines is in flight at once; results land at the index of
// their input item regardless of completion order, and one item's
// failure never aborts its siblings. The fetch session is opened once
// for the whole batch and released on every exit path.
func (c *Crawler) RunBatch(ctx context.Context, items []config.ItemConfig) (*BatchResult, error) {
	session, err := c.sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open fetch session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			c.logger.Error("failed to close fetch session", "error", err)
		}
	}()

	results := make([]ItemResult, len(items))
	permits := make(chan struct{}, c.limit)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item config.ItemConfig) {
			defer wg.Done()
			permits <- struct{}{}
			defer func() { <-permits }()
			results[i] = c.scrapeItem(ctx, session, item)
		}(i, item)
	}
	wg.Wait()

	batch := &BatchResult{Results: results}
	for _, r := range results {
		if r.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	c.logger.Info("batch complete",
		"items", len(items),
		"succeeded", batch.Succeeded,
		"failed", batch.Failed)

	return batch, nil
}

func (c *Crawler) scrapeItem(ctx context.Context, session Session, item config.ItemConfig) ItemResult {
	log := c.logger.With("url", item.URL)

	strategy, err := c.registry.Resolve(item.URL)
	if err != nil {
		return c.fail(ctx, item.URL, nil, err)
	}
	log.Info("scraping", "strategy", strategy.Name())

	page, err := session.Fetch(ctx, item.URL)
	if err != nil {
		return c.fail(ctx, item.URL, nil, err)
	}

	window := content.Select(page.Text, c.maxChars)

	raw, err := c.llm.Extract(ctx, strategy.Prompt(), window)
	if err != nil {
		return c.fail(ctx, item.URL, nil, err)
	}

	product, err := strategy.ParseResponse(raw)
	if err != nil {
		return c.fail(ctx, item.URL, nil, err)
	}

	if product.ColorwayName == nil {
		product.ColorwayName = extractor.ColorwayFromHTML(page.HTML, strategy.ColorwaySelectors())
	}

	name := product.Name
	if name == "" {
		name = "Unknown"
	}
	brand := product.Brand
	if brand == "" {
		brand = "Unknown"
	}
	category := product.Category
	if category == "" {
		category = "General"
	}

	itemID, err := c.store.RegisterItemIfNew(ctx, item.URL, name, brand, category, item.ScrapeFrequency)
	if err != nil {
		return c.fail(ctx, item.URL, nil, err)
	}

	recordID, err := c.store.InsertPriceRecord(ctx, itemID, product, nil)
	if err != nil {
		return c.fail(ctx, item.URL, &itemID, err)
	}

	if _, err := c.store.LogScrape(ctx, &itemID, true, nil); err != nil {
		log.Error("failed to log scrape attempt", "error", err)
	}

	if c.publisher != nil {
		ev := &events.PriceObserved{
			ItemID:         itemID,
			URL:            item.URL,
			Name:           name,
			ListedPrice:    product.ListedPrice,
			SalePrice:      product.SalePrice,
			ColorwayName:   product.ColorwayName,
			SizesAvailable: product.SizesAvailable,
		}
		if err := c.publisher.PublishPriceObserved(ctx, ev); err != nil {
			log.Error("failed to publish price event", "error", err)
		}
	}

	log.Info("scraped", "item_id", itemID, "record_id", recordID, "name", name)

	return ItemResult{
		URL:      item.URL,
		Success:  true,
		ItemID:   itemID,
		RecordID: recordID,
		Product:  product,
	}
}

// fail converts a per-item error into a failed batch entry and
// best-effort logs the attempt. The error message is preserved
// verbatim for diagnostics.
func (c *Crawler) fail(ctx context.Context, url string, itemID *string, cause error) ItemResult {
	c.logger.Error("scrape failed", "url", url, "error", cause)

	msg := cause.Error()
	if _, err := c.store.LogScrape(ctx, itemID, false, &msg); err != nil {
		c.logger.Error("failed to log scrape attempt", "url", url, "error", err)
	}

	result := ItemResult{URL: url, Error: msg}
	if itemID != nil {
		result.ItemID = *itemID
	}
	return result
}
