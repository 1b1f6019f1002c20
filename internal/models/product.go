package models

import (
	"time"
)

// Product is the normalized output of one extraction attempt. Optional
// fields stay nil when the page (or the model) did not yield them.
type Product struct {
	Name           string   `json:"name"`
	Brand          string   `json:"brand,omitempty"`
	Category       string   `json:"category,omitempty"`
	ListedPrice    *float64 `json:"listed_price"`
	SalePrice      *float64 `json:"sale_price"`
	ColorwayName   *string  `json:"colorway_name"`
	SizesAvailable []string `json:"sizes_available"`
}

// Item is a tracked product. The URL is the natural key; fields are set
// once at registration and never updated by later scrapes.
type Item struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand,omitempty"`
	Category        string    `json:"category,omitempty"`
	ScrapeFrequency string    `json:"scrape_frequency"`
	CreatedAt       time.Time `json:"created_at"`
}

// PriceRecord is one time-stamped price observation. Rows are
// append-only; sale_price > listed_price is stored as observed.
type PriceRecord struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	ScrapedAt      time.Time `json:"scraped_at"`
	ColorwayName   *string   `json:"colorway_name"`
	ListedPrice    *float64  `json:"listed_price"`
	SalePrice      *float64  `json:"sale_price"`
	SizesAvailable []string  `json:"sizes_available"`
	ScreenshotURL  *string   `json:"screenshot_url,omitempty"`
}

// ScrapeLog is one entry in the append-only attempt audit trail.
// ItemID is nil when the failure happened before the item's identity
// was known.
type ScrapeLog struct {
	ID           string    `json:"id"`
	ItemID       *string   `json:"item_id"`
	ScrapedAt    time.Time `json:"scraped_at"`
	Success      bool      `json:"success"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}
