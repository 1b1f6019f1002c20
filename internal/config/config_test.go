package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeItemsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadItems(t *testing.T) {
	path := writeItemsFile(t, `
items:
  - url: https://www.abercrombie.com/shop/us/p/hoodie-12345
    scrape_frequency: hourly
  - url: https://shop.example.com/p/2
`)

	items, err := LoadItems(path)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://www.abercrombie.com/shop/us/p/hoodie-12345", items[0].URL)
	assert.Equal(t, "hourly", items[0].ScrapeFrequency)
	assert.Equal(t, "daily", items[1].ScrapeFrequency, "frequency should default to daily")
}

func TestLoadItemsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{
			name:     "bad scheme",
			contents: "items:\n  - url: ftp://example.com/p/1\n",
			wantErr:  "url must start with http:// or https://",
		},
		{
			name:     "missing url",
			contents: "items:\n  - scrape_frequency: daily\n",
			wantErr:  "url must start with",
		},
		{
			name:     "bad frequency",
			contents: "items:\n  - url: https://example.com/p/1\n    scrape_frequency: fortnightly\n",
			wantErr:  "scrape_frequency must be one of",
		},
		{
			name:     "empty items list",
			contents: "items: []\n",
			wantErr:  "must contain an 'items' list",
		},
		{
			name:     "no items key",
			contents: "tracked: []\n",
			wantErr:  "must contain an 'items' list",
		},
		{
			name:     "not yaml",
			contents: "{{{{",
			wantErr:  "failed to parse items config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeItemsFile(t, tt.contents)

			_, err := LoadItems(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadItemsMissingFile(t *testing.T) {
	_, err := LoadItems(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read items config")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, 0.1, cfg.LLM.Temperature)
	assert.Equal(t, 5, cfg.Scraper.ConcurrentLimit)
	assert.Equal(t, 20000, cfg.Scraper.MaxContentChars)
	assert.Equal(t, "config/items.yaml", cfg.Scraper.ItemsFile)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "stream:price_observations", cfg.Redis.Stream)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 60*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("SCRAPER_CONCURRENT_LIMIT", "3")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("BROWSER_TIMEOUT", "90s")
	t.Setenv("LLM_TEMPERATURE", "0.5")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Scraper.ConcurrentLimit)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 90*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 0.5, cfg.LLM.Temperature)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadIgnoresUnparseableEnv(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("BROWSER_TIMEOUT", "soon")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 60*time.Second, cfg.Browser.Timeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects zero concurrent limit", func(t *testing.T) {
		cfg := valid()
		cfg.Scraper.ConcurrentLimit = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCRAPER_CONCURRENT_LIMIT")
	})

	t.Run("rejects zero content chars", func(t *testing.T) {
		cfg := valid()
		cfg.Scraper.MaxContentChars = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCRAPER_MAX_CONTENT_CHARS")
	})

	t.Run("rejects zero max tokens", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.MaxTokens = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_MAX_TOKENS")
	})

	t.Run("rejects out of range temperature", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.Temperature = 2.5
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_TEMPERATURE")
	})
}
