package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ItemConfig declares one tracked product. Loaded from YAML, validated
// once at startup and immutable afterwards.
type ItemConfig struct {
	URL             string `yaml:"url"`
	ScrapeFrequency string `yaml:"scrape_frequency"`
}

type itemsFile struct {
	Items []ItemConfig `yaml:"items"`
}

var validFrequencies = map[string]bool{
	"hourly": true,
	"daily":  true,
	"weekly": true,
}

// LoadItems reads and validates the tracked-item list. Any invalid
// declaration is fatal: no scraping happens on a bad config.
func LoadItems(path string) ([]ItemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read items config: %w", err)
	}

	var file itemsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse items config: %w", err)
	}

	if len(file.Items) == 0 {
		return nil, fmt.Errorf("items config %s must contain an 'items' list", path)
	}

	for i := range file.Items {
		item := &file.Items[i]

		if !strings.HasPrefix(item.URL, "http://") && !strings.HasPrefix(item.URL, "https://") {
			return nil, fmt.Errorf("item %d: url must start with http:// or https://, got %q", i, item.URL)
		}

		if item.ScrapeFrequency == "" {
			item.ScrapeFrequency = "daily"
		}
		if !validFrequencies[item.ScrapeFrequency] {
			return nil, fmt.Errorf("item %d: scrape_frequency must be one of hourly, daily, weekly, got %q", i, item.ScrapeFrequency)
		}
	}

	return file.Items, nil
}
