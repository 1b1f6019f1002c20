package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dropwatch/dropwatch/internal/models"
)

// ErrMalformedResponse is returned when no JSON object can be recovered
// from the model's output.
var ErrMalformedResponse = errors.New("could not parse extraction response as JSON")

var (
	fenceOpen  = regexp.MustCompile("```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("```\\s*$")
	priceClean = regexp.MustCompile(`[$€£¥,\s]`)
)

// BaseStrategy carries the response parsing and normalization shared by
// all site strategies. Site types embed it and supply the rest.
type BaseStrategy struct{}

// ParseResponse recovers a JSON object from raw model output and
// normalizes it into a Product. Models wrap output in code fences or
// prose often enough that both are stripped before giving up.
func (BaseStrategy) ParseResponse(raw string) (*models.Product, error) {
	cleaned := fenceOpen.ReplaceAllString(raw, "")
	cleaned = fenceClose.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		// Fall back to the widest {...} span in the text.
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(cleaned, 200))
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &fields); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, truncate(cleaned, 200))
		}
	}

	return normalize(fields), nil
}

func normalize(fields map[string]any) *models.Product {
	p := &models.Product{
		Name:           stringField(fields, "name"),
		Brand:          stringField(fields, "brand"),
		Category:       stringField(fields, "category"),
		ListedPrice:    priceField(fields["listed_price"]),
		SalePrice:      priceField(fields["sale_price"]),
		SizesAvailable: sizeList(fields["sizes_available"]),
	}

	if s := stringField(fields, "colorway_name"); s != "" {
		p.ColorwayName = &s
	}

	return p
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// priceField accepts bare numbers and price strings. Invalid content
// degrades to nil instead of failing the whole record.
func priceField(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		return ParsePrice(t)
	default:
		return nil
	}
}

// ParsePrice reduces a price string to a decimal. Leading currency
// symbols, thousands separators and whitespace are stripped; anything
// that does not reduce to a valid number yields nil.
func ParsePrice(s string) *float64 {
	if s == "" {
		return nil
	}

	cleaned := priceClean.ReplaceAllString(s, "")
	if cleaned == "" {
		return nil
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// sizeList coerces the sizes field to a deduplicated, order-preserving
// list. A scalar becomes a single-element list, anything empty or
// missing becomes [].
func sizeList(v any) []string {
	out := []string{}
	seen := make(map[string]bool)

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				add(s)
			} else {
				add(fmt.Sprintf("%v", e))
			}
		}
	case string:
		add(t)
	case nil, bool:
		// missing or falsy stays empty
	default:
		add(fmt.Sprintf("%v", t))
	}

	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
