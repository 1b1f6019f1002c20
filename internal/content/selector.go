package content

import (
	"regexp"
)

// DefaultMaxChars bounds the window sent to the extraction model.
const DefaultMaxChars = 20000

var (
	pricePattern   = regexp.MustCompile(`\$\s*\d+(?:\.\d{2})?`)
	headingPattern = regexp.MustCompile(`(?m)^#{1,2}\s+[A-Z].*$`)
)

// Select reduces a full rendered-page text dump to a bounded window
// that is likely to contain the product and price region. Deterministic
// for a given input and maxChars.
//
// Priority order: a window around the first substantial currency match,
// then a window anchored at the first top-level heading, then the
// middle of the document with the leading navigation chunk skipped.
func Select(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	// A price match anchors the product section. Look back 3000 chars
	// for the title and forward 15000 for sizes and variants; windows
	// clipped below 5000 chars sit too close to a document edge to be
	// trusted.
	for _, m := range pricePattern.FindAllStringIndex(text, -1) {
		start := m[0] - 3000
		if start < 0 {
			start = 0
		}
		end := m[0] + 15000
		if end > len(text) {
			end = len(text)
		}
		if end-start > 5000 {
			return text[start:end]
		}
	}

	// Markdown-style headers often carry the product title.
	if m := headingPattern.FindStringIndex(text); m != nil {
		start := m[0] - 1000
		if start < 0 {
			start = 0
		}
		end := start + maxChars
		if end > len(text) {
			end = len(text)
		}
		return text[start:end]
	}

	// The first fifth of a rendered page is almost always navigation.
	skip := len(text) / 5
	end := skip + maxChars
	if end > len(text) {
		end = len(text)
	}
	return text[skip:end]
}
