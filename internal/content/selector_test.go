package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectPriceWindow(t *testing.T) {
	// Price buried deep in a long document: the window must keep the
	// region around it.
	text := strings.Repeat("a", 10000) + "$49.99" + strings.Repeat("b", 10000)

	window := Select(text, DefaultMaxChars)

	assert.Greater(t, len(window), 5000)
	assert.Contains(t, window, "$49.99")
	// Look-back bound: 3000 chars before the match.
	assert.Equal(t, text[7000:], window)
}

func TestSelectPriceWindowClippedAtEdges(t *testing.T) {
	// A price near the start of a short document still yields the
	// window as long as enough content follows.
	text := "$12.34 " + strings.Repeat("product details ", 500)

	window := Select(text, DefaultMaxChars)

	assert.Greater(t, len(window), 5000)
	assert.Contains(t, window, "$12.34")
}

func TestSelectRejectsDegeneratePriceWindow(t *testing.T) {
	// Too little content around the price: the price window is
	// rejected and the fallback kicks in.
	text := "$9.99 short page"

	window := Select(text, DefaultMaxChars)

	assert.NotContains(t, window, "$9.99")
}

func TestSelectHeadingFallback(t *testing.T) {
	filler := strings.Repeat("lorem ipsum dolor sit amet ", 300)
	text := filler + "\n## Essential Popover Hoodie\nsizes and details\n" + filler

	window := Select(text, DefaultMaxChars)

	assert.Contains(t, window, "## Essential Popover Hoodie")
	assert.LessOrEqual(t, len(window), DefaultMaxChars)
}

func TestSelectBoilerplateSkipFallback(t *testing.T) {
	// No price, no heading: skip the leading fifth of the document.
	text := strings.Repeat("nav ", 2500) + strings.Repeat("body ", 2500)

	window := Select(text, 4000)

	assert.Len(t, window, 4000)
	assert.Equal(t, text[len(text)/5:len(text)/5+4000], window)
}

func TestSelectShortDocument(t *testing.T) {
	text := "tiny page with no product markers"

	window := Select(text, DefaultMaxChars)

	// Skips the first fifth, returns the rest.
	assert.Equal(t, text[len(text)/5:], window)
}

func TestSelectDeterministic(t *testing.T) {
	text := strings.Repeat("x", 9000) + "$15.00" + strings.Repeat("y", 12000)

	first := Select(text, DefaultMaxChars)
	second := Select(text, DefaultMaxChars)

	assert.Equal(t, first, second)
}

func TestSelectZeroMaxCharsUsesDefault(t *testing.T) {
	text := strings.Repeat("z ", 15000)

	window := Select(text, 0)

	assert.LessOrEqual(t, len(window), DefaultMaxChars)
	assert.NotEmpty(t, window)
}
