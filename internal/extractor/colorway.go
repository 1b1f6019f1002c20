package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ColorwayFromHTML pulls the selected colorway name out of raw page
// HTML, trying each selector in order. Used as a fallback when the
// model returns a null colorway. Returns nil when nothing matches.
func ColorwayFromHTML(html string, selectors []string) *string {
	if html == "" || len(selectors) == 0 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr("aria-label"); ok {
				if v = strings.TrimSpace(v); v != "" {
					found = v
					return false
				}
			}
			if t := strings.TrimSpace(s.Text()); t != "" {
				found = t
				return false
			}
			return true
		})
		if found != "" {
			return &found
		}
	}

	return nil
}
