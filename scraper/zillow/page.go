package zillow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"zillow-scraper/models"
)

// ParseSearchPage pulls the listing entries out of a search result page.
// A page without recognisable state yields no entries and no error; only
// unreadable HTML is an error.
func ParseSearchPage(html string) ([]models.RawListing, error) {
	state, err := extractState(html)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return []models.RawListing{}, nil
	}
	return listResults(state), nil
}

// extractState returns the decoded page state, or nil when none is found.
func extractState(html string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if script := doc.Find(`script#__NEXT_DATA__`).First(); script.Length() > 0 {
		if state, err := decodeState(script.Text()); err == nil {
			return state, nil
		}
	}

	// Fallback: a state blob inlined elsewhere in the page.
	text := doc.Text()
	start := strings.Index(text, `{"props":`)
	if start < 0 || !strings.Contains(text[start:], `"searchResults"`) {
		return nil, nil
	}
	blob := balancedObject(text[start:])
	if blob == "" {
		return nil, nil
	}
	state, err := decodeState(blob)
	if err != nil {
		return nil, nil
	}
	return state, nil
}

func decodeState(src string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()
	var state map[string]any
	if err := dec.Decode(&state); err != nil {
		return nil, err
	}
	return state, nil
}

// balancedObject returns the leading JSON object of s, honouring strings
// and escapes, or "" if it never closes.
func balancedObject(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// listResults walks props.pageProps.(searchPageState|searchState).cat1.searchResults.listResults.
func listResults(state map[string]any) []models.RawListing {
	pageProps, _ := dig(state, "props", "pageProps")
	search, ok := dig(pageProps, "searchPageState")
	if !ok {
		search, _ = dig(pageProps, "searchState")
	}
	results, _ := dig(search, "cat1", "searchResults", "listResults")

	items, _ := results.([]any)
	entries := make([]models.RawListing, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			entries = append(entries, models.RawListing(m))
		} else {
			// Keep the slot so the extractor counts it as skipped.
			entries = append(entries, models.RawListing{})
		}
	}
	return entries
}

func dig(v any, keys ...string) (any, bool) {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		if v, ok = m[k]; !ok || v == nil {
			return nil, false
		}
	}
	return v, true
}
