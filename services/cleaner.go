package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// priceRegexp captures the first numeric amount in a formatted price
	priceRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// thousandsRegexp matches the "K"/"M" shorthand used on map pins
	thousandsRegexp = regexp.MustCompile(`(?i)^\s*\D*(\d+(?:\.\d+)?)\s*([km])\b`)
)

// ParsePrice extracts a numeric amount from a formatted price such as
// "$1,295+/mo", "C$2.1M" or "$850K". ok is false when there is no number.
func ParsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if m := thousandsRegexp.FindStringSubmatch(raw); len(m) == 3 {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			switch strings.ToLower(m[2]) {
			case "k":
				return n * 1_000, true
			case "m":
				return n * 1_000_000, true
			}
		}
	}

	match := priceRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// joinNonEmpty joins the non-blank parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
