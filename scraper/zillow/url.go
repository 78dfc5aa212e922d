package zillow

import (
	"fmt"
	"strings"
)

// Search path segments per listing type.
const (
	pathForRent = "for_rent"
	pathForSale = "for_sale"
	pathSold    = "recently_sold"
)

// NormalizeListingType maps user-facing aliases onto a search path segment.
// ok is false for unknown values, which fall back to for_rent.
func NormalizeListingType(listingType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(listingType)) {
	case "for_rent", "for-rent", "rent":
		return pathForRent, true
	case "for_sale", "for-sale", "sale":
		return pathForSale, true
	case "sold", "recently_sold", "recently-sold":
		return pathSold, true
	}
	return pathForRent, false
}

// CitySlug turns "Dallas, TX" into "dallas-tx".
func CitySlug(city string) string {
	slug := strings.ToLower(strings.TrimSpace(city))
	slug = strings.ReplaceAll(slug, ",", "")
	return strings.Join(strings.Fields(slug), "-")
}

// BuildSearchURL returns the search results URL for one city, listing type
// and 1-based page.
func BuildSearchURL(baseURL, city, listingType string, page int) string {
	segment, _ := NormalizeListingType(listingType)
	u := fmt.Sprintf("%s/homes/%s/%s_rb/", strings.TrimRight(baseURL, "/"), segment, CitySlug(city))
	if page > 1 {
		u = fmt.Sprintf("%s%d_p/", u, page)
	}
	return u
}
