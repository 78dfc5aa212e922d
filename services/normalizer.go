package services

import (
	"strings"

	"zillow-scraper/models"
)

// Extraction rules: a primary path first, alternates in order. Every rule
// defaults to the zero value of its field when all paths miss.
var (
	zpidPaths              = []string{"zpid", "hdpData.homeInfo.zpid", "id"}
	providerListingIDPaths = []string{"providerListingId", "hdpData.homeInfo.providerListingId"}
	statusTextPaths        = []string{"statusText", "statusType"}
	imageSourcePaths       = []string{"imgSrc", "hdpData.homeInfo.imgSrc"}
	detailURLPaths         = []string{"detailUrl", "detailUrlPath", "hdpData.homeInfo.detailUrl"}
	badgeTextPaths         = []string{"badgeText", "variableData.text"}
	featuredPaths          = []string{"isFeaturedListing", "hdpData.homeInfo.isFeatured"}

	streetPaths  = []string{"address.streetAddress", "addressStreet", "hdpData.homeInfo.streetAddress"}
	cityPaths    = []string{"address.city", "addressCity", "hdpData.homeInfo.city"}
	statePaths   = []string{"address.state", "addressState", "hdpData.homeInfo.state"}
	zipcodePaths = []string{"address.zipcode", "addressZipcode", "hdpData.homeInfo.zipcode"}

	minPricePaths = []string{"minPrice"}
	maxPricePaths = []string{"maxPrice"}
	pricePaths    = []string{"price", "hdpData.homeInfo.price", "unformattedPrice"}

	buildingNamePaths = []string{"buildingName", "hdpData.homeInfo.buildingName", "name"}
	phonePaths        = []string{"contactPhoneNumber", "hdpData.homeInfo.contactPhoneNumber"}
	totalUnitsPaths   = []string{"totalUnits", "hdpData.homeInfo.totalUnits"}

	// photoPaths hold either URL strings or objects with a "url" key.
	photoPaths = []string{"photoUrls", "carouselPhotos", "hdpData.homeInfo.photoUrls", "hdpData.homeInfo.photos"}
)

// Normalizer maps one raw entry onto the flat Listing schema. It holds no
// per-call state and is safe for concurrent use.
type Normalizer struct {
	baseURL string
}

// NewNormalizer returns a Normalizer. baseURL, when set, is prefixed to
// site-relative detail URLs.
func NewNormalizer(baseURL string) *Normalizer {
	return &Normalizer{baseURL: strings.TrimRight(baseURL, "/")}
}

// Normalize builds a Listing from raw using the classifier's decision.
// Coordinates are left nil; they belong to the geo resolver.
func (n *Normalizer) Normalize(raw models.RawListing, class models.Classification) *models.Listing {
	l := &models.Listing{
		Zpid:              firstString(raw, zpidPaths...),
		ProviderListingID: firstString(raw, providerListingIDPaths...),
		StatusType:        class.Status,
		StatusText:        normaliseText(firstString(raw, statusTextPaths...)),
		ImageSource:       firstString(raw, imageSourcePaths...),
		DetailURL:         n.absoluteURL(firstString(raw, detailURLPaths...)),
		PhotoURLs:         collectPhotos(raw),
		IsFeaturedListing: firstBool(raw, featuredPaths...),
		BadgeText:         normaliseText(firstString(raw, badgeTextPaths...)),
	}

	l.AddressStreet = normaliseText(firstString(raw, streetPaths...))
	l.AddressCity = normaliseText(firstString(raw, cityPaths...))
	l.AddressState = normaliseText(firstString(raw, statePaths...))
	l.AddressZipcode = normaliseText(firstString(raw, zipcodePaths...))
	if full, ok := raw["address"].(string); ok && strings.TrimSpace(full) != "" {
		l.Address = normaliseText(full)
	} else {
		l.Address = joinNonEmpty(", ", l.AddressStreet, l.AddressCity, l.AddressState, l.AddressZipcode)
	}

	var units []any
	if class.IsMultiUnit {
		units, _ = asSlice(raw["units"])
	}
	l.MinPrice, l.MaxPrice = priceRange(raw, units)

	if class.IsMultiUnit {
		l.BuildingName = normaliseText(firstString(raw, buildingNamePaths...))
		l.ContactPhoneNumber = firstString(raw, phonePaths...)
		l.UnitTypes = unitTypes(raw, units)
		if total, ok := firstInt(raw, totalUnitsPaths...); ok && total > 0 {
			l.TotalUnits = total
		} else {
			l.TotalUnits = len(units)
		}
	}

	return l
}

func (n *Normalizer) absoluteURL(u string) string {
	if n.baseURL != "" && strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		return n.baseURL + u
	}
	return u
}

// priceRange keeps prices as formatted by the source. Explicit min/max
// fields win, then the cheapest and dearest unit, then the listing price.
func priceRange(raw models.RawListing, units []any) (string, string) {
	minPrice := firstString(raw, minPricePaths...)
	maxPrice := firstString(raw, maxPricePaths...)

	if minPrice == "" || maxPrice == "" {
		lo, hi := unitPriceBounds(units)
		if minPrice == "" {
			minPrice = lo
		}
		if maxPrice == "" {
			maxPrice = hi
		}
	}

	if minPrice == "" || maxPrice == "" {
		price := firstString(raw, pricePaths...)
		if minPrice == "" {
			minPrice = price
		}
		if maxPrice == "" {
			maxPrice = price
		}
	}
	return minPrice, maxPrice
}

func unitPriceBounds(units []any) (string, string) {
	var lo, hi string
	var loVal, hiVal float64
	for _, u := range units {
		m, ok := asMap(u)
		if !ok {
			continue
		}
		s := firstString(m, "price")
		val, ok := ParsePrice(s)
		if !ok {
			continue
		}
		if lo == "" || val < loVal {
			lo, loVal = s, val
		}
		if hi == "" || val > hiVal {
			hi, hiVal = s, val
		}
	}
	return lo, hi
}

// unitTypes prefers the source's own summary and otherwise lists the
// distinct bedroom counts of the units, e.g. "Studio, 1 bd, 2 bd".
func unitTypes(raw models.RawListing, units []any) string {
	if v, ok := lookup(raw, "unitTypes"); ok {
		if s, ok := asString(v); ok {
			return normaliseText(s)
		}
		if items, ok := asSlice(v); ok {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if s, ok := asString(it); ok {
					parts = append(parts, normaliseText(s))
				}
			}
			return strings.Join(dedupe(parts), ", ")
		}
	}

	labels := make([]string, 0, len(units))
	for _, u := range units {
		m, ok := asMap(u)
		if !ok {
			continue
		}
		beds := firstString(m, "beds", "bedrooms")
		switch beds {
		case "":
			continue
		case "0":
			labels = append(labels, "Studio")
		default:
			labels = append(labels, beds+" bd")
		}
	}
	return strings.Join(dedupe(labels), ", ")
}

// collectPhotos gathers imgSrc followed by every gallery URL, first seen
// order, without duplicates. The result is never nil.
func collectPhotos(raw models.RawListing) []string {
	photos := make([]string, 0, 4)
	if s := firstString(raw, "imgSrc"); s != "" {
		photos = append(photos, s)
	}
	for _, p := range photoPaths {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		items, ok := asSlice(v)
		if !ok {
			continue
		}
		for _, it := range items {
			if s, ok := asString(it); ok {
				photos = append(photos, s)
				continue
			}
			if m, ok := asMap(it); ok {
				if s := firstString(m, "url"); s != "" {
					photos = append(photos, s)
				}
			}
		}
	}
	return dedupe(photos)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
