package services

import (
	"encoding/json"
	"reflect"
	"testing"

	"zillow-scraper/models"
)

func TestNormalizeBuilding(t *testing.T) {
	raw := decodeEntries(t, "["+buildingEntry+"]")[0]
	n := NewNormalizer("https://www.zillow.com")

	l := n.Normalize(raw, Classify(raw))

	if l.Zpid != "33.050133--96.92441" {
		t.Errorf("Zpid: got %q", l.Zpid)
	}
	if l.StatusType != models.StatusForRent {
		t.Errorf("StatusType: got %s", l.StatusType)
	}
	if l.BuildingName != "The Vue at Lakeside" {
		t.Errorf("BuildingName: got %q", l.BuildingName)
	}
	if l.ContactPhoneNumber != "(469) 555-0182" {
		t.Errorf("ContactPhoneNumber: got %q", l.ContactPhoneNumber)
	}
	if l.MinPrice != "$1,295+" || l.MaxPrice != "$2,240+" {
		t.Errorf("price range: got %q..%q", l.MinPrice, l.MaxPrice)
	}
	if l.UnitTypes != "Studio, 1 bd, 2 bd" {
		t.Errorf("UnitTypes: got %q", l.UnitTypes)
	}
	if l.TotalUnits != 3 {
		t.Errorf("TotalUnits: got %d, want 3", l.TotalUnits)
	}
	if l.DetailURL != "https://www.zillow.com/apartments/lewisville-tx/the-vue/5XjKHx/" {
		t.Errorf("DetailURL: got %q", l.DetailURL)
	}
	wantPhotos := []string{"https://photos.example.com/a.jpg", "https://photos.example.com/b.jpg"}
	if !reflect.DeepEqual(l.PhotoURLs, wantPhotos) {
		t.Errorf("PhotoURLs: got %v, want %v", l.PhotoURLs, wantPhotos)
	}
	if !l.IsFeaturedListing || l.BadgeText != "Special offer" {
		t.Errorf("promo flags: featured=%v badge=%q", l.IsFeaturedListing, l.BadgeText)
	}
	if l.Address != "2650 Lakeside Pkwy, Lewisville, TX 75067" {
		t.Errorf("Address: got %q", l.Address)
	}
	if l.Latitude != nil || l.Longitude != nil {
		t.Error("Normalize must leave coordinates to the geo resolver")
	}
}

func TestNormalizeSingleUnitIgnoresBuildingFields(t *testing.T) {
	raw := decodeEntries(t, "["+houseEntry+"]")[0]
	// Stray unit data without a unit marker the classifier looks at.
	raw["name"] = "Stray name"

	l := NewNormalizer("").Normalize(raw, Classify(raw))

	if l.BuildingName != "" || l.ContactPhoneNumber != "" || l.UnitTypes != "" || l.TotalUnits != 0 {
		t.Errorf("multi-unit fields leaked: name=%q phone=%q types=%q total=%d",
			l.BuildingName, l.ContactPhoneNumber, l.UnitTypes, l.TotalUnits)
	}
	if l.MinPrice != "$489,000" || l.MaxPrice != "$489,000" {
		t.Errorf("price: got %q..%q", l.MinPrice, l.MaxPrice)
	}
}

func TestNormalizeForcesMultiUnitFieldsEmptyWhenClassifiedSingle(t *testing.T) {
	raw := decodeEntries(t, "["+buildingEntry+"]")[0]

	l := NewNormalizer("").Normalize(raw, models.Classification{Status: models.StatusForRent, IsMultiUnit: false})

	if l.BuildingName != "" || l.ContactPhoneNumber != "" || l.UnitTypes != "" || l.TotalUnits != 0 {
		t.Errorf("multi-unit fields populated for single listing: %+v", l)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	raw := models.RawListing{"zpid": "1"}

	l := NewNormalizer("").Normalize(raw, Classify(raw))

	strs := map[string]string{
		"providerListingId": l.ProviderListingID,
		"statusText":        l.StatusText,
		"imageSource":       l.ImageSource,
		"detailUrl":         l.DetailURL,
		"address":           l.Address,
		"addressStreet":     l.AddressStreet,
		"addressCity":       l.AddressCity,
		"addressState":      l.AddressState,
		"addressZipcode":    l.AddressZipcode,
		"minPrice":          l.MinPrice,
		"maxPrice":          l.MaxPrice,
		"badgeText":         l.BadgeText,
	}
	for field, v := range strs {
		if v != "" {
			t.Errorf("%s: got %q, want empty", field, v)
		}
	}
	if l.PhotoURLs == nil || len(l.PhotoURLs) != 0 {
		t.Errorf("PhotoURLs: got %#v, want empty non-nil", l.PhotoURLs)
	}
	if l.IsFeaturedListing {
		t.Error("IsFeaturedListing should default to false")
	}
	if l.StatusType != FallbackStatus {
		t.Errorf("StatusType: got %s", l.StatusType)
	}
}

func TestNormalizeNestedAddressAndFallbacks(t *testing.T) {
	raw := models.RawListing{
		"zpid": 123456,
		"address": map[string]any{
			"streetAddress": " 10 Main  St ",
			"city":          "Austin",
			"state":         "TX",
			"zipcode":       "78701",
		},
		"detailUrlPath":     "/homedetails/123456_zpid/",
		"isFeaturedListing": "not-a-bool",
		"variableData":      map[string]any{"text": "3 days on Zillow"},
		"hdpData": map[string]any{"homeInfo": map[string]any{
			"price":             json.Number("350000"),
			"providerListingId": "PL-9",
			"photos":            []any{map[string]any{"url": "https://p/1.jpg"}, map[string]any{"nourl": true}, "https://p/2.jpg"},
		}},
	}

	l := NewNormalizer("https://www.zillow.com/").Normalize(raw, Classify(raw))

	if l.Zpid != "123456" {
		t.Errorf("Zpid: got %q", l.Zpid)
	}
	if l.Address != "10 Main St, Austin, TX, 78701" {
		t.Errorf("Address: got %q", l.Address)
	}
	if l.DetailURL != "https://www.zillow.com/homedetails/123456_zpid/" {
		t.Errorf("DetailURL: got %q", l.DetailURL)
	}
	if l.IsFeaturedListing {
		t.Error("malformed bool should fall back to false")
	}
	if l.BadgeText != "3 days on Zillow" {
		t.Errorf("BadgeText: got %q", l.BadgeText)
	}
	if l.MinPrice != "350000" {
		t.Errorf("MinPrice: got %q", l.MinPrice)
	}
	if l.ProviderListingID != "PL-9" {
		t.Errorf("ProviderListingID: got %q", l.ProviderListingID)
	}
	if !reflect.DeepEqual(l.PhotoURLs, []string{"https://p/1.jpg", "https://p/2.jpg"}) {
		t.Errorf("PhotoURLs: got %v", l.PhotoURLs)
	}
}

func TestNormalizeTotalUnitsDefensive(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawListing
		want int
	}{
		{"numeric string", models.RawListing{"totalUnits": "1,204"}, 1204},
		{"malformed string", models.RawListing{"totalUnits": "lots"}, 0},
		{"fractional", models.RawListing{"totalUnits": 2.5}, 0},
		{"falls back to unit count", models.RawListing{"totalUnits": "?", "units": []any{map[string]any{}, map[string]any{}}}, 2},
		{"unit types as list", models.RawListing{"unitTypes": []any{"1 bd", "2 bd", "1 bd"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewNormalizer("").Normalize(tt.raw, Classify(tt.raw))
			if l.TotalUnits != tt.want {
				t.Errorf("TotalUnits: got %d, want %d", l.TotalUnits, tt.want)
			}
		})
	}
}

func TestNormalizeUnitTypesList(t *testing.T) {
	raw := models.RawListing{"unitTypes": []any{"1 bd", "2 bd", "1 bd"}}
	l := NewNormalizer("").Normalize(raw, Classify(raw))
	if l.UnitTypes != "1 bd, 2 bd" {
		t.Errorf("UnitTypes: got %q", l.UnitTypes)
	}
}
