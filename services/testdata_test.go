package services

import (
	"bytes"
	"encoding/json"
	"testing"

	"zillow-scraper/models"
)

// decodeEntries decodes a JSON array of listing entries the way the page
// parser does, with numbers kept as json.Number.
func decodeEntries(t *testing.T, src string) []models.RawListing {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()
	var entries []models.RawListing
	if err := dec.Decode(&entries); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return entries
}

const buildingEntry = `{
	"zpid": "33.050133--96.92441",
	"buildingId": "33.050133--96.92441",
	"statusType": "FOR_RENT",
	"statusText": "Apartment for rent",
	"imgSrc": "https://photos.example.com/a.jpg",
	"detailUrl": "/apartments/lewisville-tx/the-vue/5XjKHx/",
	"buildingName": "The Vue at Lakeside",
	"contactPhoneNumber": "(469) 555-0182",
	"address": "2650 Lakeside Pkwy, Lewisville, TX 75067",
	"addressStreet": "2650 Lakeside Pkwy",
	"addressCity": "Lewisville",
	"addressState": "TX",
	"addressZipcode": "75067",
	"latLong": {"latitude": 33.050133, "longitude": -96.92441},
	"units": [
		{"price": "$1,295+", "beds": "0"},
		{"price": "$1,610+", "beds": "1"},
		{"price": "$2,240+", "beds": "2"}
	],
	"carouselPhotos": [
		{"url": "https://photos.example.com/a.jpg"},
		{"url": "https://photos.example.com/b.jpg"}
	],
	"isFeaturedListing": true,
	"badgeText": "Special offer"
}`

const houseEntry = `{
	"zpid": "2056016566",
	"statusType": "FOR_SALE",
	"statusText": "House for sale",
	"price": "$489,000",
	"imgSrc": "https://photos.example.com/h.jpg",
	"detailUrl": "https://www.zillow.com/homedetails/2056016566_zpid/",
	"address": "1402 Oak Ln, Plano, TX 75023",
	"addressStreet": "1402 Oak Ln",
	"addressCity": "Plano",
	"addressState": "TX",
	"addressZipcode": "75023",
	"buildingName": "should not leak",
	"contactPhoneNumber": "should not leak",
	"hdpData": {"homeInfo": {"zpid": 2056016566, "latitude": 33.0342, "longitude": -96.7231, "homeStatus": "FOR_SALE"}}
}`
