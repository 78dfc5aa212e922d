package models

import "time"

// RawListing is one entry of a search result page exactly as decoded from
// the page state. Shape varies by listing variant; nothing is guaranteed.
type RawListing map[string]any

// StatusType is the resolved listing status.
type StatusType string

const (
	StatusForRent StatusType = "FOR_RENT"
	StatusForSale StatusType = "FOR_SALE"
	StatusSold    StatusType = "SOLD"
)

// Listing is the flat, normalized record handed to the exporters.
// Field order is the export contract; do not reorder.
type Listing struct {
	Zpid              string     `json:"zpid" xml:"zpid"`
	ProviderListingID string     `json:"providerListingId" xml:"providerListingId"`
	StatusType        StatusType `json:"statusType" xml:"statusType"`
	StatusText        string     `json:"statusText" xml:"statusText"`
	ImageSource       string     `json:"imageSource" xml:"imageSource"`
	DetailURL         string     `json:"detailUrl" xml:"detailUrl"`

	Address        string `json:"address" xml:"address"`
	AddressStreet  string `json:"addressStreet" xml:"addressStreet"`
	AddressCity    string `json:"addressCity" xml:"addressCity"`
	AddressState   string `json:"addressState" xml:"addressState"`
	AddressZipcode string `json:"addressZipcode" xml:"addressZipcode"`

	// Latitude and Longitude are both nil or both set.
	Latitude  *float64 `json:"latitude" xml:"latitude"`
	Longitude *float64 `json:"longitude" xml:"longitude"`

	BuildingName       string `json:"buildingName" xml:"buildingName"`
	ContactPhoneNumber string `json:"contactPhoneNumber" xml:"contactPhoneNumber"`

	MinPrice   string `json:"minPrice" xml:"minPrice"`
	MaxPrice   string `json:"maxPrice" xml:"maxPrice"`
	UnitTypes  string `json:"unitTypes" xml:"unitTypes"`
	TotalUnits int    `json:"totalUnits" xml:"totalUnits"`

	PhotoURLs         []string `json:"photoUrls" xml:"photoUrls>item"`
	IsFeaturedListing bool     `json:"isFeaturedListing" xml:"isFeaturedListing"`
	BadgeText         string   `json:"badgeText" xml:"badgeText"`
}

// HasCoordinates reports whether the listing carries a resolved position.
func (l *Listing) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Coordinates is a validated latitude/longitude pair.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Classification is the variant decision made once per raw entry.
type Classification struct {
	Status      StatusType
	IsMultiUnit bool
}

// ExtractResult is the outcome of one extraction pass.
type ExtractResult struct {
	Listings []*Listing
	// Skipped counts raw entries that could not be normalized at all.
	Skipped int
}

// SearchQuery identifies a single city/listing-type/page request.
type SearchQuery struct {
	City        string
	ListingType string
	Page        int
	Language    string
}

// QueryResult is sent back from each worker; Index preserves query order.
type QueryResult struct {
	Query    SearchQuery
	Index    int
	Listings []*Listing
	Skipped  int
	Err      error
}

// ExportMetadata accompanies every export.
type ExportMetadata struct {
	RunID        string    `json:"runId" xml:"runId"`
	GeneratedAt  time.Time `json:"generatedAt" xml:"generatedAt"`
	CityCount    int       `json:"cityCount" xml:"cityCount"`
	ListingTypes []string  `json:"listingTypes" xml:"listingTypes>type"`
	RecordCount  int       `json:"recordCount" xml:"recordCount"`
	SkippedCount int       `json:"skippedCount" xml:"skippedCount"`
}

// InsightReport holds analytics computed over an extracted dataset.
type InsightReport struct {
	TotalListings     int
	ByStatus          map[StatusType]int
	MultiUnitListings int
	WithCoordinates   int
	Centroid          *Coordinates
	MaxSpreadKm       float64
	AveragePrice      float64
	MinPrice          float64
	MaxPrice          float64
	ListingsByCity    map[string]int
}
