package storage

import (
	"io"

	"zillow-scraper/models"
)

// ListingWriter is the interface any export backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing, meta models.ExportMetadata) error
	Close() error
}

// EncodeFunc renders a listing set onto w in one export format.
type EncodeFunc func(w io.Writer, listings []*models.Listing, meta models.ExportMetadata) error

// Columns is the flat field order every tabular export follows.
var Columns = []string{
	"zpid",
	"providerListingId",
	"statusType",
	"statusText",
	"imageSource",
	"detailUrl",
	"address",
	"addressStreet",
	"addressCity",
	"addressState",
	"addressZipcode",
	"latitude",
	"longitude",
	"buildingName",
	"contactPhoneNumber",
	"minPrice",
	"maxPrice",
	"unitTypes",
	"totalUnits",
	"photoUrls",
	"isFeaturedListing",
	"badgeText",
}
