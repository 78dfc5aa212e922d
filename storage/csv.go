package storage

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"zillow-scraper/models"
)

// EncodeCSV writes a header row in Columns order followed by one row per
// listing. photoUrls are joined with "|"; absent coordinates are empty.
func EncodeCSV(w io.Writer, listings []*models.Listing, _ models.ExportMetadata) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, l := range listings {
		if err := cw.Write(csvRow(l)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(l *models.Listing) []string {
	return []string{
		l.Zpid,
		l.ProviderListingID,
		string(l.StatusType),
		l.StatusText,
		l.ImageSource,
		l.DetailURL,
		l.Address,
		l.AddressStreet,
		l.AddressCity,
		l.AddressState,
		l.AddressZipcode,
		formatCoord(l.Latitude),
		formatCoord(l.Longitude),
		l.BuildingName,
		l.ContactPhoneNumber,
		l.MinPrice,
		l.MaxPrice,
		l.UnitTypes,
		strconv.Itoa(l.TotalUnits),
		strings.Join(l.PhotoURLs, "|"),
		strconv.FormatBool(l.IsFeaturedListing),
		l.BadgeText,
	}
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
