package storage

import (
	"encoding/json"
	"io"

	"zillow-scraper/models"
)

type jsonExport struct {
	Metadata models.ExportMetadata `json:"metadata"`
	Results  []*models.Listing     `json:"results"`
}

// EncodeJSON writes {"metadata": ..., "results": [...]}, indented.
func EncodeJSON(w io.Writer, listings []*models.Listing, meta models.ExportMetadata) error {
	if listings == nil {
		listings = []*models.Listing{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(jsonExport{Metadata: meta, Results: listings})
}
