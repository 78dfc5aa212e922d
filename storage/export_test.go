package storage

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"zillow-scraper/models"
)

func ptr(f float64) *float64 { return &f }

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{
			Zpid:         "2056016566",
			StatusType:   models.StatusForRent,
			StatusText:   "Apartment for rent",
			DetailURL:    "https://www.zillow.com/apartments/the-lofts/5XjR9h/",
			Address:      "100 Main St, Austin, TX 78701",
			AddressCity:  "Austin",
			Latitude:     ptr(30.2672),
			Longitude:    ptr(-97.7431),
			BuildingName: "The Lofts",
			MinPrice:     "$1,200+",
			MaxPrice:     "$2,400",
			UnitTypes:    "Studio, 1 bd",
			TotalUnits:   2,
			PhotoURLs:    []string{"https://photos/a.jpg", "https://photos/b.jpg"},
		},
		{
			Zpid:       "29384756",
			StatusType: models.StatusForSale,
			StatusText: "House for sale",
			Address:    "7 Oak Ln, Austin, TX 78702",
			MinPrice:   "$450,000",
			MaxPrice:   "$450,000",
			PhotoURLs:  []string{},
		},
	}
}

func sampleMeta() models.ExportMetadata {
	return models.ExportMetadata{
		RunID:        "run-1",
		GeneratedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		CityCount:    1,
		ListingTypes: []string{"for_rent"},
		RecordCount:  2,
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, sampleListings(), sampleMeta()); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	var doc struct {
		Metadata map[string]any   `json:"metadata"`
		Results  []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Metadata["runId"] != "run-1" {
		t.Errorf("metadata.runId = %v", doc.Metadata["runId"])
	}
	if len(doc.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(doc.Results))
	}
	if doc.Results[0]["latitude"] != 30.2672 {
		t.Errorf("latitude = %v", doc.Results[0]["latitude"])
	}
	if v, ok := doc.Results[1]["latitude"]; !ok || v != nil {
		t.Errorf("missing coordinates should be null, got %v (present=%v)", v, ok)
	}
	if !strings.Contains(buf.String(), `"minPrice": "$1,200+"`) {
		t.Errorf("price string should be kept verbatim:\n%s", buf.String())
	}
}

func TestEncodeJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, nil, models.ExportMetadata{}); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("empty results should encode as [], got:\n%s", buf.String())
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, sampleListings(), sampleMeta()); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(Columns, ",") {
		t.Errorf("header = %v", records[0])
	}

	col := func(name string) int {
		for i, c := range Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("no column %q", name)
		return -1
	}

	first, second := records[1], records[2]
	if got := first[col("photoUrls")]; got != "https://photos/a.jpg|https://photos/b.jpg" {
		t.Errorf("photoUrls = %q", got)
	}
	if got := first[col("latitude")]; got != "30.2672" {
		t.Errorf("latitude = %q", got)
	}
	if got := second[col("latitude")]; got != "" {
		t.Errorf("missing latitude should be empty, got %q", got)
	}
	if got := second[col("statusType")]; got != "FOR_SALE" {
		t.Errorf("statusType = %q", got)
	}
}

func TestEncodeCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, nil, models.ExportMetadata{}); err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected a single header line, got %d", len(lines))
	}
}

func TestEncodeXML(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeXML(&buf, sampleListings(), sampleMeta()); err != nil {
		t.Fatalf("EncodeXML: %v", err)
	}

	var doc xmlExport
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid XML: %v\n%s", err, buf.String())
	}
	if doc.Metadata.RunID != "run-1" {
		t.Errorf("runId = %q", doc.Metadata.RunID)
	}
	if len(doc.Results) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(doc.Results))
	}
	if got := doc.Results[0].PhotoURLs; len(got) != 2 {
		t.Errorf("photoUrls = %v", got)
	}
	if doc.Results[1].Latitude != nil {
		t.Errorf("missing latitude should be omitted, got %v", *doc.Results[1].Latitude)
	}
	if !strings.Contains(buf.String(), "<zillowListings>") {
		t.Errorf("root element missing:\n%s", buf.String())
	}
}

func TestEncodeRSS(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeRSS(&buf, sampleListings(), sampleMeta()); err != nil {
		t.Fatalf("EncodeRSS: %v", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid RSS: %v", err)
	}
	if doc.Version != "2.0" {
		t.Errorf("version = %q", doc.Version)
	}
	if len(doc.Channel.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(doc.Channel.Items))
	}
	item := doc.Channel.Items[0]
	if item.GUID.Value != "2056016566" {
		t.Errorf("guid = %q", item.GUID.Value)
	}
	if item.Title != "Apartment for rent - 100 Main St, Austin, TX 78701" {
		t.Errorf("title = %q", item.Title)
	}
	if !strings.Contains(item.Description.Value, "$1,200+") {
		t.Errorf("description = %q", item.Description.Value)
	}
	if doc.Channel.LastBuildDate != "Fri, 01 Mar 2024 12:00:00 +0000" {
		t.Errorf("lastBuildDate = %q", doc.Channel.LastBuildDate)
	}
}

func TestEncodeRSSEscapesDescription(t *testing.T) {
	listings := sampleListings()
	listings[1].Address = "<script>alert(1)</script> & Co"

	var buf bytes.Buffer
	if err := EncodeRSS(&buf, listings, sampleMeta()); err != nil {
		t.Fatalf("EncodeRSS: %v", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid RSS: %v", err)
	}
	desc := doc.Channel.Items[1].Description.Value
	if strings.Contains(desc, "<script>") {
		t.Errorf("address must be HTML-escaped in the description: %q", desc)
	}
	if !strings.Contains(desc, "&lt;script&gt;alert(1)&lt;/script&gt; &amp; Co") {
		t.Errorf("description = %q", desc)
	}
	if !strings.Contains(desc, "<br/>") {
		t.Errorf("description markup should be kept: %q", desc)
	}
}

func TestEncodeHTML(t *testing.T) {
	listings := sampleListings()
	listings[1].Address = "<script>alert(1)</script>"

	var buf bytes.Buffer
	if err := EncodeHTML(&buf, listings, sampleMeta()); err != nil {
		t.Fatalf("EncodeHTML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<th>zpid</th>",
		"<td>2056016566</td>",
		"2 listing(s)",
		`href="https://www.zillow.com/apartments/the-lofts/5XjR9h/"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("address must be escaped")
	}
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"zpid": "2056016566"`},
		{"csv", "zpid,providerListingId"},
		{"xml", "<zillowListings>"},
		{"rss", `<rss version="2.0">`},
		{"html", "<table>"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			path := filepath.Join(dir, "nested", "out."+tt.format)
			w, err := NewWriter(tt.format, path, "")
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			if err := w.Write(sampleListings(), sampleMeta()); err != nil {
				t.Fatalf("Write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("%s output missing %q", tt.format, tt.want)
			}
		})
	}
}

func TestNewFileWriterRejectsUnknownFormat(t *testing.T) {
	if _, err := NewFileWriter("yaml", filepath.Join(t.TempDir(), "out.yaml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestBuildInsert(t *testing.T) {
	listings := sampleListings()
	query, args := buildInsert(listings, 50, "run-1")

	width := len(listingColumns)
	if len(args) != 2*width {
		t.Fatalf("expected %d args, got %d", 2*width, len(args))
	}
	if !strings.Contains(query, "ON CONFLICT (zpid) DO NOTHING") {
		t.Errorf("query = %s", query)
	}
	if !strings.Contains(query, "$"+strconv.Itoa(2*width)+")") {
		t.Errorf("last placeholder missing in %s", query)
	}

	// position column follows the batch offset
	if got := args[width-2]; got != 50 {
		t.Errorf("first position = %v, want 50", got)
	}
	if got := args[2*width-2]; got != 51 {
		t.Errorf("second position = %v, want 51", got)
	}
	if got := args[width+11].(sql.NullFloat64); got.Valid {
		t.Errorf("missing latitude should be NULL, got %v", got)
	}
	if got := args[11].(sql.NullFloat64); !got.Valid || got.Float64 != 30.2672 {
		t.Errorf("latitude arg = %v", got)
	}
}
