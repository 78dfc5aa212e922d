package storage

import (
	"html/template"
	"io"
	"strconv"

	"zillow-scraper/models"
)

var htmlColumns = []string{
	"zpid", "statusType", "statusText", "address", "minPrice", "maxPrice",
	"latitude", "longitude", "detailUrl",
}

var htmlTemplate = template.Must(template.New("listings").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Zillow Listings Export</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    body { font-family: system-ui, -apple-system, "Segoe UI", sans-serif; margin: 1.5rem; color: #222; }
    h1 { font-size: 1.7rem; margin-bottom: 0.25rem; }
    h2 { font-size: 1rem; font-weight: 400; color: #555; margin-top: 0; }
    table { border-collapse: collapse; width: 100%; margin-top: 1rem; font-size: 0.9rem; }
    th, td { border: 1px solid #ddd; padding: 0.45rem 0.6rem; text-align: left; }
    th { background-color: #f5f5f5; font-weight: 600; }
    tr:nth-child(even) td { background-color: #fafafa; }
    a { color: #0066cc; text-decoration: none; }
  </style>
</head>
<body>
  <h1>Zillow Listings Export</h1>
  <h2>{{.Count}} listing(s)</h2>
  <table>
    <thead>
      <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
    </thead>
    <tbody>
{{- range .Rows}}
      <tr><td>{{.Zpid}}</td><td>{{.StatusType}}</td><td>{{.StatusText}}</td><td>{{.Address}}</td><td>{{.MinPrice}}</td><td>{{.MaxPrice}}</td><td>{{.Latitude}}</td><td>{{.Longitude}}</td><td>{{if .DetailURL}}<a href="{{.DetailURL}}">Link</a>{{end}}</td></tr>
{{- end}}
    </tbody>
  </table>
</body>
</html>
`))

type htmlRow struct {
	Zpid, StatusType, StatusText, Address string
	MinPrice, MaxPrice                    string
	Latitude, Longitude                   string
	DetailURL                             string
}

// EncodeHTML writes a standalone HTML table of the main listing fields.
func EncodeHTML(w io.Writer, listings []*models.Listing, meta models.ExportMetadata) error {
	rows := make([]htmlRow, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, htmlRow{
			Zpid:       l.Zpid,
			StatusType: string(l.StatusType),
			StatusText: l.StatusText,
			Address:    l.Address,
			MinPrice:   l.MinPrice,
			MaxPrice:   l.MaxPrice,
			Latitude:   formatCoord(l.Latitude),
			Longitude:  formatCoord(l.Longitude),
			DetailURL:  l.DetailURL,
		})
	}

	count := meta.RecordCount
	if count == 0 {
		count = len(listings)
	}
	return htmlTemplate.Execute(w, struct {
		Count   string
		Columns []string
		Rows    []htmlRow
	}{strconv.Itoa(count), htmlColumns, rows})
}
