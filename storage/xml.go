package storage

import (
	"encoding/xml"
	"html"
	"io"
	"strconv"
	"time"

	"zillow-scraper/models"
)

/*
<zillowListings>
  <metadata>
    <runId>...</runId>
    <recordCount>2</recordCount>
  </metadata>
  <results>
    <listing>
      <zpid>...</zpid>
      <photoUrls><item>...</item></photoUrls>
    </listing>
  </results>
</zillowListings>
*/

type xmlExport struct {
	XMLName  xml.Name              `xml:"zillowListings"`
	Metadata models.ExportMetadata `xml:"metadata"`
	Results  []*models.Listing     `xml:"results>listing"`
}

// EncodeXML writes the listing set as an XML document. Absent coordinates
// are omitted rather than written as zero.
func EncodeXML(w io.Writer, listings []*models.Listing, meta models.ExportMetadata) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xmlExport{Metadata: meta, Results: listings}); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Description   string    `xml:"description"`
	Link          string    `xml:"link"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Description rssText `xml:"description"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssText struct {
	Value string `xml:",cdata"`
}

// EncodeRSS writes an RSS 2.0 feed with one item per listing.
func EncodeRSS(w io.Writer, listings []*models.Listing, meta models.ExportMetadata) error {
	generated := meta.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	stamp := generated.UTC().Format(time.RFC1123Z)

	doc := rssDocument{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "Zillow Listings Export (" + strconv.Itoa(len(listings)) + " results)",
			Description:   "Zillow search results export.",
			Link:          "https://www.zillow.com",
			LastBuildDate: stamp,
			Items:         make([]rssItem, 0, len(listings)),
		},
	}

	for _, l := range listings {
		status := firstNonEmpty(l.StatusText, string(l.StatusType), "Listing")
		guid := firstNonEmpty(l.Zpid, l.DetailURL)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:   status + " - " + l.Address,
			Link:    l.DetailURL,
			GUID:    rssGUID{IsPermaLink: false, Value: guid},
			PubDate: stamp,
			Description: rssText{Value: "Status: " + html.EscapeString(status) + "<br/>" +
				"Address: " + html.EscapeString(l.Address) + "<br/>" +
				"Price: " + html.EscapeString(l.MinPrice)},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
