package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"zillow-scraper/models"
	"zillow-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// Generate computes the report. Prices are parsed from the formatted
// minPrice of each listing; the listings themselves are not modified.
func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ByStatus:       make(map[models.StatusType]int),
		ListingsByCity: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var prices []float64
	for _, l := range listings {
		report.ByStatus[l.StatusType]++
		if l.BuildingName != "" || l.TotalUnits > 0 || l.UnitTypes != "" {
			report.MultiUnitListings++
		}
		if l.AddressCity != "" {
			report.ListingsByCity[l.AddressCity]++
		}
		if p, ok := ParsePrice(l.MinPrice); ok && p > 0 {
			prices = append(prices, p)
		}
	}

	if len(prices) > 0 {
		report.MinPrice, report.MaxPrice = prices[0], prices[0]
		var total float64
		for _, p := range prices {
			total += p
			if p < report.MinPrice {
				report.MinPrice = p
			}
			if p > report.MaxPrice {
				report.MaxPrice = p
			}
		}
		report.AveragePrice = round2(total / float64(len(prices)))
	}

	if c, n, ok := Centroid(listings); ok {
		report.Centroid = &c
		report.WithCoordinates = n
		for _, l := range listings {
			if !l.HasCoordinates() {
				continue
			}
			d := HaversineKm(c, models.Coordinates{Latitude: *l.Latitude, Longitude: *l.Longitude})
			if d > report.MaxSpreadKm {
				report.MaxSpreadKm = d
			}
		}
		report.MaxSpreadKm = round2(report.MaxSpreadKm)
	}

	return report
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)
	title := color.New(color.FgMagenta, color.Bold).SprintFunc()
	heading := color.New(color.FgYellow, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(s.out, "\n%s\n", title(sep))
	fmt.Fprintf(s.out, "%s\n", title("  LISTING INSIGHTS"))
	fmt.Fprintf(s.out, "%s\n\n", title(sep))

	fmt.Fprintf(s.out, "%s\n", heading("  Overview"))
	fmt.Fprintf(s.out, "  %s\n", thin)
	fmt.Fprintf(s.out, "  Total listings      : %s\n", bold(r.TotalListings))
	fmt.Fprintf(s.out, "  Multi-unit listings : %s\n", bold(r.MultiUnitListings))
	for _, st := range []models.StatusType{models.StatusForRent, models.StatusForSale, models.StatusSold} {
		fmt.Fprintf(s.out, "  %-19s : %s\n", st, bold(r.ByStatus[st]))
	}
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "%s\n", heading("  Price Statistics (listed minimum)"))
	fmt.Fprintf(s.out, "  %s\n", thin)
	if r.AveragePrice > 0 {
		fmt.Fprintf(s.out, "  Average price : $%.2f\n", r.AveragePrice)
		fmt.Fprintf(s.out, "  Minimum price : $%.2f\n", r.MinPrice)
		fmt.Fprintf(s.out, "  Maximum price : $%.2f\n", r.MaxPrice)
	} else {
		fmt.Fprintf(s.out, "  No price data available\n")
	}
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "%s\n", heading("  Geography"))
	fmt.Fprintf(s.out, "  %s\n", thin)
	if r.Centroid != nil {
		fmt.Fprintf(s.out, "  With coordinates : %d\n", r.WithCoordinates)
		fmt.Fprintf(s.out, "  Centroid         : (%.6f, %.6f)\n", r.Centroid.Latitude, r.Centroid.Longitude)
		fmt.Fprintf(s.out, "  Max spread       : %.2f km\n", r.MaxSpreadKm)
	} else {
		fmt.Fprintf(s.out, "  No coordinates available\n")
	}
	fmt.Fprintln(s.out)

	fmt.Fprintf(s.out, "%s\n", heading("  Listings by City"))
	fmt.Fprintf(s.out, "  %s\n", thin)
	if len(r.ListingsByCity) == 0 {
		fmt.Fprintf(s.out, "  No city data\n")
	} else {
		type cityCount struct {
			city  string
			count int
		}
		var cities []cityCount
		for city, cnt := range r.ListingsByCity {
			cities = append(cities, cityCount{city, cnt})
		}
		sort.Slice(cities, func(i, j int) bool {
			if cities[i].count == cities[j].count {
				return cities[i].city < cities[j].city
			}
			return cities[i].count > cities[j].count
		})
		for _, cc := range cities {
			bar := strings.Repeat("█", cc.count)
			fmt.Fprintf(s.out, "  %-30s %s (%d)\n", truncate(cc.city, 28), bar, cc.count)
		}
	}

	fmt.Fprintf(s.out, "\n%s\n\n", title(sep))
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
