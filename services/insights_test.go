package services

import (
	"bytes"
	"strings"
	"testing"

	"zillow-scraper/models"
	"zillow-scraper/utils"
)

func ptr(f float64) *float64 { return &f }

func sampleListings() []*models.Listing {
	return []*models.Listing{
		{Zpid: "1", StatusType: models.StatusForRent, MinPrice: "$1,295+", AddressCity: "Plano", BuildingName: "The Vue", TotalUnits: 3,
			Latitude: ptr(33.0), Longitude: ptr(-96.0)},
		{Zpid: "2", StatusType: models.StatusForRent, MinPrice: "$2,105/mo", AddressCity: "Plano",
			Latitude: ptr(34.0), Longitude: ptr(-97.0)},
		{Zpid: "3", StatusType: models.StatusForSale, MinPrice: "$489,000", AddressCity: "Dallas"},
		{Zpid: "4", StatusType: models.StatusSold, MinPrice: "", AddressCity: ""},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 4 {
		t.Errorf("TotalListings: got %d, want 4", r.TotalListings)
	}
	if r.ByStatus[models.StatusForRent] != 2 || r.ByStatus[models.StatusForSale] != 1 || r.ByStatus[models.StatusSold] != 1 {
		t.Errorf("ByStatus: got %v", r.ByStatus)
	}
	if r.MultiUnitListings != 1 {
		t.Errorf("MultiUnitListings: got %d, want 1", r.MultiUnitListings)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.MinPrice != 1295 {
		t.Errorf("MinPrice: got %.2f, want 1295", r.MinPrice)
	}
	if r.MaxPrice != 489000 {
		t.Errorf("MaxPrice: got %.2f, want 489000", r.MaxPrice)
	}
	if r.AveragePrice != 164133.33 {
		t.Errorf("AveragePrice: got %.2f, want 164133.33", r.AveragePrice)
	}
}

func TestInsightGeography(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.Centroid == nil {
		t.Fatal("Centroid should not be nil")
	}
	if r.Centroid.Latitude != 33.5 || r.Centroid.Longitude != -96.5 {
		t.Errorf("Centroid: got %+v", r.Centroid)
	}
	if r.WithCoordinates != 2 {
		t.Errorf("WithCoordinates: got %d, want 2", r.WithCoordinates)
	}
	if r.MaxSpreadKm <= 0 {
		t.Errorf("MaxSpreadKm: got %.2f, want > 0", r.MaxSpreadKm)
	}
}

func TestInsightCityGrouping(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(sampleListings())
	if r.ListingsByCity["Plano"] != 2 || r.ListingsByCity["Dallas"] != 1 {
		t.Errorf("ListingsByCity: got %v", r.ListingsByCity)
	}
	if _, ok := r.ListingsByCity[""]; ok {
		t.Error("empty city should not be counted")
	}
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(utils.NewLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 || r.Centroid != nil {
		t.Errorf("expected empty report, got %+v", r)
	}
}

func TestInsightPrint(t *testing.T) {
	var buf bytes.Buffer
	svc := NewInsightService(utils.NewLogger())
	svc.out = &buf

	svc.Print(svc.Generate(sampleListings()))

	for _, want := range []string{"LISTING INSIGHTS", "Plano", "Centroid", "FOR_RENT"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}
