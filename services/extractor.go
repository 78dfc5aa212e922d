package services

import (
	"zillow-scraper/models"
	"zillow-scraper/utils"
)

// DefaultMaxRecords mirrors the provider's per-query result limit.
const DefaultMaxRecords = 41

// ExtractOptions configures an Extractor.
type ExtractOptions struct {
	// MaxRecords caps the output length. Zero selects DefaultMaxRecords.
	MaxRecords int
	// BaseURL is prefixed to site-relative detail URLs.
	BaseURL string
}

// Extractor turns one raw result page into an ordered listing set.
// It keeps no state between calls and may be shared across goroutines.
type Extractor struct {
	maxRecords int
	normalizer *Normalizer
	logger     *utils.Logger
}

// NewExtractor validates opts and returns an Extractor. logger may be nil.
func NewExtractor(opts ExtractOptions, logger *utils.Logger) (*Extractor, error) {
	if opts.MaxRecords < 0 {
		return nil, &ConfigError{Field: "maxRecords", Value: opts.MaxRecords, Reason: "must not be negative"}
	}
	maxRecords := opts.MaxRecords
	if maxRecords == 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Extractor{
		maxRecords: maxRecords,
		normalizer: NewNormalizer(opts.BaseURL),
		logger:     logger,
	}, nil
}

// MaxRecords returns the effective cap.
func (e *Extractor) MaxRecords() int { return e.maxRecords }

// Extract classifies, geo-resolves and normalizes entries in source order
// and stops at the cap. Unusable entries are skipped and counted. An empty
// page yields an empty, non-nil result.
func (e *Extractor) Extract(entries []models.RawListing) *models.ExtractResult {
	result := &models.ExtractResult{Listings: make([]*models.Listing, 0, min(len(entries), e.maxRecords))}
	seen := make(map[string]struct{}, len(entries))

	for i, raw := range entries {
		if len(result.Listings) >= e.maxRecords {
			break
		}

		listing, err := e.extractEntry(i, raw, seen)
		if err != nil {
			result.Skipped++
			e.debug("[extractor] Skipping %v", err)
			continue
		}
		result.Listings = append(result.Listings, listing)
	}

	e.debug("[extractor] Extracted %d listings from %d entries (skipped %d, cap %d)",
		len(result.Listings), len(entries), result.Skipped, e.maxRecords)
	return result
}

func (e *Extractor) extractEntry(index int, raw models.RawListing, seen map[string]struct{}) (*models.Listing, error) {
	if len(raw) == 0 {
		return nil, &EntryError{Index: index, Reason: "empty entry"}
	}

	class := Classify(raw)
	coords, hasCoords := ResolveCoordinates(raw)
	listing := e.normalizer.Normalize(raw, class)

	if listing.Zpid == "" {
		return nil, &EntryError{Index: index, Reason: "no zpid"}
	}
	if _, dup := seen[listing.Zpid]; dup {
		return nil, &EntryError{Index: index, Reason: "duplicate zpid " + listing.Zpid}
	}
	seen[listing.Zpid] = struct{}{}

	if hasCoords {
		listing.Latitude = &coords.Latitude
		listing.Longitude = &coords.Longitude
	}
	return listing, nil
}

func (e *Extractor) debug(format string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(format, args...)
	}
}

// Extract is a one-shot helper around NewExtractor.
func Extract(entries []models.RawListing, opts ExtractOptions) (*models.ExtractResult, error) {
	e, err := NewExtractor(opts, nil)
	if err != nil {
		return nil, err
	}
	return e.Extract(entries), nil
}
