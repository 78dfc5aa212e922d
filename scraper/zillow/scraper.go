package zillow

import (
	"context"
	"errors"
	"strings"

	"zillow-scraper/config"
	"zillow-scraper/models"
	"zillow-scraper/services"
	"zillow-scraper/utils"
)

// errQueryNotRun marks a query the pool dropped before it started.
var errQueryNotRun = errors.New("query not run")

// Scraper drives every city x listing type x page query and extracts each
// page with the record extractor.
type Scraper struct {
	cfg       *config.Config
	logger    *utils.Logger
	fetcher   Fetcher
	extractor *services.Extractor
	pool      *utils.WorkerPool
}

// RunResult is the combined outcome of a run, in query order.
type RunResult struct {
	Listings []*models.Listing
	Queries  []models.QueryResult
	Skipped  int
	Failed   int
}

// New creates a Scraper. cfg must already be validated.
func New(cfg *config.Config, fetcher Fetcher, logger *utils.Logger) (*Scraper, error) {
	extractor, err := services.NewExtractor(services.ExtractOptions{
		MaxRecords: cfg.MaxRecords,
		BaseURL:    cfg.BaseURL,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		fetcher:   fetcher,
		extractor: extractor,
		pool:      utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
	}, nil
}

// Queries expands the configured search into individual page requests.
func (s *Scraper) Queries() []models.SearchQuery {
	var queries []models.SearchQuery
	for _, city := range s.cfg.Cities {
		for _, lt := range s.cfg.ListingTypes {
			if _, ok := NormalizeListingType(lt); !ok {
				s.logger.Warn("[zillow] Unknown listing type %q, defaulting to for_rent", lt)
			}
			for page := 1; page <= s.cfg.MaxPages; page++ {
				queries = append(queries, models.SearchQuery{
					City:        city,
					ListingType: lt,
					Page:        page,
					Language:    s.cfg.Language,
				})
			}
		}
	}
	return queries
}

// Run executes all queries. A failed query is logged and counted; it does
// not stop the run. Listings are de-duplicated by zpid across queries.
func (s *Scraper) Run(ctx context.Context) *RunResult {
	queries := s.Queries()
	results := make([]models.QueryResult, len(queries))
	for i, q := range queries {
		results[i] = models.QueryResult{Query: q, Index: i, Err: errQueryNotRun}
	}

	s.logger.Info("[zillow] Starting %d queries for %d city(ies), listing types=%s, pages per city=%d",
		len(queries), len(s.cfg.Cities), strings.Join(s.cfg.ListingTypes, ","), s.cfg.MaxPages)

	for i, q := range queries {
		i, q := i, q
		s.pool.Submit(ctx, func() {
			results[i] = s.runQuery(ctx, i, q)
		})
	}
	s.pool.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("[zillow] Run cancelled: %v", err)
		for i := range results {
			if results[i].Err == errQueryNotRun {
				results[i].Err = err
			}
		}
	}

	run := &RunResult{Queries: results, Listings: make([]*models.Listing, 0)}
	seen := utils.NewStringSet()
	for _, r := range results {
		run.Skipped += r.Skipped
		if r.Err != nil {
			run.Failed++
			continue
		}
		for _, l := range r.Listings {
			if !seen.Add(l.Zpid) {
				s.logger.Debug("[zillow] Duplicate zpid across pages: %s", l.Zpid)
				continue
			}
			run.Listings = append(run.Listings, l)
		}
	}

	s.logger.Info("[zillow] Run complete: %d listings, %d skipped entries, %d failed queries",
		len(run.Listings), run.Skipped, run.Failed)
	return run
}

func (s *Scraper) runQuery(ctx context.Context, index int, q models.SearchQuery) models.QueryResult {
	res := models.QueryResult{Query: q, Index: index}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	url := BuildSearchURL(s.cfg.BaseURL, q.City, q.ListingType, q.Page)
	s.logger.Info("[zillow] Fetching city=%q listingType=%q page=%d", q.City, q.ListingType, q.Page)

	html, err := s.fetcher.Fetch(ctx, url, q.Language)
	if err != nil {
		s.logger.Error("[zillow] Failed to fetch listings for %s [%s] page %d: %v", q.City, q.ListingType, q.Page, err)
		res.Err = err
		return res
	}

	entries, err := ParseSearchPage(html)
	if err != nil {
		s.logger.Error("[zillow] Failed to parse page for %s [%s] page %d: %v", q.City, q.ListingType, q.Page, err)
		res.Err = err
		return res
	}
	if len(entries) == 0 {
		s.logger.Warn("[zillow] No listing state found for %s [%s] page %d", q.City, q.ListingType, q.Page)
	}

	extracted := s.extractor.Extract(entries)
	res.Skipped = extracted.Skipped
	res.Listings = FilterHomeTypes(extracted.Listings, s.cfg.HomeTypes)

	s.logger.Info("[zillow] Extracted %d listing(s) for %s [%s] page %d",
		len(res.Listings), q.City, q.ListingType, q.Page)
	return res
}

// FilterHomeTypes keeps listings whose unit types mention any of homeTypes
// (case-insensitive). An empty filter keeps everything.
func FilterHomeTypes(listings []*models.Listing, homeTypes []string) []*models.Listing {
	if len(homeTypes) == 0 {
		return listings
	}
	wanted := make([]string, 0, len(homeTypes))
	for _, ht := range homeTypes {
		if ht = strings.ToLower(strings.TrimSpace(ht)); ht != "" {
			wanted = append(wanted, ht)
		}
	}
	if len(wanted) == 0 {
		return listings
	}

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		unitTypes := strings.ToLower(l.UnitTypes)
		for _, ht := range wanted {
			if strings.Contains(unitTypes, ht) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}
