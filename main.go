package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"zillow-scraper/config"
	"zillow-scraper/models"
	"zillow-scraper/scraper/zillow"
	"zillow-scraper/services"
	"zillow-scraper/storage"
	"zillow-scraper/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("zillow-scraper", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML search file (cities, listing types, limits)")
		format     = fs.String("format", "", "export format: "+strings.Join(config.SupportedFormats, ", "))
		output     = fs.String("output", "", "export file path")
		maxRecords = fs.Int("max-records", 0, "max records per search page (0 = default 41)")
		verbose    = fs.Bool("verbose", false, "enable debug logging")
		browser    = fs.Bool("browser", false, "fetch pages with headless Chrome")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Load()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			return 2
		}
	}

	// Only flags given on the command line override env and file values.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.OutputFormat = strings.ToLower(*format)
		case "output":
			cfg.OutputPath = *output
		case "max-records":
			cfg.MaxRecords = *maxRecords
		case "browser":
			cfg.UseBrowser = *browser
		case "verbose":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})

	logger := utils.NewLoggerFromLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration: %v", err)
		return 2
	}

	logger.Info("=== Zillow Search Extraction starting ===")
	logger.Info("Config: cities=%d | listing types=%s | pages=%d | max records=%d | concurrency=%d | rate=%dms",
		len(cfg.Cities), strings.Join(cfg.ListingTypes, ","), cfg.MaxPages, cfg.MaxRecords,
		cfg.MaxConcurrency, cfg.RateLimitMs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fetcher zillow.Fetcher
	if cfg.UseBrowser {
		bf, err := zillow.NewBrowserFetcher(cfg.ChromeBin, cfg.MaxRetries, logger)
		if err != nil {
			logger.Error("Failed to launch browser: %v", err)
			return 1
		}
		defer bf.Close()
		fetcher = bf
	} else {
		fetcher = zillow.NewClient(time.Duration(cfg.HTTPTimeoutSec)*time.Second, cfg.MaxRetries, logger)
	}

	scr, err := zillow.New(cfg, fetcher, logger)
	if err != nil {
		logger.Error("Failed to create scraper: %v", err)
		return 2
	}

	result := scr.Run(ctx)
	if len(result.Listings) == 0 {
		logger.Warn("No listings were extracted (%d failed queries, %d skipped entries). Nothing to export.",
			result.Failed, result.Skipped)
		return 0
	}

	if c, n, ok := services.Centroid(result.Listings); ok {
		logger.Info("Centroid of %d positioned listings: %.5f, %.5f", n, c.Latitude, c.Longitude)
	}

	meta := models.ExportMetadata{
		RunID:        uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		CityCount:    len(cfg.Cities),
		ListingTypes: normalizedTypes(cfg.ListingTypes),
		RecordCount:  len(result.Listings),
		SkippedCount: result.Skipped,
	}

	writer, err := storage.NewWriter(cfg.OutputFormat, cfg.OutputPath, cfg.DSN())
	if err != nil {
		logger.Error("Failed to create %s writer: %v", cfg.OutputFormat, err)
		return 1
	}
	defer writer.Close()

	if err := writer.Write(result.Listings, meta); err != nil {
		logger.Error("Export failed: %v", err)
		return 1
	}

	reportListings := result.Listings
	if pg, ok := writer.(*storage.PostgresWriter); ok {
		logger.Info("Listings stored in PostgreSQL (table: listings, run %s)", meta.RunID)
		if stored, err := pg.FetchAll(); err != nil {
			logger.Error("Failed to fetch listings from DB for insights: %v", err)
		} else {
			reportListings = stored
		}
	} else {
		logger.Info("Exported %d listings to %s (%s)", meta.RecordCount, cfg.OutputPath, cfg.OutputFormat)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(reportListings))

	if result.Failed > 0 {
		logger.Warn("%d of %d queries failed", result.Failed, len(result.Queries))
	}
	return 0
}

func normalizedTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		nt, _ := zillow.NormalizeListingType(t)
		out = append(out, nt)
	}
	return out
}
