package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"zillow-scraper/models"
)

// listingColumns is the insert column order; it mirrors Columns plus the
// run bookkeeping columns.
var listingColumns = []string{
	"zpid", "provider_listing_id", "status_type", "status_text", "image_source",
	"detail_url", "address", "address_street", "address_city", "address_state",
	"address_zipcode", "latitude", "longitude", "building_name",
	"contact_phone_number", "min_price", "max_price", "unit_types",
	"total_units", "photo_urls", "is_featured_listing", "badge_text",
	"position", "run_id",
}

const insertBatchSize = 50

// PostgresWriter persists normalized listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			zpid                 TEXT PRIMARY KEY,
			provider_listing_id  TEXT    NOT NULL DEFAULT '',
			status_type          VARCHAR(16) NOT NULL,
			status_text          TEXT    NOT NULL DEFAULT '',
			image_source         TEXT    NOT NULL DEFAULT '',
			detail_url           TEXT    NOT NULL DEFAULT '',
			address              TEXT    NOT NULL DEFAULT '',
			address_street       TEXT    NOT NULL DEFAULT '',
			address_city         TEXT    NOT NULL DEFAULT '',
			address_state        TEXT    NOT NULL DEFAULT '',
			address_zipcode      TEXT    NOT NULL DEFAULT '',
			latitude             DOUBLE PRECISION,
			longitude            DOUBLE PRECISION,
			building_name        TEXT    NOT NULL DEFAULT '',
			contact_phone_number TEXT    NOT NULL DEFAULT '',
			min_price            TEXT    NOT NULL DEFAULT '',
			max_price            TEXT    NOT NULL DEFAULT '',
			unit_types           TEXT    NOT NULL DEFAULT '',
			total_units          INTEGER NOT NULL DEFAULT 0,
			photo_urls           TEXT[]  NOT NULL DEFAULT '{}',
			is_featured_listing  BOOLEAN NOT NULL DEFAULT FALSE,
			badge_text           TEXT    NOT NULL DEFAULT '',
			position             INTEGER NOT NULL,
			run_id               TEXT    NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_status  ON listings(status_type);
		CREATE INDEX IF NOT EXISTS idx_listings_city    ON listings(address_city);
		CREATE INDEX IF NOT EXISTS idx_listings_run     ON listings(run_id);
	`)
	return err
}

// Write replaces the table contents with listings, inside one transaction.
func (pw *PostgresWriter) Write(listings []*models.Listing, meta models.ExportMetadata) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(listings); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(listings) {
			end = len(listings)
		}
		query, args := buildInsert(listings[i:end], i, meta.RunID)
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// buildInsert renders a multi-row INSERT for batch. offset is the position
// of batch[0] within the full result set.
func buildInsert(batch []*models.Listing, offset int, runID string) (string, []any) {
	width := len(listingColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, l := range batch {
		placeholders := make([]string, width)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*width+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.Zpid, l.ProviderListingID, string(l.StatusType), l.StatusText, l.ImageSource,
			l.DetailURL, l.Address, l.AddressStreet, l.AddressCity, l.AddressState,
			l.AddressZipcode, nullFloat(l.Latitude), nullFloat(l.Longitude), l.BuildingName,
			l.ContactPhoneNumber, l.MinPrice, l.MaxPrice, l.UnitTypes,
			l.TotalUnits, pq.Array(photoURLs(l)), l.IsFeaturedListing, l.BadgeText,
			offset+idx, runID,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO listings (%s) VALUES %s ON CONFLICT (zpid) DO NOTHING",
		strings.Join(listingColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// pq encodes a nil slice as NULL, which photo_urls does not accept.
func photoURLs(l *models.Listing) []string {
	if l.PhotoURLs == nil {
		return []string{}
	}
	return l.PhotoURLs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings in export order.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT zpid, provider_listing_id, status_type, status_text, image_source,
		       detail_url, address, address_street, address_city, address_state,
		       address_zipcode, latitude, longitude, building_name,
		       contact_phone_number, min_price, max_price, unit_types,
		       total_units, photo_urls, is_featured_listing, badge_text
		FROM listings
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var status string
		var lat, lon sql.NullFloat64
		photos := pq.StringArray{}
		if err := rows.Scan(
			&l.Zpid, &l.ProviderListingID, &status, &l.StatusText, &l.ImageSource,
			&l.DetailURL, &l.Address, &l.AddressStreet, &l.AddressCity, &l.AddressState,
			&l.AddressZipcode, &lat, &lon, &l.BuildingName,
			&l.ContactPhoneNumber, &l.MinPrice, &l.MaxPrice, &l.UnitTypes,
			&l.TotalUnits, &photos, &l.IsFeaturedListing, &l.BadgeText,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l.StatusType = models.StatusType(status)
		if lat.Valid && lon.Valid {
			l.Latitude, l.Longitude = &lat.Float64, &lon.Float64
		}
		l.PhotoURLs = []string(photos)
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
