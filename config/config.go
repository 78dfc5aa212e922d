package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SupportedFormats lists the accepted export formats.
var SupportedFormats = []string{"json", "csv", "xml", "rss", "html", "postgres"}

// Config holds all application configuration loaded from environment
// variables, optionally overlaid by a YAML search file.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxRecords     int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	MaxPages       int
	HTTPTimeoutSec int

	BaseURL    string
	Language   string
	UseBrowser bool
	ChromeBin  string
	LogLevel   string

	Cities       []string
	ListingTypes []string
	HomeTypes    []string

	OutputFormat string
	OutputPath   string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "listings_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxRecords:     getEnvInt("MAX_RECORDS", 41),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		MaxPages:       getEnvInt("MAX_PAGES", 1),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SEC", 20),

		BaseURL:    getEnv("BASE_URL", "https://www.zillow.com"),
		Language:   getEnv("LANGUAGE", "en-US"),
		UseBrowser: getEnvBool("USE_BROWSER", false),
		ChromeBin:  getEnv("CHROME_BIN", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Cities:       getEnvList("CITIES"),
		ListingTypes: defaultList(getEnvList("LISTING_TYPES"), "for_rent"),
		HomeTypes:    getEnvList("HOME_TYPES"),

		OutputFormat: strings.ToLower(getEnv("OUTPUT_FORMAT", "json")),
		OutputPath:   getEnv("OUTPUT_PATH", "data/output.json"),
	}
}

// SearchFile is the YAML search definition accepted by -config.
type SearchFile struct {
	Search struct {
		Cities       []string `yaml:"cities"`
		ListingTypes []string `yaml:"listingTypes"`
		HomeTypes    []string `yaml:"homeTypes"`
		MaxPages     int      `yaml:"maxPages"`
		Language     string   `yaml:"language"`
	} `yaml:"search"`
	Output struct {
		Format string `yaml:"format"`
		Path   string `yaml:"path"`
	} `yaml:"output"`
	MaxRecords *int `yaml:"maxRecords"`
}

// ApplyFile overlays the YAML search file at path. Keys absent from the
// file keep their current value.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	var f SearchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}

	if len(f.Search.Cities) > 0 {
		c.Cities = f.Search.Cities
	}
	if len(f.Search.ListingTypes) > 0 {
		c.ListingTypes = f.Search.ListingTypes
	}
	if len(f.Search.HomeTypes) > 0 {
		c.HomeTypes = f.Search.HomeTypes
	}
	if f.Search.MaxPages != 0 {
		c.MaxPages = f.Search.MaxPages
	}
	if f.Search.Language != "" {
		c.Language = f.Search.Language
	}
	if f.Output.Format != "" {
		c.OutputFormat = strings.ToLower(f.Output.Format)
	}
	if f.Output.Path != "" {
		c.OutputPath = f.Output.Path
	}
	if f.MaxRecords != nil {
		c.MaxRecords = *f.MaxRecords
	}
	return nil
}

// Validate reports the first invalid setting. It must be called before
// any scraping starts.
func (c *Config) Validate() error {
	switch {
	case c.MaxRecords < 0:
		return &Error{Field: "maxRecords", Value: c.MaxRecords, Reason: "must not be negative"}
	case c.MaxPages < 1:
		return &Error{Field: "maxPages", Value: c.MaxPages, Reason: "must be at least 1"}
	case c.MaxConcurrency < 1:
		return &Error{Field: "maxConcurrency", Value: c.MaxConcurrency, Reason: "must be at least 1"}
	case c.MaxRetries < 1:
		return &Error{Field: "maxRetries", Value: c.MaxRetries, Reason: "must be at least 1"}
	case !supportedFormat(c.OutputFormat):
		return &Error{Field: "output.format", Value: c.OutputFormat,
			Reason: "must be one of " + strings.Join(SupportedFormats, ", ")}
	}
	return nil
}

// Error is a configuration error surfaced before any work starts.
type Error struct {
	Field  string
	Value  any
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func supportedFormat(f string) bool {
	for _, s := range SupportedFormats {
		if f == s {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable; "Dallas, TX" style values
// should use ';' as the separator instead.
func getEnvList(key string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return nil
	}
	sep := ","
	if strings.Contains(val, ";") {
		sep = ";"
	}
	var out []string
	for _, part := range strings.Split(val, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultList(list []string, def ...string) []string {
	if len(list) == 0 {
		return def
	}
	return list
}
