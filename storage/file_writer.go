package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"zillow-scraper/models"
)

// encoders maps a file export format to its encoder.
var encoders = map[string]EncodeFunc{
	"json": EncodeJSON,
	"csv":  EncodeCSV,
	"xml":  EncodeXML,
	"rss":  EncodeRSS,
	"html": EncodeHTML,
}

// FileWriter writes one export file. It is safe for concurrent use.
type FileWriter struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	encode EncodeFunc
}

// NewFileWriter creates (or truncates) the file at path for the given
// format. Intermediate directories are created automatically.
func NewFileWriter(format, path string) (*FileWriter, error) {
	encode, ok := encoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("export: unsupported format %q", format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: create file %q: %w", path, err)
	}

	return &FileWriter{path: path, file: f, encode: encode}, nil
}

// Write renders the whole listing set into the file.
func (w *FileWriter) Write(listings []*models.Listing, meta models.ExportMetadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	buf := bufio.NewWriter(w.file)
	if err := w.encode(buf, listings, meta); err != nil {
		return fmt.Errorf("export: write %q: %w", w.path, err)
	}
	return buf.Flush()
}

// Close closes the underlying file.
func (w *FileWriter) Close() error {
	return w.file.Close()
}

// NewWriter returns the writer for format. dsn is only used by postgres.
func NewWriter(format, path, dsn string) (ListingWriter, error) {
	if strings.EqualFold(format, "postgres") {
		pw, err := NewPostgresWriter(dsn)
		if err != nil {
			return nil, err
		}
		return pw, nil
	}
	fw, err := NewFileWriter(format, path)
	if err != nil {
		return nil, err
	}
	return fw, nil
}
