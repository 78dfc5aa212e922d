package zillow

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"zillow-scraper/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/122.0 Safari/537.36"

// maxPageBytes bounds a single search page body.
const maxPageBytes = 16 << 20

// ClientError wraps a failed page fetch.
type ClientError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ClientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Fetcher returns the HTML of a search page.
type Fetcher interface {
	Fetch(ctx context.Context, url, language string) (string, error)
}

// Client fetches search pages over plain HTTP.
type Client struct {
	http   *http.Client
	retry  *utils.RetryConfig
	logger *utils.Logger
}

// NewClient returns a Client with the given per-request timeout.
func NewClient(timeout time.Duration, maxRetries int, logger *utils.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

// Fetch downloads url, retrying transient failures. 4xx responses other
// than 429 are not retried.
func (c *Client) Fetch(ctx context.Context, url, language string) (string, error) {
	var body string
	err := c.retry.DoContext(ctx, "fetch "+url, func() error {
		b, err := c.fetchOnce(ctx, url, language)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		var ce *ClientError
		if errors.As(err, &ce) {
			return "", err
		}
		return "", &ClientError{URL: url, Err: err}
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, url, language string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &ClientError{URL: url, Err: fmt.Errorf("build request: %w", utils.ErrPermanent)}
	}
	if language == "" {
		language = "en-US"
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", language+",en;q=0.9")
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ClientError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var cause error = errors.New(http.StatusText(resp.StatusCode))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			cause = fmt.Errorf("%s: %w", http.StatusText(resp.StatusCode), utils.ErrPermanent)
		}
		return "", &ClientError{URL: url, StatusCode: resp.StatusCode, Err: cause}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return "", &ClientError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return "", &ClientError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if c.logger != nil {
		c.logger.Debug("[zillow] Fetched %s (%d bytes)", url, len(data))
	}
	return string(data), nil
}

// decodeBody undoes the content encodings we advertise. net/http only
// decompresses gzip transparently when it set Accept-Encoding itself.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, nil
	case "", "identity":
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q: %w",
			resp.Header.Get("Content-Encoding"), utils.ErrPermanent)
	}
}
