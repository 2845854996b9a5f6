// Package fetcher performs the blocking HTTP GETs used to read listing and
// article pages.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidURL is returned when a URL cannot be turned into a request.
var ErrInvalidURL = errors.New("invalid URL")

// Fetcher retrieves a single URL. A non-success status is not an error:
// callers inspect Response.OK and decide how to degrade.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// Config is the request profile for one kind of fetch.
type Config struct {
	// Timeout bounds connect, TLS handshake, and body read together.
	Timeout time.Duration `yaml:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	UserAgent          string `yaml:"user_agent"`
	Accept             string `yaml:"accept"`
	AcceptLanguage     string `yaml:"accept_language"`
	// MaxBodySize caps the number of body bytes read. Zero means unlimited.
	MaxBodySize int64 `yaml:"max_body_size"`
}

const (
	// ShortUserAgent is sent on article and probe requests.
	ShortUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	// BrowserUserAgent is sent on listing requests.
	BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	DefaultAcceptLanguage = "ja,en-US;q=0.9,en;q=0.8"
	DefaultMaxBodySize    = 10 << 20
)

// ListingConfig returns the profile used for listing pages.
func ListingConfig() Config {
	return Config{
		Timeout:            30 * time.Second,
		InsecureSkipVerify: true,
		UserAgent:          BrowserUserAgent,
		Accept:             DefaultAccept,
		AcceptLanguage:     DefaultAcceptLanguage,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// ProbeConfig returns the profile used for pagination probes.
func ProbeConfig() Config {
	return Config{
		Timeout:            15 * time.Second,
		InsecureSkipVerify: true,
		UserAgent:          ShortUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// ContentConfig returns the profile used for article pages.
func ContentConfig() Config {
	return Config{
		Timeout:            30 * time.Second,
		InsecureSkipVerify: true,
		UserAgent:          ShortUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// Response is the outcome of a completed request. Body is always UTF-8.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports whether the server answered 200.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Document parses the body as HTML.
func (r *Response) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// StatusError describes a request that completed with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error for %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Err returns a *StatusError when the response is not OK, nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{URL: r.URL, StatusCode: r.StatusCode}
}
