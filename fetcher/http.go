package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/pevans/newsprint/logging"
)

// HTTPFetcher implements Fetcher over net/http with a fixed request profile.
type HTTPFetcher struct {
	client *http.Client
	cfg    Config
	logger *zap.Logger
}

// NewHTTPFetcher creates a fetcher for the given profile.
func NewHTTPFetcher(cfg Config, logger *zap.Logger) *HTTPFetcher {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.Timeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		// Decompression is handled in decompressReader so brotli works too
		DisableCompression: true,
		MaxIdleConns:       10,
		IdleConnTimeout:    90 * time.Second,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg:    cfg,
		logger: logging.OrNop(logger).With(zap.String("component", "http_fetcher")),
	}
}

// Fetch performs a GET request. Transport failures and timeouts are returned
// as errors; any HTTP status is returned as a Response. Only 200 responses
// carry a body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidURL, url, err)
	}

	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	if f.cfg.Accept != "" {
		req.Header.Set("Accept", f.cfg.Accept)
	}
	if f.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	}
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	// Error pages carry no body; their encoding may be broken or empty
	if resp.StatusCode != http.StatusOK {
		f.logger.Debug("fetch returned error status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
		return &Response{URL: url, StatusCode: resp.StatusCode}, nil
	}

	reader, err := decompressReader(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress body: %w", err)
	}

	// Convert Shift_JIS, EUC-JP and friends to UTF-8 using the header and
	// any <meta charset> in the first 1024 bytes
	reader, err = charset.NewReader(reader, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode charset: %w", err)
	}

	// The cap counts decoded bytes and truncates
	if f.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, f.cfg.MaxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	f.logger.Debug("fetch complete",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("size", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// decompressReader wraps reader according to the Content-Encoding header.
func decompressReader(encoding string, reader io.Reader) (io.Reader, error) {
	switch encoding {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}
