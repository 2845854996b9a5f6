// Package crawler walks a paginated listing site and collects article
// records page by page.
package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/fetcher"
	"github.com/pevans/newsprint/listing"
	"github.com/pevans/newsprint/logging"
)

// Config controls pagination and politeness.
type Config struct {
	// PageDelay is slept between consecutive listing pages.
	PageDelay time.Duration `yaml:"page_delay"`
	// PageParam is the query parameter carrying the page number.
	PageParam string `yaml:"page_param"`
	// MaxPages stops the crawl after this many pages. Zero means no cap.
	MaxPages int `yaml:"max_pages"`
}

// DefaultConfig returns the crawl settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		PageDelay: time.Second,
		PageParam: "page",
	}
}

// Crawler drives the listing fetcher and the locator across pages.
type Crawler struct {
	listing fetcher.Fetcher
	probe   fetcher.Fetcher
	locator *listing.Locator
	cfg     Config
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *zap.Logger
}

// New creates a crawler. pages fetches listing pages; probe re-reads a page
// to look for pagination controls.
func New(pages, probe fetcher.Fetcher, locator *listing.Locator, cfg Config, logger *zap.Logger) *Crawler {
	if cfg.PageParam == "" {
		cfg.PageParam = DefaultConfig().PageParam
	}

	return &Crawler{
		listing: pages,
		probe:   probe,
		locator: locator,
		cfg:     cfg,
		sleep:   sleepContext,
		logger:  logging.OrNop(logger).With(zap.String("component", "crawler")),
	}
}

// Crawl collects records from baseURL and the pages that follow it. The
// crawl ends at the first page without records, when a page shows no sign of
// a following page, or at the page cap. A non-success status degrades the
// page to empty. Transport failures abort the crawl and no records are
// returned.
func (c *Crawler) Crawl(ctx context.Context, baseURL string) ([]articles.Record, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", fetcher.ErrInvalidURL, baseURL)
	}

	var all []articles.Record

	for page := 1; ; page++ {
		pageURL := PageURL(base, c.cfg.PageParam, page)

		records, err := c.crawlPage(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to crawl page %d: %w", page, err)
		}
		if len(records) == 0 {
			c.logger.Info("crawl finished",
				zap.String("reason", "empty page"),
				zap.Int("page", page),
				zap.Int("records", len(all)),
			)
			break
		}

		all = append(all, records...)

		if c.cfg.MaxPages > 0 && page >= c.cfg.MaxPages {
			c.logger.Info("crawl finished",
				zap.String("reason", "page limit"),
				zap.Int("page", page),
				zap.Int("records", len(all)),
			)
			break
		}

		more, err := c.hasMore(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to probe page %d: %w", page, err)
		}
		if !more {
			c.logger.Info("crawl finished",
				zap.String("reason", "no pagination"),
				zap.Int("page", page),
				zap.Int("records", len(all)),
			)
			break
		}

		if err := c.sleep(ctx, c.cfg.PageDelay); err != nil {
			return nil, err
		}
	}

	return all, nil
}

// crawlPage fetches one listing page and locates its records.
func (c *Crawler) crawlPage(ctx context.Context, pageURL string) ([]articles.Record, error) {
	c.logger.Debug("fetching listing page", zap.String("url", pageURL))

	resp, err := c.listing.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		c.logger.Warn("listing page not available",
			zap.String("url", pageURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, nil
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	page, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", fetcher.ErrInvalidURL, pageURL)
	}

	records := c.locator.Locate(doc, page)
	c.logger.Debug("listing page done", zap.String("url", pageURL), zap.Int("records", len(records)))
	return records, nil
}

// hasMore re-reads pageURL with the probe fetcher and checks it for
// pagination controls. A non-success status means there are no more pages.
func (c *Crawler) hasMore(ctx context.Context, pageURL string) (bool, error) {
	resp, err := c.probe.Fetch(ctx, pageURL)
	if err != nil {
		return false, err
	}
	if !resp.OK() {
		return false, nil
	}

	doc, err := resp.Document()
	if err != nil {
		return false, err
	}
	return HasMorePages(doc), nil
}

// PageURL returns the URL of page n. Page 1 is base itself; later pages
// append param=n to the query string, replacing an existing value.
func PageURL(base *url.URL, param string, n int) string {
	if n <= 1 {
		return base.String()
	}

	u := *base
	page := url.Values{param: {strconv.Itoa(n)}}.Encode()

	q := u.Query()
	switch {
	case q.Has(param):
		q.Set(param, strconv.Itoa(n))
		u.RawQuery = q.Encode()
	case u.RawQuery == "":
		u.RawQuery = page
	default:
		u.RawQuery += "&" + page
	}
	return u.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
