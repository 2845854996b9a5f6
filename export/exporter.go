// Package export turns selected article records into a bundle of printable
// documents.
package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/content"
	"github.com/pevans/newsprint/fetcher"
	"github.com/pevans/newsprint/logging"
)

// Config controls export pacing.
type Config struct {
	// ItemDelay is slept between consecutive articles.
	ItemDelay time.Duration `yaml:"item_delay"`
}

// DefaultConfig returns the export settings used when none are configured.
func DefaultConfig() Config {
	return Config{ItemDelay: 2 * time.Second}
}

// Exporter fetches articles one at a time and builds a bundle.
type Exporter struct {
	fetcher fetcher.Fetcher
	cfg     Config
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
	logger  *zap.Logger
}

// NewExporter creates an exporter that reads article pages through f.
func NewExporter(f fetcher.Fetcher, cfg Config, logger *zap.Logger) *Exporter {
	return &Exporter{
		fetcher: f,
		cfg:     cfg,
		sleep:   sleepContext,
		now:     time.Now,
		logger:  logging.OrNop(logger).With(zap.String("component", "exporter")),
	}
}

// Export builds a bundle with exactly one entry per record, in input order.
// An article that cannot be fetched or rendered gets a failure descriptor
// entry instead of a document.
func (e *Exporter) Export(ctx context.Context, records []articles.Record) *Bundle {
	results := make([]Result, 0, len(records))

	for i, record := range records {
		if i > 0 {
			// Cancellation surfaces as fetch failures below
			_ = e.sleep(ctx, e.cfg.ItemDelay)
		}

		result := e.exportOne(ctx, i+1, record)
		if result.Failed() {
			e.logger.Warn("article export failed",
				zap.Int("index", result.Index),
				zap.String("url", record.Link),
				zap.String("reason", result.Reason),
			)
		} else {
			e.logger.Info("article exported",
				zap.Int("index", result.Index),
				zap.String("url", record.Link),
				zap.Int("bytes", len(result.Document)),
			)
		}
		results = append(results, result)
	}

	bundle := newBundle(results, e.now())
	e.logger.Info("export finished",
		zap.Int("entries", bundle.Len()),
		zap.Int("failures", bundle.Failures()),
	)
	return bundle
}

// exportOne never panics; any failure is reported in the result.
func (e *Exporter) exportOne(ctx context.Context, index int, record articles.Record) (result Result) {
	result = Result{Index: index, Article: record}

	defer func() {
		if r := recover(); r != nil {
			result.Document = nil
			result.Reason = fmt.Sprintf("unexpected error: %v", r)
		}
	}()

	doc, err := e.render(ctx, record)
	if err != nil {
		result.Reason = err.Error()
		return result
	}

	result.Document = doc
	return result
}

func (e *Exporter) render(ctx context.Context, record articles.Record) ([]byte, error) {
	e.logger.Debug("fetching article", zap.String("url", record.Link))

	resp, err := e.fetcher.Fetch(ctx, record.Link)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, err
	}

	c, err := content.Extract(doc)
	if err != nil {
		return nil, err
	}

	return content.RenderPrintDocument(c, record.Link, e.now())
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
