// Package listing finds article records on a single listing page.
//
// Listing markup is inconsistent, so several strategies are tried in a fixed
// priority order and the first one that yields anything wins. Results of
// later strategies are never merged in.
package listing

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/logging"
)

// Strategy is one self-contained rule set for pulling records out of a
// listing page. Locate must not modify doc.
type Strategy struct {
	Name   string
	Locate func(doc *goquery.Document, page *url.URL) []articles.Record
}

// DefaultStrategies returns the built-in strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "popular", Locate: PopularItems},
		{Name: "archive", Locate: ArchiveList},
		{Name: "generic", Locate: GenericLinks},
	}
}

// Locator applies strategies in order.
type Locator struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewLocator creates a locator using DefaultStrategies.
func NewLocator(logger *zap.Logger) *Locator {
	return NewLocatorWithStrategies(DefaultStrategies(), logger)
}

// NewLocatorWithStrategies creates a locator with a custom priority list.
func NewLocatorWithStrategies(strategies []Strategy, logger *zap.Logger) *Locator {
	return &Locator{
		strategies: strategies,
		logger:     logging.OrNop(logger).With(zap.String("component", "locator")),
	}
}

// Locate returns the records of the first strategy that finds any, with
// duplicate links collapsed. It returns nil when no strategy matches.
func (l *Locator) Locate(doc *goquery.Document, page *url.URL) []articles.Record {
	for _, s := range l.strategies {
		records := s.Locate(doc, page)
		if len(records) == 0 {
			continue
		}

		deduped := articles.Dedup(records)
		l.logger.Debug("strategy matched",
			zap.String("page", page.String()),
			zap.String("strategy", s.Name),
			zap.Int("candidates", len(records)),
			zap.Int("records", len(deduped)),
		)
		return deduped
	}

	l.logger.Debug("no strategy matched", zap.String("page", page.String()))
	return nil
}

// resolveLink turns href into an absolute link. Hrefs that already start
// with "http" are kept verbatim.
func resolveLink(page *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http") {
		return href, true
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return page.ResolveReference(ref).String(), true
}

// containsAny reports whether s contains at least one of tokens.
func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
