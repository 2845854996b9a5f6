package listing

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/dates"
)

const (
	// maxClimb is how many levels the marker searches walk up from a link.
	maxClimb = 5
	// maxDateFallbackClimb bounds the search over conventional date classes.
	maxDateFallbackClimb = 2
)

const (
	titleBoxMarker = ".archive__text"
	titleMarker    = "p.archive__title"
	dateMarker     = ".headCont__date"
)

// conventionalDateSelectors are common date markups, tried in order.
var conventionalDateSelectors = []string{
	".date",
	".updated",
	".published",
	".post-date",
	"time",
	".created",
	".modified",
}

// climb calls visit on start and then on each ancestor, at most depth times,
// until visit returns true. The walk stops before reaching <body>.
func climb(start *goquery.Selection, depth int, visit func(level *goquery.Selection) bool) {
	level := start
	for i := 0; i < depth; i++ {
		if level.Length() == 0 {
			return
		}
		if visit(level) {
			return
		}

		level = level.Parent()
		if level.Is("body") {
			return
		}
	}
}

// within finds the first element matching selector below level, or below
// level's parent when level itself has none.
func within(level *goquery.Selection, selector string) *goquery.Selection {
	if found := level.Find(selector).First(); found.Length() > 0 {
		return found
	}
	return level.Parent().Find(selector).First()
}

// markerText returns the element's text, or its datetime attribute when the
// text is blank.
func markerText(el *goquery.Selection) string {
	text := strings.TrimSpace(el.Text())
	if text == "" {
		if dt, ok := el.Attr("datetime"); ok {
			return strings.TrimSpace(dt)
		}
	}
	return text
}

// findTitle looks for an archive title near a, then anywhere in the page.
// A candidate must be longer than three characters to end the search early.
func findTitle(doc *goquery.Document, a *goquery.Selection) string {
	var title string

	climb(a, maxClimb, func(level *goquery.Selection) bool {
		box := within(level, titleBoxMarker)
		if box.Length() == 0 {
			return false
		}

		candidate := strings.TrimSpace(box.Find(titleMarker).First().Text())
		if candidate == "" {
			return false
		}
		title = candidate
		return utf8.RuneCountInString(candidate) > 3
	})

	if title == "" {
		doc.Find(titleMarker).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			candidate := strings.TrimSpace(el.Text())
			if candidate != "" && utf8.RuneCountInString(candidate) > 3 {
				title = candidate
				return false
			}
			return true
		})
	}

	return articles.CleanTitle(title)
}

// findDate looks for a parseable date near a. It tries the site's date
// marker up to maxClimb levels, then the first parseable marker anywhere in
// the page, then conventional date markup up to maxDateFallbackClimb levels.
func findDate(doc *goquery.Document, a *goquery.Selection) (string, bool) {
	var date string

	climb(a, maxClimb, func(level *goquery.Selection) bool {
		el := within(level, dateMarker)
		if el.Length() == 0 {
			return false
		}
		d, ok := dates.Normalize(markerText(el))
		if ok {
			date = d
		}
		return ok
	})
	if date != "" {
		return date, true
	}

	doc.Find(dateMarker).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		d, ok := dates.Normalize(markerText(el))
		if ok {
			date = d
		}
		return !ok
	})
	if date != "" {
		return date, true
	}

	climb(a, maxDateFallbackClimb, func(level *goquery.Selection) bool {
		for _, selector := range conventionalDateSelectors {
			el := level.Find(selector).First()
			if el.Length() == 0 {
				continue
			}
			if d, ok := dates.Normalize(markerText(el)); ok {
				date = d
				return true
			}
		}
		return false
	})

	return date, date != ""
}
