// Package articles holds the article records discovered on listing pages and
// the store that keeps them between a crawl and an export.
package articles

import (
	"strings"
	"unicode/utf8"
)

// MinTitleLength is the shortest title, in characters, a record may carry.
const MinTitleLength = 3

// UnknownDate is shown wherever a record has no date.
const UnknownDate = "日付不明"

// Record is one article found on a listing page. Link is absolute and is the
// identity of the record. Date is a canonical YYYY-MM-DD string, or empty when
// the listing carried no usable date.
type Record struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date,omitempty"`
}

// HasDate reports whether the record carries a date.
func (r Record) HasDate() bool {
	return r.Date != ""
}

// DateOrUnknown returns the date, or UnknownDate when there is none.
func (r Record) DateOrUnknown() string {
	if r.Date == "" {
		return UnknownDate
	}
	return r.Date
}

// CleanTitle collapses runs of whitespace into single spaces and trims the
// result.
func CleanTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// ValidTitle reports whether a cleaned title is long enough to keep.
func ValidTitle(title string) bool {
	return utf8.RuneCountInString(title) >= MinTitleLength
}

// Dedup collapses records sharing a link, keeping the first occurrence and
// preserving order.
func Dedup(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Link]; ok {
			continue
		}
		seen[r.Link] = struct{}{}
		out = append(out, r)
	}
	return out
}
