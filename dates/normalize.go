// Package dates turns free-text dates found on listing pages into canonical
// YYYY-MM-DD strings.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the canonical output layout.
const Layout = "2006-01-02"

// localizedShape detects "<year>年<month>月<day>日" anywhere in the text.
var (
	localizedShape  = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	localizedStrict = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)
)

// embeddedNumeric finds a year-first numeric date inside labelled text such
// as "更新日: 2024.03.05".
var embeddedNumeric = regexp.MustCompile(`(?:^|\D)(\d{4})[./-](\d{1,2})[./-](\d{1,2})(?:\D|$)`)

// numericFormat is a fixed numeric layout. year, month, and day are the
// submatch indexes of each component.
type numericFormat struct {
	name             string
	pattern          *regexp.Regexp
	year, month, day int
}

// numericFormats are tried in order and the first one that parses wins, even
// when a later one would also match.
var numericFormats = []numericFormat{
	{"Y/M/D", regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`), 1, 2, 3},
	{"Y-M-D", regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), 1, 2, 3},
	{"M/D/Y", regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 3, 1, 2},
	{"D/M/Y", regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), 3, 2, 1},
	{"Y.M.D", regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})$`), 1, 2, 3},
}

// Normalize converts text into a canonical date. The second return value is
// false when no rule could make sense of the text.
func Normalize(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if localizedShape.MatchString(text) {
		if m := localizedStrict.FindStringSubmatch(text); m != nil {
			if d, ok := civil(m[1], m[2], m[3]); ok {
				return d, true
			}
		}
	}

	for _, f := range numericFormats {
		m := f.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, ok := civil(m[f.year], m[f.month], m[f.day]); ok {
			return d, true
		}
	}

	return flexible(text)
}

// flexible is the last resort. Localized and year-first numeric dates with
// surrounding noise such as a label or a weekday suffix are accepted here too.
func flexible(text string) (d string, ok bool) {
	for _, shape := range []*regexp.Regexp{localizedShape, embeddedNumeric} {
		if m := shape.FindStringSubmatch(text); m != nil {
			if d, ok := civil(m[1], m[2], m[3]); ok {
				return d, true
			}
		}
	}

	// dateparse has panicked on odd input in the past
	defer func() {
		if recover() != nil {
			d, ok = "", false
		}
	}()

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return "", false
	}
	return t.Format(Layout), true
}

// civil validates a year/month/day triple and formats it. Out-of-range values
// such as February 30 are rejected rather than normalized.
func civil(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return "", false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}

	return t.Format(Layout), true
}
