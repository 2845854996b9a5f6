package export

import (
	"fmt"
	"io"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
)

// MaxNameLength bounds an entry name before its extension, in characters.
const MaxNameLength = 100

var (
	reservedChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes name safe to use as a file name. Path separators and
// reserved characters become underscores, whitespace runs collapse to one
// underscore, and the result is cut to MaxNameLength characters.
func SanitizeFilename(name string) string {
	name = reservedChars.ReplaceAllString(name, "_")
	name = whitespace.ReplaceAllString(name, "_")

	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}

// EntryName returns the bundle name for the article at 1-based position
// index.
func EntryName(index int, title string, failed bool) string {
	if failed {
		return SanitizeFilename(fmt.Sprintf("%d_%s_ERROR", index, title)) + ".txt"
	}
	return SanitizeFilename(fmt.Sprintf("%d_%s", index, title)) + ".html"
}

// BundleFilename returns the default archive name for an export on day.
func BundleFilename(day time.Time) string {
	return "articles_pdfs_" + day.Format("20060102") + ".zip"
}

// Entry is one named file in a bundle.
type Entry struct {
	Name string
	Body []byte
	// Failed marks a plain-text failure descriptor.
	Failed bool
}

// Bundle is the ordered set of entries produced by one export.
type Bundle struct {
	entries   []Entry
	createdAt time.Time
}

func newBundle(results []Result, createdAt time.Time) *Bundle {
	b := &Bundle{
		entries:   make([]Entry, 0, len(results)),
		createdAt: createdAt,
	}
	for _, r := range results {
		b.entries = append(b.entries, r.entry())
	}
	return b
}

// Entries returns a copy of the bundle's entries in article order.
func (b *Bundle) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of entries.
func (b *Bundle) Len() int {
	return len(b.entries)
}

// Failures returns the number of failure descriptors.
func (b *Bundle) Failures() int {
	n := 0
	for _, e := range b.entries {
		if e.Failed {
			n++
		}
	}
	return n
}

// WriteZip writes the bundle as a zip archive.
func (b *Bundle) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, e := range b.entries {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: b.createdAt,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", e.Name, err)
		}
		if _, err := f.Write(e.Body); err != nil {
			return fmt.Errorf("failed to write %s to archive: %w", e.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}
