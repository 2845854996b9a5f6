package articles

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"タイトル", "リンク", "日付"}

// WriteCSV writes records as UTF-8 CSV with a header row. Records without a
// date get UnknownDate.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		if err := cw.Write([]string{r.Title, r.Link, r.DateOrUnknown()}); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// CSVFilename returns the default download name for a CSV written on day.
func CSVFilename(day time.Time) string {
	return "articles_" + day.Format("20060102") + ".csv"
}
