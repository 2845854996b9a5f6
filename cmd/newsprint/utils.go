package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pevans/newsprint/articles"
)

// parseSelection turns "1,3,5-7" into zero-based indexes into a list of n
// items. Duplicates are dropped and the first occurrence keeps its place.
func parseSelection(s string, n int) ([]int, error) {
	var out []int
	seen := make(map[int]bool)

	add := func(pos int) error {
		if pos < 1 || pos > n {
			return fmt.Errorf("selection %d out of range 1-%d", pos, n)
		}
		if !seen[pos] {
			seen[pos] = true
			out = append(out, pos-1)
		}
		return nil
	}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid selection: %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("invalid selection: %q", part)
			}
		}

		for pos := start; pos <= end; pos++ {
			if err := add(pos); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// selectRecords returns the records named by selection, or all of them when
// selection is empty.
func selectRecords(records []articles.Record, selection string) ([]articles.Record, error) {
	selected := records
	if strings.TrimSpace(selection) != "" {
		indexes, err := parseSelection(selection, len(records))
		if err != nil {
			return nil, err
		}
		selected = make([]articles.Record, 0, len(indexes))
		for _, i := range indexes {
			selected = append(selected, records[i])
		}
	}

	if len(selected) == 0 {
		return nil, articles.ErrNoArticles
	}
	return selected, nil
}

// truncate shortens s to at most n characters for table output.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
