package crawler

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// paginationSelectors mark elements that usually belong to a pager.
var paginationSelectors = []string{
	`a[href*="page="]`,
	".next",
	".pagination .next",
	".pager .next",
}

// nextLinkExprs match anchors whose text reads "next", in Japanese and
// English.
var nextLinkExprs = []string{
	`//a[contains(., '次へ')]`,
	`//a[contains(., 'Next')]`,
}

// HasMorePages reports whether doc shows any pagination control. It does not
// check that the control points at a page that exists.
func HasMorePages(doc *goquery.Document) bool {
	for _, selector := range paginationSelectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}

	for _, root := range doc.Nodes {
		for _, expr := range nextLinkExprs {
			node, err := htmlquery.Query(root, expr)
			if err == nil && node != nil {
				return true
			}
		}
	}

	return false
}
