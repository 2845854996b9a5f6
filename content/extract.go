// Package content isolates the readable part of an article page and turns it
// into a self-contained printable document.
package content

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Exclusions is removed from the page before the main region is chosen.
var Exclusions = []string{
	"script", "style",
	"header", "nav", "footer",
	".header", ".footer", ".sidebar",
	".navigation", ".nav", ".navbar", ".menu", ".breadcrumb",
	".ads", ".advertisement", ".banner",
	".popup", ".modal", ".overlay", ".cookie-notice",
	".related-posts", ".comments", ".comment-section", ".author-box",
	".pagination", ".page-navigation",
	".social-share", ".share-buttons", ".social-buttons",
}

// Selectors are candidate main regions, most specific first.
var Selectors = []string{
	".single-content",
	".entry-content",
	".post-content",
	".article-content",
	".content",
	"main .content",
	`[class*="content"]`,
}

// MinContentLength is the number of characters of text a candidate region
// must exceed to be chosen.
const MinContentLength = 100

// titleSelector locates the heading used as the document title.
const titleSelector = "h1, h2, .title"

// imagePlaceholder replaces images that carry alt text.
const imagePlaceholder = "[画像: %s]"

var strippedAttrs = []*regexp.Regexp{
	regexp.MustCompile(`\s+class="[^"]*"`),
	regexp.MustCompile(`\s+style="[^"]*"`),
	regexp.MustCompile(`\s+id="[^"]*"`),
}

// Content is the cleaned main region of an article page.
type Content struct {
	// Title is the text of the region's first heading, or empty.
	Title string
	// HTML is the region's inner markup without images or class, style,
	// and id attributes.
	HTML string
}

// Extract cleans doc and returns its main region. doc is modified.
func Extract(doc *goquery.Document) (*Content, error) {
	doc.Find(strings.Join(Exclusions, ", ")).Remove()

	region := mainRegion(doc)
	title := strings.TrimSpace(region.Find(titleSelector).First().Text())

	region.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt := strings.TrimSpace(img.AttrOr("alt", ""))
		if alt == "" {
			img.Remove()
			return
		}
		img.ReplaceWithNodes(&html.Node{
			Type: html.TextNode,
			Data: fmt.Sprintf(imagePlaceholder, alt),
		})
	})

	inner, err := region.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}

	return &Content{
		Title: strings.Join(strings.Fields(title), " "),
		HTML:  stripAttributes(inner),
	}, nil
}

// mainRegion returns the first candidate whose text is long enough, or the
// body when none is.
func mainRegion(doc *goquery.Document) *goquery.Selection {
	for _, selector := range Selectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(candidate.Text())) > MinContentLength {
			return candidate
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

func stripAttributes(markup string) string {
	for _, re := range strippedAttrs {
		markup = re.ReplaceAllString(markup, "")
	}
	return markup
}
