package listing

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/pevans/newsprint/articles"
	"github.com/pevans/newsprint/dates"
)

// articlePath matches hrefs with a numeric path segment, e.g. /column/1234.
var articlePath = regexp.MustCompile(`/\d+`)

// GenericSelectors are tried in order by GenericLinks.
var GenericSelectors = []string{
	"article a[href]",
	".post-item a[href]",
	".article-item a[href]",
	".column-item a[href]",
	".content-item a[href]",
	".news-item a[href]",
	`a[href*="iso"][href*="9001"]`,
	`a[href*="column"]`,
}

// PopularItems reads the "popular" listing widget: anchors marked
// a.popular__item with nested .popular__title and .popular__date elements.
// Only hrefs containing "iso" and a numeric path segment are kept.
func PopularItems(doc *goquery.Document, page *url.URL) []articles.Record {
	var records []articles.Record

	doc.Find("a.popular__item").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		if !containsAny(href, "iso") || !articlePath.MatchString(href) {
			return
		}

		link, ok := resolveLink(page, href)
		if !ok {
			return
		}

		title := articles.CleanTitle(a.Find(".popular__title").First().Text())
		if !articles.ValidTitle(title) {
			return
		}

		var date string
		if el := a.Find(".popular__date").First(); el.Length() > 0 {
			date, _ = dates.Normalize(el.Text())
		}

		records = append(records, articles.Record{Title: title, Link: link, Date: date})
	})

	return records
}

// ArchiveList reads the archive widget. Each .archive__text container holds
// the title in .archive__title; its links are the anchors inside the
// container or, when it has none, inside its parent. Every qualifying link
// becomes a record carrying the container's title.
func ArchiveList(doc *goquery.Document, page *url.URL) []articles.Record {
	var records []articles.Record

	doc.Find(".archive__text").Each(func(_ int, box *goquery.Selection) {
		title := articles.CleanTitle(box.Find(".archive__title").First().Text())
		if !articles.ValidTitle(title) {
			return
		}

		links := box.Find("a[href]")
		if links.Length() == 0 {
			links = box.Parent().Find("a[href]")
		}

		links.Each(func(_ int, a *goquery.Selection) {
			href := a.AttrOr("href", "")
			if !containsAny(href, "iso", "9001", "column") {
				return
			}

			link, ok := resolveLink(page, href)
			if !ok {
				return
			}

			date, _ := findDate(doc, a)
			records = append(records, articles.Record{Title: title, Link: link, Date: date})
		})
	})

	return records
}

// GenericLinks tries GenericSelectors in order and returns the records of the
// first selector that produces any. Titles and dates come from the
// ascending-ancestor search.
func GenericLinks(doc *goquery.Document, page *url.URL) []articles.Record {
	for _, selector := range GenericSelectors {
		var records []articles.Record

		doc.Find(selector).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}

			link, ok := resolveLink(page, href)
			if !ok {
				return
			}

			title := findTitle(doc, a)
			if !articles.ValidTitle(title) {
				return
			}

			date, _ := findDate(doc, a)
			records = append(records, articles.Record{Title: title, Link: link, Date: date})
		})

		if len(records) > 0 {
			return records
		}
	}

	return nil
}
