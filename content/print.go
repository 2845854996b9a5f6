package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"
)

// TimestampLayout formats the generation time shown in the document header.
const TimestampLayout = "2006年01月02日 15:04:05"

//go:embed print.html.tmpl
var printTemplateText string

var printTemplate = template.Must(template.New("print").Parse(printTemplateText))

type printPage struct {
	Title       string
	SourceURL   string
	GeneratedAt string
	Body        template.HTML
}

// RenderPrintDocument wraps c in a standalone HTML document with an embedded
// print stylesheet and a header naming the source URL and generation time.
func RenderPrintDocument(c *Content, sourceURL string, generatedAt time.Time) ([]byte, error) {
	title := c.Title
	if title == "" {
		title = sourceURL
	}

	var buf bytes.Buffer
	err := printTemplate.Execute(&buf, printPage{
		Title:       title,
		SourceURL:   sourceURL,
		GeneratedAt: generatedAt.Format(TimestampLayout),
		Body:        template.HTML(c.HTML),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render print document: %w", err)
	}

	return buf.Bytes(), nil
}
