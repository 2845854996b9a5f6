package export

import (
	"fmt"

	"github.com/pevans/newsprint/articles"
)

// Result is the outcome of exporting one article: either a print document or
// a failure reason, never both.
type Result struct {
	// Index is the article's 1-based position in the export.
	Index   int
	Article articles.Record
	// Document is the rendered print document. It is nil on failure.
	Document []byte
	// Reason describes why the article could not be exported.
	Reason string
}

// Failed reports whether the article could not be exported.
func (r Result) Failed() bool {
	return r.Document == nil
}

func (r Result) entry() Entry {
	if r.Failed() {
		return Entry{
			Name:   EntryName(r.Index, r.Article.Title, true),
			Body:   []byte(FailureDescriptor(r.Article, r.Reason)),
			Failed: true,
		}
	}
	return Entry{
		Name: EntryName(r.Index, r.Article.Title, false),
		Body: r.Document,
	}
}

// FailureDescriptor is the plain-text entry written in place of an article
// that could not be exported.
func FailureDescriptor(a articles.Record, reason string) string {
	return fmt.Sprintf("コンテンツ生成に失敗しました\n\nタイトル: %s\nURL: %s\n日付: %s\n\nエラー: %s\n",
		a.Title, a.Link, a.DateOrUnknown(), reason)
}
