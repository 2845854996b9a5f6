package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/newsprint/articles"
)

// newTestSite serves a one-page listing with three articles. The second
// article answers 404.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html><body><div class="popular">
		<a class="popular__item" href="/iso/column/1"><p class="popular__title">品質方針の作り方</p><span class="popular__date">2024年3月5日</span></a>
		<a class="popular__item" href="/iso/column/2"><p class="popular__title">内部監査の基本</p></a>
		<a class="popular__item" href="/iso/column/3"><p class="popular__title">是正処置の手順</p><span class="popular__date">2024/01/20</span></a>
		</div></body></html>`)
	})
	for _, id := range []string{"1", "3"} {
		id := id
		mux.HandleFunc("/iso/column/"+id, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, `<html><body><nav>Menu</nav><div class="entry-content"><h1>Article %s</h1><p>%s</p></div></body></html>`,
				id, strings.Repeat("本文です。", 30))
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// Test helper: write a config with no delays and a temporary database
func writeTestConfig(t *testing.T) (configPath, dir string) {
	t.Helper()

	dir = t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`storage:
  dsn: %q
crawl:
  page_delay: 0s
export:
  item_delay: 0s
log:
  level: error
`, filepath.Join(dir, "newsprint.db"))
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	t.Setenv("NEWSPRINT_DSN", "")
	t.Setenv("NEWSPRINT_BASE_URL", "")
	t.Setenv("NEWSPRINT_LOG_LEVEL", "")
	return configPath, dir
}

// Test helper: run the CLI and return its standard output
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestCLI_CrawlListCSVExport verifies the full pipeline against a local site
func TestCLI_CrawlListCSVExport(t *testing.T) {
	srv := newTestSite(t)
	configPath, dir := writeTestConfig(t)

	out, err := run(t, "--config", configPath, "crawl", srv.URL+"/list")
	require.NoError(t, err)
	assert.Contains(t, out, "Crawled 3 articles into session")

	out, err = run(t, "--config", configPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "品質方針の作り方")
	assert.Contains(t, out, srv.URL+"/iso/column/3")
	assert.Contains(t, out, articles.UnknownDate)

	out, err = run(t, "--config", configPath, "csv", "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "タイトル,リンク,日付\n"+
		"品質方針の作り方,"+srv.URL+"/iso/column/1,2024-03-05\n"+
		"内部監査の基本,"+srv.URL+"/iso/column/2,日付不明\n"+
		"是正処置の手順,"+srv.URL+"/iso/column/3,2024-01-20\n", out)

	zipPath := filepath.Join(dir, "bundle.zip")
	out, err = run(t, "--config", configPath, "export", "-o", zipPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 articles (1 failed)")

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"1_品質方針の作り方.html",
		"2_内部監査の基本_ERROR.txt",
		"3_是正処置の手順.html",
	}, names)
}

// TestCLI_ExportSelection verifies --select picks 1-based positions
func TestCLI_ExportSelection(t *testing.T) {
	srv := newTestSite(t)
	configPath, dir := writeTestConfig(t)

	_, err := run(t, "--config", configPath, "crawl", srv.URL+"/list")
	require.NoError(t, err)

	zipPath := filepath.Join(dir, "selected.zip")
	out, err := run(t, "--config", configPath, "export", "--select", "3", "-o", zipPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 articles (0 failed)")

	zr, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 1)
	assert.Equal(t, "1_是正処置の手順.html", zr.File[0].Name)
}

// TestCLI_RecrawlReplacesSession verifies --session keeps one session
func TestCLI_RecrawlReplacesSession(t *testing.T) {
	srv := newTestSite(t)
	configPath, dir := writeTestConfig(t)

	_, err := run(t, "--config", configPath, "crawl", srv.URL+"/list")
	require.NoError(t, err)

	store, err := articles.NewStore(filepath.Join(dir, "newsprint.db"))
	require.NoError(t, err)
	session, err := store.LatestSession()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out, err := run(t, "--config", configPath, "crawl", "--session", session.SessionID.String())
	require.NoError(t, err)
	assert.Contains(t, out, session.SessionID.String())

	out, err = run(t, "--config", configPath, "sessions")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, session.SessionID.String()))
	assert.Contains(t, out, srv.URL+"/list")
}

// TestCLI_NoSessions verifies commands that need records explain what to do
func TestCLI_NoSessions(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	for _, args := range [][]string{{"list"}, {"csv", "-o", "-"}, {"export"}} {
		_, err := run(t, append([]string{"--config", configPath}, args...)...)
		assert.ErrorIs(t, err, articles.ErrNoArticles, "args %v", args)
	}
}

// TestCLI_CrawlFailureStoresNothing verifies a failed crawl leaves no session
func TestCLI_CrawlFailureStoresNothing(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := run(t, "--config", configPath, "crawl", addr+"/list")
	require.Error(t, err)

	out, err := run(t, "--config", configPath, "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions yet")
}

// TestParseSelection verifies positions, ranges, and errors
func TestParseSelection(t *testing.T) {
	got, err := parseSelection("1, 3,5-6,3", 6)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 5}, got)

	_, err = parseSelection("0", 3)
	assert.Error(t, err)

	_, err = parseSelection("4", 3)
	assert.Error(t, err)

	_, err = parseSelection("2-1", 3)
	assert.Error(t, err)

	_, err = parseSelection("x", 3)
	assert.Error(t, err)
}

// TestSelectRecords verifies the empty selection is an error
func TestSelectRecords(t *testing.T) {
	records := []articles.Record{{Title: "One", Link: "a"}, {Title: "Two", Link: "b"}}

	all, err := selectRecords(records, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := selectRecords(records, "2")
	require.NoError(t, err)
	assert.Equal(t, "Two", some[0].Title)

	_, err = selectRecords(nil, "")
	assert.ErrorIs(t, err, articles.ErrNoArticles)
}

// TestTruncate verifies character-based truncation
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "品質方...", truncate("品質方針の作り方", 6))
}
