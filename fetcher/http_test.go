package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

// TestFetch_InsecureTLS verifies self-signed certificates are accepted
func TestFetch_InsecureTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(ContentConfig(), nil)
	resp, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Contains(t, string(resp.Body), "<p>ok</p>")
}

// TestFetch_StrictTLSRejectsSelfSigned verifies verification can be enabled
func TestFetch_StrictTLSRejectsSelfSigned(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := ContentConfig()
	cfg.InsecureSkipVerify = false
	f := NewHTTPFetcher(cfg, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

// TestFetch_ListingHeaders verifies the listing profile headers
func TestFetch_ListingHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(ListingConfig(), nil)
	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, BrowserUserAgent, got.Get("User-Agent"))
	assert.Equal(t, DefaultAccept, got.Get("Accept"))
	assert.Equal(t, DefaultAcceptLanguage, got.Get("Accept-Language"))
}

// TestFetch_NonSuccessStatus verifies a 404 is a response, not an error
func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewHTTPFetcher(ContentConfig(), nil)
	resp, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var statusErr *StatusError
	require.True(t, errors.As(resp.Err(), &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

// TestFetch_CompressedErrorStatus verifies an error status with an
// undecodable body is still a response
func TestFetch_CompressedErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(ListingConfig(), nil)
	resp, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

// TestFetch_MaxBodySizeCountsDecodedBytes verifies an oversized compressed
// body is truncated, not rejected
func TestFetch_MaxBodySizeCountsDecodedBytes(t *testing.T) {
	page := "<html><body><p>" + strings.Repeat("a", 4096) + "</p></body></html>"

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(page))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	cfg := ContentConfig()
	cfg.MaxBodySize = 1024
	f := NewHTTPFetcher(cfg, nil)

	resp, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, resp.Body, 1024)
	assert.Equal(t, page[:1024], string(resp.Body))
}

// TestFetch_Brotli verifies br-encoded bodies are decoded
func TestFetch_Brotli(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("<p>compressed</p>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Encoding", "br")
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		rw.Write(buf.Bytes())
	}))
	defer server.Close()

	f := NewHTTPFetcher(ContentConfig(), nil)
	resp, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<p>compressed</p>", string(resp.Body))
}

// TestFetch_ShiftJIS verifies legacy Japanese encodings become UTF-8
func TestFetch_ShiftJIS(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("<p>品質マニュアル</p>"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=Shift_JIS")
		w.Write(encoded)
	}))
	defer server.Close()

	f := NewHTTPFetcher(ContentConfig(), nil)
	resp, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<p>品質マニュアル</p>", string(resp.Body))
}

// TestFetch_Timeout verifies the profile timeout is enforced
func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("late"))
	}))
	defer server.Close()

	cfg := ContentConfig()
	cfg.Timeout = 20 * time.Millisecond
	f := NewHTTPFetcher(cfg, nil)

	_, err := f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

// TestFetch_InvalidURL verifies malformed URLs are rejected
func TestFetch_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(ContentConfig(), nil)

	_, err := f.Fetch(context.Background(), "http://exa mple.com/\x7f")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

// TestResponse_Document verifies body parsing
func TestResponse_Document(t *testing.T) {
	resp := &Response{StatusCode: 200, Body: []byte(`<html><body><h1>Title</h1></body></html>`)}

	doc, err := resp.Document()
	require.NoError(t, err)
	assert.Equal(t, "Title", doc.Find("h1").Text())
	assert.NoError(t, resp.Err())
}
