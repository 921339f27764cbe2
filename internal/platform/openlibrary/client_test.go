package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server, retries int) *Client {
	c := NewClient("bookdoc-test", 1000, retries).WithBaseURL(srv.URL)
	c.backoff = time.Millisecond
	return c
}

func TestSearchBooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "subject:science fiction", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "bookdoc-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"numFound":2,"docs":[
			{"key":"/works/OL1W","title":"Dune","author_name":["Frank Herbert"],"first_publish_year":1965},
			{"key":"/works/OL2W","title":"Solaris","author_name":["Stanislaw Lem"],"first_publish_year":1961}
		]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv, 0).SearchBooks(context.Background(), "science fiction", 2)
	require.NoError(t, err)
	require.Len(t, res.Docs, 2)
	assert.Equal(t, Doc{Key: "/works/OL1W", Title: "Dune", AuthorNames: []string{"Frank Herbert"}, FirstPublishYear: 1965}, res.Docs[0])
}

func TestSearchBooks_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).SearchBooks(context.Background(), "history", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchBooks_GivesUpOnClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).SearchBooks(context.Background(), "history", 10)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSearchBooks_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 2).SearchBooks(context.Background(), "history", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
}
