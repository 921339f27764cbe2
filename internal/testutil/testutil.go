package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"bookdoc/internal/book"
)

// DuneID is a fixed identity for fixtures.
const DuneID = "3f2b8c1e-6a47-4d8e-9a51-0c2f7d1e9b10"

// TestBook is a stored book for handler tests.
var TestBook = book.Book{
	ID:        DuneID,
	Title:     "Dune",
	Author:    "Herbert",
	Year:      1965,
	CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
}

// TestComments belong to TestBook.
var TestComments = []book.Comment{
	{ID: "0b8d7a52-3c1e-4f7a-9e0d-5b6c7d8e9f01", BookID: DuneID, Body: "Spice must flow"},
}

// NewRequest creates a request carrying values in the query string.
func NewRequest(method, path string, values url.Values) *http.Request {
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	return httptest.NewRequest(method, path, nil)
}

// NewFormRequest creates a request carrying values as an urlencoded body.
func NewFormRequest(method, path string, values url.Values) *http.Request {
	r := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}

// Object returns the nested JSON object at the given keys, or nil.
func (rr RecordResponse) Object(keys ...string) map[string]interface{} {
	cur := rr.Body
	for _, k := range keys {
		next, ok := cur[k].(map[string]interface{})
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// List returns the JSON array under key, or nil.
func (rr RecordResponse) List(key string) []interface{} {
	v, _ := rr.Body[key].([]interface{})
	return v
}

// AssertResponseCode checks if the response code matches expected
func AssertResponseCode(t interface {
	Errorf(format string, args ...any)
}, got, want int) {
	if got != want {
		t.Errorf("got status code %d, want %d", got, want)
	}
}
