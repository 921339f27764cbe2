// Package resource maps stored books onto the response envelopes of each API
// version.
//
// v1 echoes the stored document, v2 wraps each book as a flat
// {id, type, attributes} object, and v3 renders JSON:API style documents with
// relationships, links and side-loaded included resources.
package resource

import (
	"fmt"
	"strconv"
	"strings"

	"bookdoc/internal/book"
)

// Version selects a response convention.
type Version int

const (
	V1 Version = iota + 1
	V2
	V3
)

// Latest is served on unversioned routes.
const Latest = V3

const (
	bookType    = "book"
	peopleType  = "people"
	commentType = "comments"

	deletedMessage = "Book deleted"
)

func (v Version) String() string {
	return "v" + strconv.Itoa(int(v))
}

// ParseVersion accepts "v2" or "2".
func ParseVersion(s string) (Version, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(s), "v"))
	if err != nil || n < int(V1) || n > int(V3) {
		return 0, fmt.Errorf("unknown api version %q", s)
	}
	return Version(n), nil
}

// ErrorDetail describes one invalid input field.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Presenter builds the response bodies of one API version. Every method
// returns a value ready for JSON encoding.
type Presenter interface {
	Version() Version
	ContentType() string
	// IncludesRelated reports whether Single renders comments, so callers
	// can skip loading them.
	IncludesRelated() bool

	Collection(books []book.Book) any
	Sorted(books []book.Book) any
	Single(b book.Book, comments []book.Comment) any
	Created(b book.Book, total int) any
	Updated(b book.Book) any
	Deleted() any
	Error(status int, code, message string, details []ErrorDetail) any
}

// New returns the presenter for v. baseURL prefixes the links of v3
// documents.
func New(v Version, baseURL string) (Presenter, error) {
	switch v {
	case V1:
		return rawPresenter{}, nil
	case V2:
		return flatPresenter{}, nil
	case V3:
		return newDocumentPresenter(baseURL), nil
	}
	return nil, fmt.Errorf("unknown api version %d", int(v))
}

// All returns one presenter per version, keyed by version.
func All(baseURL string) map[Version]Presenter {
	out := make(map[Version]Presenter, 3)
	for _, v := range []Version{V1, V2, V3} {
		p, _ := New(v, baseURL)
		out[v] = p
	}
	return out
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type countedEnvelope struct {
	Count int `json:"count"`
	Data  any `json:"data"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

// errorEnvelope matches the error body used by v1 and v2.
type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

func plainError(code, message string, details []ErrorDetail) any {
	return errorEnvelope{Error: errorBody{Code: code, Message: message, Details: details}}
}

// Attributes are the mutable fields of a book.
type Attributes struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

func attributesOf(b book.Book) Attributes {
	return Attributes{Title: b.Title, Author: b.Author, Year: b.Year}
}
