package book

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no book matches the given identity.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidID is returned when an identity is not a valid UUID.
	ErrInvalidID = errors.New("invalid book id")
	// ErrNoFields is returned when an update carries no fields.
	ErrNoFields = errors.New("no fields to update")
	// ErrMalformedSort is returned for a sort clause without a field name.
	ErrMalformedSort = errors.New("malformed sort clause")
	// ErrMalformedFilter is returned for a filter clause that is not key*value.
	ErrMalformedFilter = errors.New("malformed filter clause")
)

// Book represents a stored book document.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a read-only document attached to a book.
type Comment struct {
	ID     string `json:"id"`
	BookID string `json:"book_id"`
	Body   string `json:"body"`
}

// Patch holds the fields supplied to an update. Nil fields keep their value.
type Patch struct {
	Title  *string
	Author *string
	Year   *int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Year == nil
}

// Fields returns the supplied fields keyed by document field name.
func (p Patch) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Author != nil {
		fields["author"] = *p.Author
	}
	if p.Year != nil {
		fields["year"] = *p.Year
	}
	return fields
}

// Apply returns b with the patch applied.
func (p Patch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Year != nil {
		b.Year = *p.Year
	}
	return b
}

// document is the jsonb layout of a book row.
type document struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

func (b Book) document() document {
	return document{Title: b.Title, Author: b.Author, Year: b.Year}
}
