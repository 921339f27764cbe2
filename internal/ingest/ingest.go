// Package ingest imports books from Open Library subject searches.
package ingest

import (
	"context"

	"bookdoc/internal/book"
	"bookdoc/internal/platform/openlibrary"
)

type Config struct {
	Subjects []string
	// PerSubject caps the search results requested for each subject.
	PerSubject int
}

// Result summarizes one Run.
type Result struct {
	Found    int
	Imported int
	Skipped  int
}

type Searcher interface {
	SearchBooks(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
}

type BookCreator interface {
	Create(ctx context.Context, b *book.Book) (int, error)
}
