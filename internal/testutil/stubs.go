package testutil

import (
	"github.com/brianvoe/gofakeit/v6"

	"bookdoc/internal/book"
)

// FakeBook returns an unsaved book with random attributes.
func FakeBook() book.Book {
	return book.Book{
		Title:  gofakeit.BookTitle(),
		Author: gofakeit.BookAuthor(),
		Year:   gofakeit.Number(1800, 2024),
	}
}

// FakeBooks returns n unsaved books.
func FakeBooks(n int) []book.Book {
	out := make([]book.Book, n)
	for i := range out {
		out[i] = FakeBook()
	}
	return out
}
