package resource

import "bookdoc/internal/book"

// rawBook echoes the stored document with its identity stringified.
type rawBook struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
}

func rawOf(b book.Book) rawBook {
	return rawBook{ID: b.ID, Title: b.Title, Author: b.Author, Year: b.Year}
}

func rawList(books []book.Book) []rawBook {
	out := make([]rawBook, len(books))
	for i, b := range books {
		out[i] = rawOf(b)
	}
	return out
}

type rawPresenter struct{}

func (rawPresenter) Version() Version      { return V1 }
func (rawPresenter) ContentType() string   { return "application/json" }
func (rawPresenter) IncludesRelated() bool { return false }

func (rawPresenter) Collection(books []book.Book) any {
	return dataEnvelope{Data: rawList(books)}
}

func (rawPresenter) Sorted(books []book.Book) any {
	return dataEnvelope{Data: rawList(books)}
}

func (rawPresenter) Single(b book.Book, _ []book.Comment) any {
	return dataEnvelope{Data: rawOf(b)}
}

func (rawPresenter) Created(b book.Book, _ int) any {
	return dataEnvelope{Data: rawOf(b)}
}

func (rawPresenter) Updated(b book.Book) any {
	return dataEnvelope{Data: rawOf(b)}
}

func (rawPresenter) Deleted() any {
	return messageEnvelope{Message: deletedMessage}
}

func (rawPresenter) Error(_ int, code, message string, details []ErrorDetail) any {
	return plainError(code, message, details)
}
