package resource

import "bookdoc/internal/book"

// Resource is the flat {id, type, attributes} wrapper of a book.
type Resource struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

// Flat maps one book to its flat resource.
func Flat(b book.Book) Resource {
	return Resource{ID: b.ID, Type: bookType, Attributes: attributesOf(b)}
}

// FlatList maps every book independently, keeping result order.
func FlatList(books []book.Book) []Resource {
	out := make([]Resource, len(books))
	for i, b := range books {
		out[i] = Flat(b)
	}
	return out
}

type flatPresenter struct{}

func (flatPresenter) Version() Version      { return V2 }
func (flatPresenter) ContentType() string   { return "application/json" }
func (flatPresenter) IncludesRelated() bool { return false }

func (flatPresenter) Collection(books []book.Book) any {
	return dataEnvelope{Data: FlatList(books)}
}

func (flatPresenter) Sorted(books []book.Book) any {
	return dataEnvelope{Data: FlatList(books)}
}

func (flatPresenter) Single(b book.Book, _ []book.Comment) any {
	return dataEnvelope{Data: Flat(b)}
}

func (flatPresenter) Created(b book.Book, _ int) any {
	return dataEnvelope{Data: Flat(b)}
}

func (flatPresenter) Updated(b book.Book) any {
	return dataEnvelope{Data: Flat(b)}
}

func (flatPresenter) Deleted() any {
	return messageEnvelope{Message: deletedMessage}
}

func (flatPresenter) Error(_ int, code, message string, details []ErrorDetail) any {
	return plainError(code, message, details)
}
