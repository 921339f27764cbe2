package resource

import (
	"net/url"
	"strconv"
	"strings"

	"bookdoc/internal/book"

	"github.com/google/jsonapi"
	"github.com/google/uuid"
)

// Placeholder pagination; the collection is never actually paged.
const (
	nextPageOffset = 2
	lastPageOffset = 10
)

type documentPresenter struct {
	base string
}

func newDocumentPresenter(baseURL string) documentPresenter {
	return documentPresenter{base: strings.TrimRight(baseURL, "/") + "/" + V3.String()}
}

func (documentPresenter) Version() Version      { return V3 }
func (documentPresenter) ContentType() string   { return jsonapi.MediaType }
func (documentPresenter) IncludesRelated() bool { return true }

func (d documentPresenter) Collection(books []book.Book) any {
	return countedEnvelope{Count: len(books), Data: d.nodes(books)}
}

func (d documentPresenter) Sorted(books []book.Book) any {
	return &jsonapi.ManyPayload{Data: d.nodes(books)}
}

// Single renders the full relationship document: the book with its author
// and comments relationships, and the related resources side-loaded into
// included.
func (d documentPresenter) Single(b book.Book, comments []book.Comment) any {
	node := d.node(b)
	author := d.authorStub(b)

	commentRefs := make([]*jsonapi.Node, len(comments))
	included := make([]*jsonapi.Node, 0, len(comments)+1)
	included = append(included, author)
	for i, c := range comments {
		commentRefs[i] = &jsonapi.Node{Type: commentType, ID: c.ID}
		included = append(included, d.commentNode(c))
	}

	node.Relationships = map[string]interface{}{
		"author":   &jsonapi.RelationshipOneNode{Data: author},
		"comments": &jsonapi.RelationshipManyNode{Data: commentRefs},
	}

	return &jsonapi.OnePayload{
		Data:     node,
		Included: included,
		Links: &jsonapi.Links{
			"self": d.bookLink(b.ID),
			"next": d.pageLink(nextPageOffset),
			"last": d.pageLink(lastPageOffset),
		},
	}
}

func (d documentPresenter) Created(b book.Book, total int) any {
	return countedEnvelope{Count: total, Data: d.node(b)}
}

func (documentPresenter) Updated(b book.Book) any {
	return dataEnvelope{Data: attributesOf(b)}
}

func (documentPresenter) Deleted() any {
	return messageEnvelope{Message: deletedMessage}
}

func (documentPresenter) Error(status int, code, message string, details []ErrorDetail) any {
	statusText := strconv.Itoa(status)
	if len(details) == 0 {
		return &jsonapi.ErrorsPayload{Errors: []*jsonapi.ErrorObject{{
			Status: statusText,
			Code:   code,
			Title:  message,
			Detail: message,
		}}}
	}
	errs := make([]*jsonapi.ErrorObject, len(details))
	for i, detail := range details {
		meta := map[string]interface{}{"field": detail.Field}
		errs[i] = &jsonapi.ErrorObject{
			Status: statusText,
			Code:   code,
			Title:  message,
			Detail: detail.Message,
			Meta:   &meta,
		}
	}
	return &jsonapi.ErrorsPayload{Errors: errs}
}

func (d documentPresenter) node(b book.Book) *jsonapi.Node {
	return &jsonapi.Node{
		Type: bookType,
		ID:   b.ID,
		Attributes: map[string]interface{}{
			"title":  b.Title,
			"author": b.Author,
			"year":   b.Year,
		},
		Links: &jsonapi.Links{"self": d.bookLink(b.ID)},
	}
}

func (d documentPresenter) nodes(books []book.Book) []*jsonapi.Node {
	out := make([]*jsonapi.Node, len(books))
	for i, b := range books {
		out[i] = d.node(b)
	}
	return out
}

// authorStub derives a people resource from the author text. The same
// author always maps to the same id.
func (d documentPresenter) authorStub(b book.Book) *jsonapi.Node {
	id := AuthorID(b.Author)
	return &jsonapi.Node{
		Type: peopleType,
		ID:   id,
		Links: &jsonapi.Links{
			"self":    d.base + "/people/" + id,
			"related": d.base + "/Sort_books?filter=" + url.QueryEscape("author*"+b.Author),
		},
	}
}

func (d documentPresenter) commentNode(c book.Comment) *jsonapi.Node {
	return &jsonapi.Node{
		Type:       commentType,
		ID:         c.ID,
		Attributes: map[string]interface{}{"body": c.Body},
		Links:      &jsonapi.Links{"self": d.base + "/comments/" + c.ID},
	}
}

func (d documentPresenter) bookLink(id string) string {
	return d.base + "/Find_Book?book_id=" + url.QueryEscape(id)
}

func (d documentPresenter) pageLink(offset int) string {
	return d.base + "/List_Of_Books?page[offset]=" + strconv.Itoa(offset)
}

// AuthorID is the synthetic people identity for an author name.
func AuthorID(author string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(author)).String()
}
