package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bookdoc/internal/book"
	"bookdoc/internal/httpx"
	"bookdoc/internal/resource"
)

// BookService is the part of book.Service the handlers call.
type BookService interface {
	List(ctx context.Context, q book.Query) ([]book.Book, error)
	Get(ctx context.Context, id string) (book.Book, error)
	GetWithComments(ctx context.Context, id string) (book.Book, []book.Comment, error)
	Create(ctx context.Context, b *book.Book) (int, error)
	Update(ctx context.Context, id string, p book.Patch) (book.Book, error)
	Delete(ctx context.Context, id string) error
}

// BookHandler serves the book routes of one API version.
type BookHandler struct {
	svc       BookService
	presenter resource.Presenter
	logger    *zap.Logger
}

func NewBookHandler(svc BookService, presenter resource.Presenter, logger *zap.Logger) *BookHandler {
	return &BookHandler{svc: svc, presenter: presenter, logger: logger}
}

type createBookInput struct {
	Title  string `form:"title" validate:"required,nocontrol"`
	Author string `form:"author" validate:"required,nocontrol"`
	Year   string `form:"year" validate:"required,number"`
}

type updateBookInput struct {
	BookID string  `form:"book_id" validate:"required"`
	Title  *string `form:"title" validate:"omitnil,nocontrol"`
	Author *string `form:"author" validate:"omitnil,nocontrol"`
	Year   *string `form:"year" validate:"omitnil,number"`
}

type bookIDInput struct {
	BookID string `form:"book_id" validate:"required"`
}

// ListBooks returns every stored book.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.List(r.Context(), book.Query{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.write(w, http.StatusOK, h.presenter.Collection(books))
}

// SortBooks returns the books matching ?filter=, ordered by ?sort=.
func (h *BookHandler) SortBooks(w http.ResponseWriter, r *http.Request) {
	q, err := book.ParseQuery(r.URL.Query().Get("sort"), r.URL.Query().Get("filter"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	books, err := h.svc.List(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.write(w, http.StatusOK, h.presenter.Sorted(books))
}

// FindBook returns one book. Versions that render related resources also
// get its comments.
func (h *BookHandler) FindBook(w http.ResponseWriter, r *http.Request) {
	var in bookIDInput
	if !h.bind(w, r, &in) {
		return
	}

	var (
		b        book.Book
		comments []book.Comment
		err      error
	)
	if h.presenter.IncludesRelated() {
		b, comments, err = h.svc.GetWithComments(r.Context(), in.BookID)
	} else {
		b, err = h.svc.Get(r.Context(), in.BookID)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.write(w, http.StatusOK, h.presenter.Single(b, comments))
}

// CreateBook stores a book from query or form fields.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var in createBookInput
	if !h.bind(w, r, &in) {
		return
	}
	year, ok := h.parseYear(w, in.Year)
	if !ok {
		return
	}

	b := book.Book{Title: in.Title, Author: in.Author, Year: year}
	total, err := h.svc.Create(r.Context(), &b)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.write(w, http.StatusCreated, h.presenter.Created(b, total))
}

// UpdateBook changes the supplied fields of a book. A field counts as
// supplied when its key is present, even with an empty value.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	var in updateBookInput
	if !h.bind(w, r, &in) {
		return
	}

	p := book.Patch{Title: in.Title, Author: in.Author}
	if in.Year != nil {
		year, ok := h.parseYear(w, *in.Year)
		if !ok {
			return
		}
		p.Year = &year
	}

	b, err := h.svc.Update(r.Context(), in.BookID, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.write(w, http.StatusOK, h.presenter.Updated(b))
}

// DeleteBook removes a book.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	var in bookIDInput
	if !h.bind(w, r, &in) {
		return
	}

	if err := h.svc.Delete(r.Context(), in.BookID); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.write(w, http.StatusOK, h.presenter.Deleted())
}

// bind fills dst from the request's query and form values and validates it.
// It writes the error response and returns false on failure.
func (h *BookHandler) bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := r.ParseForm(); err != nil {
		h.writeStatus(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid form data", nil)
		return false
	}
	if err := decodeForm(r.Form, dst); err != nil {
		h.writeStatus(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return false
	}
	if errs := httpx.ValidateStruct(dst); len(errs) > 0 {
		h.writeStatus(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", toResourceDetails(errs))
		return false
	}
	return true
}

// parseYear converts a validated digit string, rejecting values that do not
// fit an int.
func (h *BookHandler) parseYear(w http.ResponseWriter, s string) (int, bool) {
	year, err := strconv.Atoi(s)
	if err != nil || year < 0 {
		h.writeStatus(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", []resource.ErrorDetail{
			{Field: "year", Message: "year must be a non-negative integer"},
		})
		return 0, false
	}
	return year, true
}

func (h *BookHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, book.ErrInvalidID):
		h.writeStatus(w, http.StatusBadRequest, "INVALID_ID", "Invalid book id", nil)
	case errors.Is(err, book.ErrNotFound):
		h.writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, book.ErrNoFields):
		h.writeStatus(w, http.StatusBadRequest, "NO_FIELDS", "No fields to update", nil)
	case errors.Is(err, book.ErrMalformedSort), errors.Is(err, book.ErrMalformedFilter):
		h.writeStatus(w, http.StatusBadRequest, "INVALID_QUERY", err.Error(), nil)
	default:
		h.logger.Error("book request failed",
			zap.String("request_id", httpx.RequestIDFrom(r)),
			zap.String("path", r.URL.Path),
			zap.String("version", h.presenter.Version().String()),
			zap.Error(err),
		)
		h.writeStatus(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}

// RouteNotFound answers paths outside the route table in this version's
// error format.
func (h *BookHandler) RouteNotFound(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
}

// MethodNotAllowed answers a known path requested with the wrong method.
func (h *BookHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeStatus(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}

func (h *BookHandler) writeStatus(w http.ResponseWriter, status int, code, message string, details []resource.ErrorDetail) {
	h.write(w, status, h.presenter.Error(status, code, message, details))
}

func (h *BookHandler) write(w http.ResponseWriter, status int, body interface{}) {
	httpx.WriteJSON(w, status, h.presenter.ContentType(), body)
}

func toResourceDetails(errs []httpx.ErrorDetail) []resource.ErrorDetail {
	out := make([]resource.ErrorDetail, len(errs))
	for i, e := range errs {
		out[i] = resource.ErrorDetail{Field: e.Field, Message: e.Message}
	}
	return out
}
