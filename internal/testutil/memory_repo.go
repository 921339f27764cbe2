package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookdoc/internal/book"
)

// MemoryRepo is an in-memory book.Repository with the same ordering rules
// as the Postgres one: requested sort fields, then insertion order.
type MemoryRepo struct {
	mu       sync.Mutex
	books    map[string]book.Book
	seq      map[string]int
	next     int
	comments map[string][]book.Comment
}

var _ book.Repository = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		books:    make(map[string]book.Book),
		seq:      make(map[string]int),
		comments: make(map[string][]book.Comment),
	}
}

// AddComment attaches a comment to a stored book.
func (m *MemoryRepo) AddComment(bookID, body string) book.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := book.Comment{ID: uuid.NewString(), BookID: bookID, Body: body}
	m.comments[bookID] = append(m.comments[bookID], c)
	return c
}

func (m *MemoryRepo) List(_ context.Context, q book.Query) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]book.Book, 0, len(m.books))
	for _, b := range m.books {
		if matches(b, q.Filter) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range q.Sort {
			c := compareField(out[i], out[j], s.Field)
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return m.seq[out[i].ID] < m.seq[out[j].ID]
	})
	return out, nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (m *MemoryRepo) Create(_ context.Context, b *book.Book) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	m.books[b.ID] = *b
	m.next++
	m.seq[b.ID] = m.next
	return len(m.books), nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, p book.Patch) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	b = p.Apply(b)
	m.books[id] = b
	return b, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(m.books, id)
	delete(m.seq, id)
	delete(m.comments, id)
	return nil
}

func (m *MemoryRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.books), nil
}

func (m *MemoryRepo) ListComments(_ context.Context, bookID string) ([]book.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]book.Comment(nil), m.comments[bookID]...), nil
}

// fieldText mirrors doc->>'field': the text form of a stored field, or false
// when the document has no such field.
func fieldText(b book.Book, field string) (string, bool) {
	switch field {
	case "title":
		return b.Title, true
	case "author":
		return b.Author, true
	case "year":
		return strconv.Itoa(b.Year), true
	}
	return "", false
}

func matches(b book.Book, filter map[string]string) bool {
	for k, v := range filter {
		got, ok := fieldText(b, k)
		if !ok || got != v {
			return false
		}
	}
	return true
}

func compareField(a, b book.Book, field string) int {
	if field == "year" {
		switch {
		case a.Year < b.Year:
			return -1
		case a.Year > b.Year:
			return 1
		}
		return 0
	}
	x, _ := fieldText(a, field)
	y, _ := fieldText(b, field)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
