package book

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the books matching the query, in query order.
func (s *Service) List(ctx context.Context, q Query) ([]Book, error) {
	return s.repo.List(ctx, q)
}

// Get returns a book by its identity.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	id, err := canonicalID(id)
	if err != nil {
		return Book{}, err
	}
	return s.repo.Get(ctx, id)
}

// GetWithComments returns a book together with its comments.
func (s *Service) GetWithComments(ctx context.Context, id string) (Book, []Comment, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return Book{}, nil, err
	}
	comments, err := s.repo.ListComments(ctx, b.ID)
	if err != nil {
		return Book{}, nil, err
	}
	return b, comments, nil
}

// Create stores a new book and returns the collection size after the insert.
func (s *Service) Create(ctx context.Context, b *Book) (int, error) {
	return s.repo.Create(ctx, b)
}

// Update applies a partial update. The book must exist and the patch must
// carry at least one field.
func (s *Service) Update(ctx context.Context, id string, p Patch) (Book, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if p.Empty() {
		return Book{}, ErrNoFields
	}
	return s.repo.Update(ctx, current.ID, p)
}

// Delete removes a book by its identity.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := canonicalID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// canonicalID returns the hyphenated lower-case form of a UUID identity.
func canonicalID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return u.String(), nil
}
