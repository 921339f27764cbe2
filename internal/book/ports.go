package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

// Repository defines the contract for book document storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, error)
	Get(ctx context.Context, id string) (Book, error)
	// Create assigns b its identity and returns the collection size after
	// the insert.
	Create(ctx context.Context, b *Book) (int, error)
	Update(ctx context.Context, id string, p Patch) (Book, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	ListComments(ctx context.Context, bookID string) ([]Comment, error)
}

// Cache stores serialized books by key. Set overwrites; SetNX stores only
// when the key is absent and reports whether it did.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetNX(ctx context.Context, key, value string) (bool, error)
}
