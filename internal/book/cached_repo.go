package book

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "book:"

// tombstone replaces the entry of a book that was updated or deleted. Fills
// use SetNX and so never replace it, which keeps a read that raced the write
// from caching the old document. The key is cached normally again once the
// tombstone expires.
const tombstone = "-"

// CachedRepository is a read-through cache in front of a Repository. Single
// book lookups are cached; writes leave a tombstone on the affected key.
// Cache errors are logged and the underlying repository answers instead.
type CachedRepository struct {
	Repository
	cache  Cache
	logger *zap.Logger
}

func NewCachedRepository(repo Repository, cache Cache, logger *zap.Logger) *CachedRepository {
	return &CachedRepository{Repository: repo, cache: cache, logger: logger}
}

func cacheKey(id string) string {
	return cacheKeyPrefix + id
}

func (r *CachedRepository) Get(ctx context.Context, id string) (Book, error) {
	key := cacheKey(id)
	fill := true

	if cached, found, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if found {
		if cached == tombstone {
			fill = false
		} else {
			var b Book
			if err := json.Unmarshal([]byte(cached), &b); err == nil {
				r.logger.Debug("cache hit", zap.String("key", key))
				return b, nil
			}
			r.logger.Warn("ignoring undecodable cache entry", zap.String("key", key))
			fill = false
		}
	}

	b, err := r.Repository.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if fill {
		r.fill(ctx, key, b)
	}
	return b, nil
}

func (r *CachedRepository) Update(ctx context.Context, id string, p Patch) (Book, error) {
	b, err := r.Repository.Update(ctx, id, p)
	r.invalidate(ctx, id)
	return b, err
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	err := r.Repository.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

func (r *CachedRepository) fill(ctx context.Context, key string, b Book) {
	data, err := json.Marshal(b)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	stored, err := r.cache.SetNX(ctx, key, string(data))
	if err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if !stored {
		r.logger.Debug("cache fill lost to a concurrent write", zap.String("key", key))
	}
}

func (r *CachedRepository) invalidate(ctx context.Context, id string) {
	key := cacheKey(id)
	if err := r.cache.Set(ctx, key, tombstone); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
