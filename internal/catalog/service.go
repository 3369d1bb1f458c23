// Package catalog serves book and review data, orchestrating the persistent
// store and the cache gateway with a cache-aside protocol around the
// list-books query.
//
// Protocol:
//   - ListBooks checks the cache first; a decodable hit short-circuits the
//     store. On miss the store result is returned and written back with the
//     configured TTL, best-effort.
//   - CreateBook invalidates the cached listing after a durable insert and
//     before returning, so a caller that observed the create always sees the
//     new row on its next listing.
//   - A store failure propagates; stale cache data is never served in its
//     place. The only fallback direction is cache -> store.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/bookreviewd/internal/cache"
	"github.com/unkn0wn-root/bookreviewd/internal/cache/codec"
)

// BooksKey is the single cache key holding the full-catalog snapshot.
const BooksKey = "books:all"

// DefaultTTL bounds the staleness window of the cached listing.
const DefaultTTL = 300 * time.Second

// Store is the persistent collaborator. All methods may fail with a
// store-level error, which the service propagates unmodified.
type Store interface {
	ListBooks(ctx context.Context) ([]Book, error)
	GetBook(ctx context.Context, id int64) (Book, bool, error)
	InsertBook(ctx context.Context, in BookInput) (Book, error)
	BookExists(ctx context.Context, id int64) (bool, error)
	ListReviews(ctx context.Context, bookID int64) ([]Review, error)
	InsertReview(ctx context.Context, bookID int64, in ReviewInput) (Review, error)
}

// Service implements the catalog operations consumed by the HTTP adapter.
type Service struct {
	store    Store
	cache    *cache.Gateway
	codec    codec.Codec[[]Book]
	ttl      time.Duration
	validate *validator.Validate
	log      *zap.Logger
}

// Options configures a Service. Store and Cache are required; Codec defaults
// to JSON and TTL to DefaultTTL.
type Options struct {
	Store Store
	Cache *cache.Gateway
	Codec codec.Codec[[]Book]
	TTL   time.Duration
	Log   *zap.Logger
}

func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("catalog: store is required")
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("catalog: cache gateway is required")
	}
	s := &Service{
		store:    opts.Store,
		cache:    opts.Cache,
		codec:    opts.Codec,
		ttl:      opts.TTL,
		validate: newValidator(),
		log:      opts.Log,
	}
	if s.codec == nil {
		s.codec = codec.JSON[[]Book]{}
	}
	if s.ttl == 0 {
		s.ttl = DefaultTTL
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s, nil
}

// ListBooks returns the full catalog, serving from the cache when a valid
// snapshot exists and repopulating it otherwise.
func (s *Service) ListBooks(ctx context.Context) ([]Book, error) {
	if raw, ok := s.cache.Get(ctx, BooksKey); ok {
		books, err := s.codec.Decode(raw)
		if err == nil {
			s.log.Debug("serving books from cache", zap.Int("count", len(books)))
			return books, nil
		}
		// Undecodable snapshot: drop it and fall through to the store.
		s.log.Warn("cached snapshot undecodable, self-healing", zap.Error(err))
		s.cache.Delete(ctx, BooksKey)
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	s.log.Debug("retrieved books from store", zap.Int("count", len(books)))

	if raw, err := s.codec.Encode(books); err == nil {
		s.cache.Set(ctx, BooksKey, raw, s.ttl)
	} else {
		s.log.Warn("snapshot encode failed, skipping cache fill", zap.Error(err))
	}
	return books, nil
}

// CreateBook validates in, inserts it, and invalidates the cached listing.
// The invalidation runs unconditionally after a successful insert and before
// the method returns.
func (s *Service) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	if err := s.validate.Struct(in); err != nil {
		return Book{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	book, err := s.store.InsertBook(ctx, in)
	if err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	s.cache.Delete(ctx, BooksKey)
	return book, nil
}

// GetBook is a pure store read; the second return is false when absent.
func (s *Service) GetBook(ctx context.Context, id int64) (Book, error) {
	book, ok, err := s.store.GetBook(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	if !ok {
		return Book{}, ErrNotFound
	}
	return book, nil
}

// ListReviews returns the reviews for bookID ordered by creation time
// descending, or ErrNotFound when the book does not exist.
func (s *Service) ListReviews(ctx context.Context, bookID int64) ([]Review, error) {
	ok, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("check book %d: %w", bookID, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	reviews, err := s.store.ListReviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews for book %d: %w", bookID, err)
	}
	return reviews, nil
}

// CreateReview validates in and inserts it under bookID. Reviews are not part
// of the cached listing, so no invalidation happens here.
func (s *Service) CreateReview(ctx context.Context, bookID int64, in ReviewInput) (Review, error) {
	if err := s.validate.Struct(in); err != nil {
		return Review{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ok, err := s.store.BookExists(ctx, bookID)
	if err != nil {
		return Review{}, fmt.Errorf("check book %d: %w", bookID, err)
	}
	if !ok {
		return Review{}, ErrNotFound
	}
	review, err := s.store.InsertReview(ctx, bookID, in)
	if err != nil {
		return Review{}, fmt.Errorf("create review for book %d: %w", bookID, err)
	}
	return review, nil
}

// CacheStatus reports the gateway's live backend state for health reporting.
func (s *Service) CacheStatus(ctx context.Context) string {
	return s.cache.Status(ctx)
}

// CachedSnapshot peeks at the raw cached listing without touching the store.
// Used by the debug endpoint only.
func (s *Service) CachedSnapshot(ctx context.Context) ([]Book, bool) {
	raw, ok := s.cache.Get(ctx, BooksKey)
	if !ok {
		return nil, false
	}
	books, err := s.codec.Decode(raw)
	if err != nil {
		return nil, false
	}
	return books, true
}
