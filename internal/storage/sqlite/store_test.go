package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/unkn0wn-root/bookreviewd/internal/catalog"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open temp store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestInsertGetBookRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	in := catalog.BookInput{
		Title:           "The Great Gatsby",
		Author:          "F. Scott Fitzgerald",
		ISBN:            strptr("9780743273565"),
		PublicationYear: intptr(1925),
		Description:     strptr("A classic American novel about the Jazz Age"),
	}
	created, err := store.InsertBook(ctx, in)
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("store must assign an id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("store must assign a creation timestamp")
	}

	got, ok, err := store.GetBook(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("get book: ok=%v err=%v", ok, err)
	}
	if got.Title != in.Title || got.Author != in.Author {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.ISBN == nil || *got.ISBN != *in.ISBN {
		t.Fatalf("isbn mismatch: %v", got.ISBN)
	}
	if got.PublicationYear == nil || *got.PublicationYear != 1925 {
		t.Fatalf("publication year mismatch: %v", got.PublicationYear)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at drift: stored %v, returned %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestOptionalFieldsStayNull(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	created, err := store.InsertBook(ctx, catalog.BookInput{Title: "Bare", Author: "Minimal"})
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}
	got, ok, err := store.GetBook(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("get book: ok=%v err=%v", ok, err)
	}
	if got.ISBN != nil || got.PublicationYear != nil || got.Description != nil {
		t.Fatalf("optional fields should be nil: %+v", got)
	}
}

func TestGetBookAbsent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, ok, err := store.GetBook(context.Background(), 42); err != nil || ok {
		t.Fatalf("absent book: ok=%v err=%v", ok, err)
	}
	if ok, err := store.BookExists(context.Background(), 42); err != nil || ok {
		t.Fatalf("absent exists: ok=%v err=%v", ok, err)
	}
}

func TestListBooksOrderedByID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		if _, err := store.InsertBook(ctx, catalog.BookInput{Title: title, Author: "A"}); err != nil {
			t.Fatalf("insert %q: %v", title, err)
		}
	}
	books, err := store.ListBooks(ctx)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("expected 3 books, got %d", len(books))
	}
	for i := 1; i < len(books); i++ {
		if books[i].ID <= books[i-1].ID {
			t.Fatalf("listing not ordered by id: %v then %v", books[i-1].ID, books[i].ID)
		}
	}
}

func TestDuplicateISBNRejected(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	in := catalog.BookInput{Title: "First", Author: "A", ISBN: strptr("9780451524935")}
	if _, err := store.InsertBook(ctx, in); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	in.Title = "Second"
	if _, err := store.InsertBook(ctx, in); !errors.Is(err, catalog.ErrDuplicateISBN) {
		t.Fatalf("expected ErrDuplicateISBN, got %v", err)
	}
}

func TestReviewsNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	book, err := store.InsertBook(ctx, catalog.BookInput{Title: "Dune", Author: "Frank Herbert"})
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}

	base := time.Date(2026, time.August, 29, 10, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}
	names := []string{"Oldest", "Middle", "Newest"}
	for i := range names {
		tt := times[i]
		store.now = func() time.Time { return tt }
		if _, err := store.InsertReview(ctx, book.ID, catalog.ReviewInput{ReviewerName: names[i], Rating: 4}); err != nil {
			t.Fatalf("insert review %q: %v", names[i], err)
		}
	}

	reviews, err := store.ListReviews(ctx, book.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(reviews))
	}
	want := []string{"Newest", "Middle", "Oldest"}
	for i, name := range want {
		if reviews[i].ReviewerName != name {
			t.Fatalf("position %d: got %q, want %q", i, reviews[i].ReviewerName, name)
		}
	}
}

func TestDeletingBookCascadesReviews(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	book, err := store.InsertBook(ctx, catalog.BookInput{Title: "Dune", Author: "Frank Herbert"})
	if err != nil {
		t.Fatalf("insert book: %v", err)
	}
	if _, err := store.InsertReview(ctx, book.ID, catalog.ReviewInput{ReviewerName: "R", Rating: 5}); err != nil {
		t.Fatalf("insert review: %v", err)
	}

	if _, err := store.sqlDB.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	reviews, err := store.ListReviews(ctx, book.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 0 {
		t.Fatalf("reviews must not outlive their book, got %d", len(reviews))
	}
}
