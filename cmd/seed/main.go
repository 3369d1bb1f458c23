// Command seed populates the database with sample books and reviews.
// It is idempotent: a database that already holds books is left untouched.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/bookreviewd/internal/catalog"
	"github.com/unkn0wn-root/bookreviewd/internal/config"
	"github.com/unkn0wn-root/bookreviewd/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	existing, err := store.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("database already has data, skipping seed", zap.Int("books", len(existing)))
		return nil
	}

	books := []catalog.BookInput{
		{
			Title:           "The Great Gatsby",
			Author:          "F. Scott Fitzgerald",
			ISBN:            ptr("9780743273565"),
			PublicationYear: ptr(1925),
			Description:     ptr("A classic American novel about the Jazz Age"),
		},
		{
			Title:           "To Kill a Mockingbird",
			Author:          "Harper Lee",
			ISBN:            ptr("9780061120084"),
			PublicationYear: ptr(1960),
			Description:     ptr("A gripping tale of racial injustice and childhood innocence"),
		},
		{
			Title:           "1984",
			Author:          "George Orwell",
			ISBN:            ptr("9780451524935"),
			PublicationYear: ptr(1949),
			Description:     ptr("A dystopian social science fiction novel"),
		},
	}

	created := make([]catalog.Book, 0, len(books))
	for _, in := range books {
		book, err := store.InsertBook(ctx, in)
		if err != nil {
			return fmt.Errorf("seed book %q: %w", in.Title, err)
		}
		created = append(created, book)
	}

	reviews := []struct {
		book int
		in   catalog.ReviewInput
	}{
		{0, catalog.ReviewInput{ReviewerName: "Alice Johnson", Rating: 5, Comment: ptr("Absolutely brilliant! A masterpiece.")}},
		{0, catalog.ReviewInput{ReviewerName: "Bob Smith", Rating: 4, Comment: ptr("Great character development.")}},
		{1, catalog.ReviewInput{ReviewerName: "Carol Davis", Rating: 5, Comment: ptr("A powerful and moving story.")}},
		{2, catalog.ReviewInput{ReviewerName: "David Wilson", Rating: 4, Comment: ptr("Chilling and thought-provoking.")}},
	}
	for _, r := range reviews {
		if _, err := store.InsertReview(ctx, created[r.book].ID, r.in); err != nil {
			return fmt.Errorf("seed review by %q: %w", r.in.ReviewerName, err)
		}
	}

	log.Info("database seeded",
		zap.Int("books", len(created)),
		zap.Int("reviews", len(reviews)),
	)
	return nil
}

func ptr[T any](v T) *T { return &v }
