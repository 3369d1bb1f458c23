// Package sqlite provides the SQLite-backed catalog store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/unkn0wn-root/bookreviewd/internal/catalog"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  author TEXT NOT NULL,
  isbn TEXT UNIQUE,
  publication_year INTEGER,
  description TEXT,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);

CREATE TABLE IF NOT EXISTS reviews (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
  reviewer_name TEXT NOT NULL,
  rating INTEGER NOT NULL,
  comment TEXT,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_book_id ON reviews(book_id);
CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);
`

// Store persists books and reviews in SQLite. Timestamps are stored as UTC
// unix milliseconds.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ catalog.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the catalog store at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ListBooks returns every book ordered by id ascending.
func (s *Store) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, title, author, isbn, publication_year, description, created_at
		 FROM books ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]catalog.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// GetBook returns the book with the given id; the second return is false when
// no such row exists.
func (s *Store) GetBook(ctx context.Context, id int64) (catalog.Book, bool, error) {
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, title, author, isbn, publication_year, description, created_at
		 FROM books WHERE id = ?`,
		id,
	)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, false, nil
	}
	if err != nil {
		return catalog.Book{}, false, fmt.Errorf("get book: %w", err)
	}
	return book, true, nil
}

// InsertBook inserts one book and returns it with the store-assigned id and
// creation timestamp.
func (s *Store) InsertBook(ctx context.Context, in catalog.BookInput) (catalog.Book, error) {
	createdAt := s.now().UTC().Truncate(time.Millisecond)
	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO books (title, author, isbn, publication_year, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title,
		in.Author,
		nullString(in.ISBN),
		nullInt(in.PublicationYear),
		nullString(in.Description),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err, "books.isbn") {
			return catalog.Book{}, catalog.ErrDuplicateISBN
		}
		return catalog.Book{}, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return catalog.Book{}, fmt.Errorf("insert book id: %w", err)
	}
	return catalog.Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		PublicationYear: in.PublicationYear,
		Description:     in.Description,
		CreatedAt:       createdAt,
	}, nil
}

// BookExists reports whether a book row with the given id exists.
func (s *Store) BookExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("book exists: %w", err)
	}
	return true, nil
}

// ListReviews returns the reviews for bookID ordered by creation time
// descending, newest first. Ties break on id descending so the order stays
// deterministic within one millisecond.
func (s *Store) ListReviews(ctx context.Context, bookID int64) ([]catalog.Review, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, book_id, reviewer_name, rating, comment, created_at
		 FROM reviews WHERE book_id = ? ORDER BY created_at DESC, id DESC`,
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]catalog.Review, 0)
	for rows.Next() {
		var (
			review  catalog.Review
			comment sql.NullString
			created int64
		)
		if err := rows.Scan(&review.ID, &review.BookID, &review.ReviewerName, &review.Rating, &comment, &created); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if comment.Valid {
			review.Comment = &comment.String
		}
		review.CreatedAt = fromMillis(created)
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// InsertReview inserts one review under bookID and returns it with the
// store-assigned fields.
func (s *Store) InsertReview(ctx context.Context, bookID int64, in catalog.ReviewInput) (catalog.Review, error) {
	createdAt := s.now().UTC().Truncate(time.Millisecond)
	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO reviews (book_id, reviewer_name, rating, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		bookID,
		in.ReviewerName,
		in.Rating,
		nullString(in.Comment),
		toMillis(createdAt),
	)
	if err != nil {
		return catalog.Review{}, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return catalog.Review{}, fmt.Errorf("insert review id: %w", err)
	}
	return catalog.Review{
		ID:           id,
		BookID:       bookID,
		ReviewerName: in.ReviewerName,
		Rating:       in.Rating,
		Comment:      in.Comment,
		CreatedAt:    createdAt,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (catalog.Book, error) {
	var (
		book    catalog.Book
		isbn    sql.NullString
		year    sql.NullInt64
		desc    sql.NullString
		created int64
	)
	if err := row.Scan(&book.ID, &book.Title, &book.Author, &isbn, &year, &desc, &created); err != nil {
		return catalog.Book{}, err
	}
	if isbn.Valid {
		book.ISBN = &isbn.String
	}
	if year.Valid {
		y := int(year.Int64)
		book.PublicationYear = &y
	}
	if desc.Valid {
		book.Description = &desc.String
	}
	book.CreatedAt = fromMillis(created)
	return book, nil
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, column)
}
