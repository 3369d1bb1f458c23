package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/bookreviewd/internal/catalog"
)

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Book Review Service API"})
}

// listBooks handles GET /books.
func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.catalog.ListBooks(r.Context())
	if err != nil {
		s.serviceError(w, err, "failed to fetch books")
		return
	}
	s.respondJSON(w, http.StatusOK, books)
}

// createBook handles POST /books.
func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	var in catalog.BookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	book, err := s.catalog.CreateBook(r.Context(), in)
	if err != nil {
		s.serviceError(w, err, "failed to create book")
		return
	}
	s.respondJSON(w, http.StatusCreated, book)
}

// getBook handles GET /books/{bookID}.
func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookID(w, r)
	if !ok {
		return
	}
	book, err := s.catalog.GetBook(r.Context(), id)
	if err != nil {
		s.serviceError(w, err, "failed to fetch book")
		return
	}
	s.respondJSON(w, http.StatusOK, book)
}

// listReviews handles GET /books/{bookID}/reviews.
func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookID(w, r)
	if !ok {
		return
	}
	reviews, err := s.catalog.ListReviews(r.Context(), id)
	if err != nil {
		s.serviceError(w, err, "failed to fetch reviews")
		return
	}
	s.respondJSON(w, http.StatusOK, reviews)
}

// createReview handles POST /books/{bookID}/reviews.
func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.bookID(w, r)
	if !ok {
		return
	}
	var in catalog.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	review, err := s.catalog.CreateReview(r.Context(), id, in)
	if err != nil {
		s.serviceError(w, err, "failed to create review")
		return
	}
	s.respondJSON(w, http.StatusCreated, review)
}

// health handles GET /health. A cache outage is reported here but never
// degrades the status: the cache is an optimization, not a dependency.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "sqlite",
		"cache":    s.catalog.CacheStatus(r.Context()),
	})
}

// debugCache handles GET /debug-cache and exposes the current snapshot state.
func (s *Server) debugCache(w http.ResponseWriter, r *http.Request) {
	books, ok := s.catalog.CachedSnapshot(r.Context())
	payload := map[string]any{"present": ok}
	if ok {
		payload["content"] = books
	}
	s.respondJSON(w, http.StatusOK, payload)
}

func (s *Server) bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid book id")
		return 0, false
	}
	return id, true
}

// serviceError maps the catalog error taxonomy onto HTTP statuses. Unknown
// errors are store-level failures: logged in full, surfaced generically.
func (s *Server) serviceError(w http.ResponseWriter, err error, generic string) {
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, catalog.ErrDuplicateISBN):
		s.respondError(w, http.StatusConflict, catalog.ErrDuplicateISBN.Error())
	default:
		s.log.Error(generic, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, generic)
	}
}
