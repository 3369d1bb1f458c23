package catalog

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

// Book is the external representation of a catalog entry. ID and CreatedAt
// are store-assigned and immutable.
type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn"`
	PublicationYear *int      `json:"publication_year"`
	Description     *string   `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
}

// Review belongs to exactly one book and never outlives it.
type Review struct {
	ID           int64     `json:"id"`
	BookID       int64     `json:"book_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookInput carries the client-supplied fields for creating a book.
type BookInput struct {
	Title           string  `json:"title" validate:"required,max=255"`
	Author          string  `json:"author" validate:"required,max=255"`
	ISBN            *string `json:"isbn" validate:"omitempty,isbn1013"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=1000,lte=2030"`
	Description     *string `json:"description"`
}

// ReviewInput carries the client-supplied fields for creating a review.
type ReviewInput struct {
	ReviewerName string  `json:"reviewer_name" validate:"required,max=255"`
	Rating       int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment      *string `json:"comment"`
}

// 10 or 13 digit numeric string.
var isbnPattern = regexp.MustCompile(`^\d{10}(\d{3})?$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// validator's built-in isbn10/isbn13 verify check digits; the catalog only
	// requires the digit shape, so register the narrower rule.
	_ = v.RegisterValidation("isbn1013", func(fl validator.FieldLevel) bool {
		return isbnPattern.MatchString(fl.Field().String())
	})
	return v
}
