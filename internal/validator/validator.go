package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/booklab/booksearch/internal/model"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{1,4}$`)
	pricePattern = regexp.MustCompile(`^\d{0,8}(\.\d{1,4})?$`)
)

// Validator validates book records and search parameters before they reach
// the search layer. The core never validates; everything that can reject a
// record does so here.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// ValidateBook checks that a record is storable: non-empty title, author and
// genre, genre from the fixed set, and well-formed year and price strings.
func (v *Validator) ValidateBook(book model.Book) error {
	var errs []string
	if strings.TrimSpace(book.Title) == "" {
		errs = append(errs, "a book title is required")
	}
	if strings.TrimSpace(book.Author) == "" {
		errs = append(errs, "an author name is required")
	}
	if strings.TrimSpace(book.Genre) == "" {
		errs = append(errs, "a genre is required")
	} else if model.GenreFromString(book.Genre) == model.GenreUnknown {
		errs = append(errs, "genre must be one of: "+strings.Join(model.Genres(), ", "))
	}
	if !yearPattern.MatchString(book.Year) {
		errs = append(errs, "year must be a 1-4 digit number")
	}
	if book.Price == "" || !pricePattern.MatchString(book.Price) {
		errs = append(errs, "price must look like 16, 16.00 or 15.95")
	}
	if len(errs) > 0 {
		return errors.New("validation: " + strings.Join(errs, "; "))
	}
	return nil
}

// ValidateSearch checks a field/value search request from the API. The value
// may be any non-empty string; the field must be one the index can answer.
func (v *Validator) ValidateSearch(field, value string) error {
	switch field {
	case "title", "author", "title_author", "genre", "publisher":
	default:
		return errors.New("validation: field must be one of: title, author, title_author, genre, publisher")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("validation: a search value is required")
	}
	return nil
}

// ValidateAggregate checks a bucket-aggregation request. Aggregations only
// work on keyword fields, so the field list is fixed.
func (v *Validator) ValidateAggregate(field string) error {
	switch field {
	case "genre", "publisher.keyword", "author_last_name", "title.keyword":
		return nil
	}
	return errors.New("validation: aggregate field must be one of: genre, publisher.keyword, author_last_name, title.keyword")
}
