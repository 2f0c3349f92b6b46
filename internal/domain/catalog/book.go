// Package catalog holds the reference entities orders point at: books, shops and customers.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/validation"
)

type Book struct {
	ID              int64
	Title           string
	Author          string
	ISBN            string
	Price           decimal.Decimal
	Description     string
	PublicationYear *int
	Genre           string
}

func (b Book) Validate() validation.Errors {
	var c validation.Checker
	c.Required("Title", b.Title, "Title is required")
	c.MaxLen("Title", b.Title, 200, "Title cannot exceed 200 characters")
	c.Required("Author", b.Author, "Author is required")
	c.MaxLen("Author", b.Author, 100, "Author name cannot exceed 100 characters")
	c.Required("ISBN", b.ISBN, "ISBN is required")
	c.Check(ValidISBN(b.ISBN), "ISBN", "Please enter a valid ISBN")
	c.Check(b.Price.IsPositive(), "Price", "Price must be greater than 0")
	c.MaxLen("Description", b.Description, 1000, "Description cannot exceed 1000 characters")
	c.Check(b.PublicationYear == nil || *b.PublicationYear >= 0, "PublicationYear", "Publication year must be non-negative")
	c.MaxLen("Genre", b.Genre, 50, "Genre cannot exceed 50 characters")
	return c.Errors()
}

// ValidISBN accepts ISBN-10 and ISBN-13 shapes, with an optional "ISBN", "ISBN-10:"
// or "ISBN-13:" prefix and hyphen or space group separators. Check digits are not verified.
func ValidISBN(s string) bool {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"ISBN-13:", "ISBN-10:", "ISBN-13", "ISBN-10", "ISBN:", "ISBN"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
			break
		}
	}
	if s == "" || strings.ContainsAny(s[:1], "- ") || strings.ContainsAny(s[len(s)-1:], "- ") {
		return false
	}

	digits := make([]byte, 0, 13)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			digits = append(digits, ch)
		case ch == 'X' && i == len(s)-1:
			digits = append(digits, ch)
		case ch == '-' || ch == ' ':
			if s[i-1] == '-' || s[i-1] == ' ' {
				return false
			}
		default:
			return false
		}
	}

	switch len(digits) {
	case 10:
		return true
	case 13:
		return digits[12] != 'X' && (string(digits[:3]) == "978" || string(digits[:3]) == "979")
	default:
		return false
	}
}
