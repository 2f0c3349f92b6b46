package catalog

import "github.com/Zhima-Mochi/minishop-bookshop/internal/domain/validation"

type Shop struct {
	ID          int64
	Name        string
	Location    string
	Address     string
	Phone       string
	Email       string
	Website     string
	OpeningYear *int
}

func (s Shop) Validate() validation.Errors {
	var c validation.Checker
	c.Required("Name", s.Name, "Shop name is required")
	c.MaxLen("Name", s.Name, 100, "Shop name cannot exceed 100 characters")
	c.Required("Location", s.Location, "Location is required")
	c.MaxLen("Location", s.Location, 200, "Location cannot exceed 200 characters")
	c.MaxLen("Address", s.Address, 500, "Address cannot exceed 500 characters")
	c.Phone("Phone", s.Phone, "Please enter a valid phone number")
	c.MaxLen("Phone", s.Phone, 20, "Phone number cannot exceed 20 characters")
	c.Email("Email", s.Email, "Please enter a valid email address")
	c.MaxLen("Email", s.Email, 100, "Email cannot exceed 100 characters")
	c.URL("Website", s.Website, "Please enter a valid URL")
	c.MaxLen("Website", s.Website, 100, "Website cannot exceed 100 characters")
	c.Check(s.OpeningYear == nil || *s.OpeningYear >= 0, "OpeningYear", "Opening year must be non-negative")
	return c.Errors()
}
