package catalog

import (
	"time"

	"github.com/Zhima-Mochi/minishop-bookshop/internal/domain/validation"
)

type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
	DateOfBirth *time.Time
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

func (c Customer) Validate() validation.Errors {
	var v validation.Checker
	v.Required("FirstName", c.FirstName, "First name is required")
	v.MaxLen("FirstName", c.FirstName, 50, "First name cannot exceed 50 characters")
	v.Required("LastName", c.LastName, "Last name is required")
	v.MaxLen("LastName", c.LastName, 50, "Last name cannot exceed 50 characters")
	v.Required("Email", c.Email, "Email is required")
	v.Email("Email", c.Email, "Please enter a valid email address")
	v.MaxLen("Email", c.Email, 100, "Email cannot exceed 100 characters")
	v.Phone("Phone", c.Phone, "Please enter a valid phone number")
	v.MaxLen("Phone", c.Phone, 20, "Phone number cannot exceed 20 characters")
	v.MaxLen("Address", c.Address, 200, "Address cannot exceed 200 characters")
	v.MaxLen("City", c.City, 100, "City cannot exceed 100 characters")
	v.MaxLen("State", c.State, 50, "State/Province cannot exceed 50 characters")
	v.MaxLen("PostalCode", c.PostalCode, 20, "Postal code cannot exceed 20 characters")
	v.MaxLen("Country", c.Country, 50, "Country cannot exceed 50 characters")
	return v.Errors()
}
