// Package validation collects field-level validation failures for domain entities.
package validation

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError reports one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the result of validating an entity. A nil or empty Errors means valid.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation: " + strings.Join(msgs, "; ")
}

// Err returns e as an error, or nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Has reports whether field failed at least one rule.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Checker accumulates failures; each rule is skipped for fields that already failed.
type Checker struct {
	errs Errors
}

func (c *Checker) Errors() Errors { return c.errs }

func (c *Checker) Fail(field, msg string) {
	if c.errs.Has(field) {
		return
	}
	c.errs = append(c.errs, FieldError{Field: field, Message: msg})
}

func (c *Checker) Check(ok bool, field, msg string) {
	if !ok {
		c.Fail(field, msg)
	}
}

func (c *Checker) Required(field, value, msg string) {
	c.Check(strings.TrimSpace(value) != "", field, msg)
}

func (c *Checker) MaxLen(field, value string, n int, msg string) {
	c.Check(utf8.RuneCountInString(value) <= n, field, msg)
}

// Email accepts empty values; pair with Required when the field is mandatory.
func (c *Checker) Email(field, value, msg string) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	c.Check(err == nil && addr.Address == value, field, msg)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{3,}$`)

func (c *Checker) Phone(field, value, msg string) {
	if value == "" {
		return
	}
	c.Check(phonePattern.MatchString(value), field, msg)
}

func (c *Checker) URL(field, value, msg string) {
	if value == "" {
		return
	}
	u, err := url.ParseRequestURI(value)
	c.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "", field, msg)
}
