// Package leads captures buyer and renter inquiries from the contact form
// and stores them for the brokerage's admin dashboard.
package leads

import (
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Field limits.
const (
	MaxNameLen    = 120
	MaxMessageLen = 2000
	minPhone      = 10
	maxPhone      = 15
)

// Form is the submitted contact form.
type Form struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Message  string `form:"message" json:"message"`
	Property string `form:"property" json:"property"` // optional property slug the inquiry is about
	Source   string `form:"source" json:"source"`     // page path the form was submitted from
}

// Normalize trims surrounding whitespace from every field.
func (f Form) Normalize() Form {
	return Form{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Message:  strings.TrimSpace(f.Message),
		Property: strings.TrimSpace(f.Property),
		Source:   strings.TrimSpace(f.Source),
	}
}

// ValidationErrors maps a form field to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f]
	}
	return "invalid lead: " + strings.Join(parts, "; ")
}

// Validate checks a normalized form. knownProperty reports whether a
// property slug exists; it may be nil when the check is not needed.
// It returns nil when the form is acceptable.
func Validate(f Form, knownProperty func(slug string) bool) ValidationErrors {
	errs := ValidationErrors{}
	switch {
	case f.Name == "":
		errs["name"] = "Please tell us your name."
	case utf8.RuneCountInString(f.Name) > MaxNameLen:
		errs["name"] = "Name is too long."
	}

	if f.Email == "" {
		errs["email"] = "An email address is required."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs["email"] = "That email address doesn't look right."
	}

	if f.Phone != "" {
		n := digits(f.Phone)
		if n < minPhone || n > maxPhone {
			errs["phone"] = "Phone numbers need 10 to 15 digits."
		}
	}

	if utf8.RuneCountInString(f.Message) > MaxMessageLen {
		errs["message"] = "Message is too long."
	}

	if f.Property != "" && knownProperty != nil && !knownProperty(f.Property) {
		errs["property"] = "Unknown property."
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func digits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Lead is a stored inquiry.
type Lead struct {
	ID        string
	Form      Form
	IPHash    string
	CreatedAt time.Time
}
