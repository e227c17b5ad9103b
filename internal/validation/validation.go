package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	MaxNameLength  = 100
	MaxTitleLength = 200
	MaxBodyLength  = 10000
)

// ValidGenders are the accepted gender values; empty means unspecified.
var ValidGenders = []string{"female", "male"}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a person's name is valid
func ValidateName(name string) error {
	return validateText("name", name, 2, MaxNameLength)
}

// ValidateChildName allows single-letter nicknames
func ValidateChildName(name string) error {
	return validateText("name", name, 1, MaxNameLength)
}

// ValidateGender accepts an empty value or one of ValidGenders
func ValidateGender(gender string) error {
	if gender == "" {
		return nil
	}
	for _, g := range ValidGenders {
		if gender == g {
			return nil
		}
	}
	return ValidationError{Field: "gender", Message: "gender must be one of " + strings.Join(ValidGenders, ", ")}
}

// ValidateNote checks a note's title and body
func ValidateNote(title, body string) error {
	if err := validateText("title", title, 1, MaxTitleLength); err != nil {
		return err
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return ValidationError{Field: "body", Message: fmt.Sprintf("body must be at most %d characters", MaxBodyLength)}
	}
	return nil
}

func validateText(field, value string, min, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	n := utf8.RuneCountInString(value)
	if n < min {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, min)}
	}
	if n > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
	}
	return nil
}
