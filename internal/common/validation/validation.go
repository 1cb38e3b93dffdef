package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength  = 128
	MaxEmailLength = 254
	MaxUnitLength  = 32
)

// Telegram usernames: letters, digits and underscores, 5-32 characters.
var telegramUsernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{5,32}$`)

// E.164 with an optional leading plus, separators already stripped.
var phoneRegex = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

var unitRegex = regexp.MustCompile(`^[\p{L}0-9][\p{L}0-9 ./-]*$`)

// FieldError names the offending field so clients can highlight it.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidateUsername accepts an empty value, which clears the field.
func ValidateUsername(username string) error {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil
	}
	if !telegramUsernameRegex.MatchString(username) {
		return &FieldError{Field: "username", Reason: "must be 5-32 letters, digits or underscores"}
	}
	return nil
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &FieldError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxNameLength)}
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if len(email) > MaxEmailLength {
		return &FieldError{Field: "email", Reason: fmt.Sprintf("must be at most %d characters", MaxEmailLength)}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &FieldError{Field: "email", Reason: "must be a valid address"}
	}
	return nil
}

// ValidatePhone ignores spaces, dashes and parentheses.
func ValidatePhone(phone string) error {
	phone = NormalizePhone(phone)
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return &FieldError{Field: "phone", Reason: "must be 6-15 digits with an optional leading +"}
	}
	return nil
}

func ValidateUnit(unit string) error {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return nil
	}
	if utf8.RuneCountInString(unit) > MaxUnitLength {
		return &FieldError{Field: "unit", Reason: fmt.Sprintf("must be at most %d characters", MaxUnitLength)}
	}
	if !unitRegex.MatchString(unit) {
		return &FieldError{Field: "unit", Reason: "contains unsupported characters"}
	}
	return nil
}

// NormalizePhone strips the separators people type into phone fields.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// Optional runs check only when v is set.
func Optional(v *string, check func(string) error) error {
	if v == nil {
		return nil
	}
	return check(*v)
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
