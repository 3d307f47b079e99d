// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks basic email shape.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateUsername checks length and allowed characters.
func ValidateUsername(username string) error {
	if len(username) < 2 || len(username) > 40 {
		return fmt.Errorf("username must be between 2 and 40 characters")
	}
	return nil
}

// ValidatePassword enforces the minimum password length shared by
// signup and password reset.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// AnyBlank reports whether any of the given fields is empty or
// whitespace-only.
func AnyBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
