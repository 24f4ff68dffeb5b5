package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// ValidEmail performs a shape check on an email address: exactly one
// '@' with a dotted domain after it.
func ValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	return strings.Contains(parts[1], ".")
}

// ValidPhone accepts an empty phone number (the field is optional)
// or any string containing at least ten digits.
func ValidPhone(phone string) bool {
	if phone == "" {
		return true
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 10
}

// ParseRating converts a rating string and reports whether it is an
// integer in [1,5].
func ParseRating(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}
