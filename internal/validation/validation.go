package validation

import (
	"net/mail"
	"strings"
)

// ValidateEmail checks that an address parses as a bare RFC 5322 address.
func ValidateEmail(address string) bool {
	if address == "" || len(address) > 254 {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	// reject display-name forms like "Bob <bob@example.com>"
	return parsed.Address == address
}

// NormalizeEmail trims and lowercases an address so lookups are
// case-insensitive.
func NormalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
