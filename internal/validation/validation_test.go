package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.edu", true},
		{"user+tag@example.com", true},
		{"", false},
		{"not-an-email", false},
		{"Bob <bob@example.com>", false},
		{"user@", false},
		{"@example.com", false},
	}
	for _, tt := range tests {
		if got := ValidateEmail(tt.email); got != tt.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"  User@Example.COM ", "user@example.com"},
		{"plain@example.com", "plain@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.input); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
