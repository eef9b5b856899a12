package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"a@b.co", true},
		{"admin@mailserver", true},

		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{".user@example.com", false},
		{"user.@example.com", false},
		{"user..name@example.com", false},
		{"user@.example.com", false},
		{"user@example..com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
		{"user@exam ple.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestPasswordProblem(t *testing.T) {
	tests := []struct {
		pw string
		ok bool
	}{
		{"abc12345", true},
		{"correct horse 1", true},
		{"short1", false},
		{"onlyletters", false},
		{"1234567890", false},
	}
	for _, tt := range tests {
		got := PasswordProblem(tt.pw)
		if (got == "") != tt.ok {
			t.Errorf("PasswordProblem(%q) = %q, want ok=%v", tt.pw, got, tt.ok)
		}
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{" 507f1f77bcf86cd799439011 ", true},
		{"507f1f77bcf86cd79943901", false},
		{"zzzf1f77bcf86cd799439011", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidObjectID(tt.id); got != tt.want {
			t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
