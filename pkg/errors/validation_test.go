package errors

import (
	"strings"
	"testing"
)

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "dump.txt", false},
		{"nested", "out/dumps/app.svg", false},
		{"absolute", "/tmp/app.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "dump\x00.txt", true},
		{"newline", "dump\n.txt", true},
		{"directory", "out/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateOutputPath(%q) code = %v, want INVALID_PATH", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"identifier", "cfg", false},
		{"map key", `users["bob"]`, false},
		{"unicode", "größe", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 257), true},
		{"control char", "a\x01b", true},
		{"tab", "a\tb", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
