package errors

import (
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "bolts", false},
		{"valid with dash", "bolt-circle", false},
		{"valid nested", "site/level-2", false},
		{"valid with dot", "grid.v2", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"absolute", "/etc/passwd", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateParamName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Items", false},
		{"underscore", "row_spacing", false},
		{"digits", "Offset2", false},

		{"empty", "", true},
		{"leading digit", "2Items", true},
		{"space", "Row Spacing", true},
		{"operator", "Items*2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParamName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateParamName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
