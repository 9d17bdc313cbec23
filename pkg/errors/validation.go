package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateKey validates a store key (a saved pattern name) for safety.
// It rejects keys that could be used for path traversal or injection attacks.
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > 256 {
		return New(ErrCodeInvalidKey, "key too long (max 256 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidKey, "key must be relative (cannot start with /)")
	}

	return nil
}

// paramNameRegex matches valid parameter names: an identifier usable inside
// an expression.
var paramNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateParamName validates a named-parameter identifier.
func ValidateParamName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "parameter name cannot be empty")
	}
	if !paramNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid parameter name: %q", name)
	}
	return nil
}
