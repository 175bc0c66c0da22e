package errors

import (
	"strings"
	"unicode"
)

// ValidateProcessID validates a process identifier for safety and
// correctness. It rejects IDs that could be used for path traversal or
// injection when the ID ends up in cache paths or store queries.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateProcessID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "process ID cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidDocument, "process ID too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "process ID contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidDocument, "process ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}
