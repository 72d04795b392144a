package errors

import (
	"strings"
	"unicode"
)

// maxSessionIDLength bounds stored session identifiers. UUIDs are 36 bytes.
const maxSessionIDLength = 64

// ValidateSessionID checks that a stored-tree identifier is safe to use as a
// file name or a redis key suffix.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 64 characters
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSession, "session id cannot be empty")
	}
	if len(id) > maxSessionIDLength {
		return New(ErrCodeInvalidSession, "session id too long (max %d characters)", maxSessionIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSession, "session id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidSession, "session id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidatePath validates a user-supplied input path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
