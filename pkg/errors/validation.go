package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxIDLength = 256

// ValidateID checks an entity identifier supplied from outside the process
// (HTTP bodies, CLI flags, persisted snapshots).
//
// Rules:
//   - not empty, at most 256 bytes
//   - no control characters
//   - no '/' (reserved as the anchor/node separator) and no backslash
func ValidateID(kind Code, id string) error {
	if id == "" {
		return New(kind, "id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(kind, "id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(kind, "id contains invalid control characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(kind, "id %q cannot contain path separators", id)
	}
	return nil
}

// nameRegex matches diagram names accepted by the storage sinks.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName validates a diagram name used as a storage key.
// Names end up in file paths and Redis keys, so they must be a single
// path element without traversal sequences.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "diagram name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidName, "diagram name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "diagram name cannot contain path traversal sequences (..)")
	}
	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid diagram name: %q", name)
	}
	return nil
}
