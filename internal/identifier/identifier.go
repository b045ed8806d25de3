// Package identifier validates the opaque string identifiers (team, agent,
// task, message, event) that are ever used to form a filesystem path.
//
// This is the sole gate against path traversal: every id that survives
// Validate is guaranteed not to escape the directory it is joined into.
package identifier

import (
	"strings"

	"github.com/fractalmind/teamchat-go/internal/errors"
)

// MaxLength is the maximum allowed length of a validated identifier.
const MaxLength = 128

// Validate checks candidate against the identifier grammar and returns the
// canonical (trimmed) form, or a *errors.ValidationError naming field.
//
// Rules: non-empty after trim; length <= MaxLength; characters restricted to
// [A-Za-z0-9_.-]; "." and ".." are rejected as whole tokens; no embedded "/",
// "\", NUL, or whitespace; no leading ".".
func Validate(field, candidate string) (string, error) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", errors.NewValidationError(field, candidate, "must not be empty")
	}
	if len(trimmed) > MaxLength {
		return "", errors.NewValidationError(field, candidate, "exceeds maximum length")
	}
	if trimmed == "." || trimmed == ".." {
		return "", errors.NewValidationError(field, candidate, "must not be '.' or '..'")
	}
	if strings.HasPrefix(trimmed, ".") {
		return "", errors.NewValidationError(field, candidate, "must not start with '.'")
	}
	for _, r := range trimmed {
		if !isAllowedRune(r) {
			return "", errors.NewValidationError(field, candidate, "contains disallowed character")
		}
	}
	return trimmed, nil
}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	default:
		return false
	}
}
