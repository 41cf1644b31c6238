package errors

import (
	"strings"
	"unicode"
)

// maxLabelLength bounds labels used as markdown reference names.
const maxLabelLength = 256

// ValidateLabel validates a markdown reference label supplied by the user.
//
// The rules keep the generated `[label]: data:...` definition parseable:
//   - No empty labels
//   - No control characters or line breaks
//   - No square brackets
//   - Maximum length of 256 characters
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}

	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", maxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label contains invalid control characters")
		}
	}

	if strings.ContainsAny(label, "[]") {
		return New(ErrCodeInvalidLabel, "label cannot contain square brackets")
	}

	return nil
}

// ValidatePath validates an output path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
