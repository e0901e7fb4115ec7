package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxSegments is the largest segment count a Path Table can encode: table
// values are signed bytes holding segment index + 1.
const MaxSegments = 127

// ValidateTitle validates a turnout title for safety and correctness.
//
// Titles end up in log lines, cache keys and HTTP responses, so the rules
// are conservative:
//   - No empty titles
//   - No control characters
//   - Maximum length of 256 characters
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidDefinition, "turnout title cannot be empty")
	}

	if len(title) > 256 {
		return New(ErrCodeInvalidDefinition, "turnout title too long (max 256 characters)")
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDefinition, "turnout title contains invalid control characters")
		}
	}

	return nil
}

// ValidateSegmentCount rejects turnouts whose paths cannot be encoded.
func ValidateSegmentCount(n int) error {
	if n > MaxSegments {
		return New(ErrCodeInvalidDefinition, "too many segments: %d (max %d)", n, MaxSegments)
	}
	return nil
}

// ValidatePath validates a definition file path received from a remote
// caller. It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
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

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// definitionExtRegex matches the definition file formats pkg/io understands.
var definitionExtRegex = regexp.MustCompile(`(?i)\.(json|toml)$`)

// ValidateDefinitionFilename checks that a file name has a supported extension.
func ValidateDefinitionFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFormat, "definition filename cannot be empty")
	}
	if !definitionExtRegex.MatchString(name) {
		return New(ErrCodeInvalidFormat, "unsupported definition file %q (want .json or .toml)", name)
	}
	return nil
}

// ValidateURL validates a backend URL for one of the given schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes %v", schemes)
}
