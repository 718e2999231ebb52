package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// goModulePathRegex matches valid Go module paths.
var goModulePathRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._~/-]*$`)

// versionRegex matches the version syntax accepted on the command line and
// in API queries. It mirrors semver.IsValid plus the "latest" and "none" queries.
var versionRegex = regexp.MustCompile(`^(latest|none|v?\d+(\.\d+)*(-[\w.-]+)?(\+[\w.-]+)?)$`)

// ValidateModulePath validates a Go module path for safety and correctness.
// It rejects names that could be used for path traversal or flag injection
// when the path is passed on to the go command.
//
// The validation rules are intentionally conservative:
//   - No empty paths
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No leading dash
//   - Maximum length of 256 characters
func ValidateModulePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPackage, "module path cannot be empty")
	}

	if len(path) > 256 {
		return New(ErrCodeInvalidPackage, "module path too long (max 256 characters)")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "module path contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(path, pattern) {
			return New(ErrCodeInvalidPackage, "module path contains invalid characters: %q", pattern)
		}
	}

	if !goModulePathRegex.MatchString(path) {
		return New(ErrCodeInvalidPackage, "invalid Go module path: %q", path)
	}

	return nil
}

// ValidateVersion validates a version query such as "v1.2.3", "latest" or "none".
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if !versionRegex.MatchString(version) {
		return New(ErrCodeInvalidVersion, "invalid version: %q", version)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
