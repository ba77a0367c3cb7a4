package shell

import (
	"errors"
	"regexp"
	"strings"
)

var (
	shellMetachars = regexp.MustCompile("[;&|`$<>\"']")
	controlChars   = regexp.MustCompile(`[\x00\r\n]`)
	bareName       = regexp.MustCompile(`^[A-Za-z0-9._+-]+$`)
	driveLetter    = regexp.MustCompile(`^[A-Za-z]:[\\/]`)
)

// Shell validation errors.
var (
	ErrEmptyShell       = errors.New("shell is empty")
	ErrUnsafeShellChars = errors.New("shell contains control, quote or metacharacters")
	ErrInvalidShellName = errors.New("shell is not a path or a plain executable name")
)

// SanitizeShell checks that a configured shell is a plain path or executable
// name, so it cannot smuggle extra commands or options into the invocation.
func SanitizeShell(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ErrEmptyShell
	}
	if controlChars.MatchString(trimmed) || shellMetachars.MatchString(trimmed) {
		return "", ErrUnsafeShellChars
	}
	if strings.ContainsAny(trimmed, " \t") {
		return "", ErrInvalidShellName
	}
	if looksLikePath(trimmed) {
		return trimmed, nil
	}
	if strings.HasPrefix(trimmed, "-") || !bareName.MatchString(trimmed) {
		return "", ErrInvalidShellName
	}
	return trimmed, nil
}

func looksLikePath(value string) bool {
	return strings.HasPrefix(value, ".") ||
		strings.HasPrefix(value, "~") ||
		strings.ContainsAny(value, `/\`) ||
		driveLetter.MatchString(value)
}

// DefaultShell picks the platform shell: zsh on macOS, cmd on Windows and
// $SHELL or /bin/sh elsewhere.
func DefaultShell(goos string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		return "/bin/zsh"
	case "windows":
		return "cmd.exe"
	}
	if getenv != nil {
		if sh, err := SanitizeShell(getenv("SHELL")); err == nil {
			return sh
		}
	}
	return "/bin/sh"
}
