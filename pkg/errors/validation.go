package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// deviceNameRegex matches device names: lowercase words joined by - _ or .
var deviceNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9._-]*[a-z0-9])?$`)

// ValidateDeviceName validates a device name used to look up built-in or
// cached devices. Names double as file names, so anything that could escape
// a directory is rejected.
func ValidateDeviceName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDevice, "device name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidDevice, "device name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidDevice, "device name contains invalid characters: %q", "..")
	}
	if !deviceNameRegex.MatchString(name) {
		return New(ErrCodeInvalidDevice, "invalid device name: %q", name)
	}
	return nil
}

// maxPathLength bounds paths accepted from requests.
const maxPathLength = 500

// pathRules are checked in order; the first match rejects the path.
var pathRules = []struct {
	reject func(string) bool
	msg    string
}{
	{func(p string) bool { return p == "" }, "path cannot be empty"},
	{func(p string) bool { return len(p) > maxPathLength }, "path too long"},
	{func(p string) bool { return strings.IndexFunc(p, unicode.IsControl) >= 0 }, "path contains control characters"},
	{func(p string) bool { return strings.HasPrefix(p, "/") }, "path must be relative"},
	{func(p string) bool { return strings.Contains(p, "..") }, "path cannot contain .."},
	{func(p string) bool { return strings.Contains(p, `\`) }, "path cannot contain backslashes"},
}

// ValidatePath accepts relative, forward-slash paths that stay inside the
// working directory. The HTTP server applies it to device file references.
func ValidatePath(path string) error {
	for _, r := range pathRules {
		if r.reject(path) {
			return New(ErrCodeInvalidPath, "%s", r.msg).WithSubjects(path)
		}
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}
