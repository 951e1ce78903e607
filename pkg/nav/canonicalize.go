package nav

import (
	"errors"
	"net/url"
	"strings"
)

// Path canonicalization errors.
var (
	ErrAbsoluteURL           = errors.New("absolute URLs are not navigable")
	ErrBackslashInPath       = errors.New("path contains backslash")
	ErrNullByteInPath        = errors.New("path contains null byte")
	ErrInvalidPercentEscape  = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot       = errors.New("path escapes root via ..")
	ErrEncodedSlashInSegment = errors.New("encoded slash (%2F) in non-catch-all segment")
)

// CanonicalizePath normalizes the path part of a navigation target:
//   - a leading "/" is added when missing
//   - repeated slashes collapse (/admin//images → /admin/images)
//   - "." segments are dropped and ".." segments resolved
//   - a trailing slash is removed, except for the root
//
// Backslashes, NUL bytes, malformed percent escapes and ".." segments that
// would climb above the root are rejected. The second return value reports
// whether the path changed.
func CanonicalizePath(path string) (string, bool, error) {
	if path == "" {
		return "/", true, nil
	}
	if strings.Contains(path, "\\") {
		return "", false, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", false, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", false, err
		}
	}

	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return "", false, ErrPathEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	canon := "/" + strings.Join(kept, "/")
	return canon, canon != path, nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment decodes a single path segment for use as a route parameter.
// Outside catch-all parameters a decoded "/" is rejected, since it would let
// one segment smuggle a second one past the route table.
func DecodeSegment(segment string, catchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !catchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlashInSegment
	}
	return decoded, nil
}

// SplitPath splits a canonical path into its segments. The root has none.
func SplitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
