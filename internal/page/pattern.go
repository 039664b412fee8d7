package page

import (
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchLocation reports whether a URL satisfies a location glob.
//
// Patterns use doublestar syntax over the slash-separated URL with the
// scheme, query, and fragment stripped, so "**/secure" matches
// "https://practice.expandtesting.com/secure" and
// "https://practice.expandtesting.com/secure?tab=1".
//
// A pattern with no wildcard must match the stripped URL exactly.
// Malformed patterns never match.
func MatchLocation(pattern, location string) bool {
	if pattern == "" || location == "" {
		return false
	}

	ok, err := doublestar.Match(pattern, stripLocation(location))
	if err != nil {
		return false
	}
	return ok
}

// stripLocation reduces a URL to host/path form for glob matching.
func stripLocation(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return location
	}

	stripped := u.Host + u.Path
	if stripped == "" {
		// Opaque URLs such as about:blank have no host/path split.
		stripped = u.Opaque
		if stripped == "" {
			return location
		}
	}

	return strings.TrimSuffix(stripped, "/")
}
