package storage

import (
	"net/url"
	"strings"
)

// JoinURL appends key to base with exactly one slash between them
func JoinURL(base, key string) string {
	return NormalizeURL(strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/"))
}

// NormalizeURL collapses repeated slashes in the path of u. The scheme
// separator is left alone. Strings that do not parse are returned unchanged.
func NormalizeURL(u string) string {
	if u == "" {
		return u
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	path := parsed.Path
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if path == parsed.Path {
		return u
	}
	parsed.Path = path
	parsed.RawPath = ""
	return parsed.String()
}
