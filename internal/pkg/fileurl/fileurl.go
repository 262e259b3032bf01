// Package fileurl turns stored image paths into absolute URLs served by the
// upstream backend.
package fileurl

import (
	"regexp"
	"strings"
)

// legacyHost is the storefront domain old uploads were saved under.
const legacyHost = "shop-ytb-client.onrender.com"

var legacyPrefix = regexp.MustCompile(`^https?://shop-ytb-client\.onrender\.com`)

// Resolve rewrites path against apiURL:
//   - legacy storefront URLs are moved to apiURL, keeping the relative part;
//   - any other absolute http(s) URL is returned unchanged;
//   - relative paths lose a leading "images/" and are joined to apiURL.
func Resolve(apiURL, path string) string {
	if path == "" {
		return ""
	}
	base := strings.TrimRight(apiURL, "/")

	if strings.Contains(path, legacyHost) {
		rel := legacyPrefix.ReplaceAllString(path, "")
		return base + leadingSlash(rel)
	}
	if strings.HasPrefix(path, "http") {
		return path
	}

	return base + leadingSlash(strings.TrimPrefix(path, "images/"))
}

func leadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
