// Package media builds renderable cover-image URIs from raw catalog
// references.
//
// Cover references arrive in three flavors: absolute HTTP(S) URLs (passed
// through untouched), device-local cache paths, and server-relative media
// paths which must be joined to the backend base URL. The base URL plays no
// role in layout math; it only affects the URI a rendering surface loads.
package media

import "strings"

// CoverURI resolves a raw cover reference against a base URL.
//
// Rules:
//   - empty ref → empty result
//   - absolute http(s) URL → returned unchanged
//   - otherwise the ref is treated as a server-relative media path: leading
//     slashes are stripped, a "media/" prefix is added if missing, and the
//     path is joined to baseURL. With an empty baseURL the result is a
//     root-relative "/media/..." path.
func CoverURI(ref, baseURL string) string {
	if ref == "" {
		return ""
	}
	if IsAbsoluteURL(ref) {
		return ref
	}

	path := strings.TrimLeft(ref, "/")
	if !strings.HasPrefix(path, "media/") {
		path = "media/" + path
	}

	if baseURL == "" {
		return "/" + path
	}
	return strings.TrimRight(baseURL, "/") + "/" + path
}

// IsAbsoluteURL reports whether ref already looks like an absolute HTTP(S)
// URL. The check is case-insensitive on the scheme.
func IsAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
