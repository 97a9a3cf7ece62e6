package utils

import (
	"path"
	"regexp"
	"strings"
)

var (
	reNum    = regexp.MustCompile(`^\d+$`)
	reUUID   = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)
	reHex32  = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
	reBase64 = regexp.MustCompile(`^[a-zA-Z0-9+\-_=]{20,}$`)
)

// CleanPath strips query and fragment, resolves dot segments, and
// guarantees a leading slash. Rule matching runs against this form so
// "/a//b" and "/a/b?x=1" hit the same rules. IDs and tokens are kept
// as-is; masking them would break exact-match rules.
func CleanPath(uri string) string {
	if uri == "" {
		return "/"
	}

	if idx := strings.IndexAny(uri, "?#"); idx != -1 {
		uri = uri[:idx]
	}

	cleaned := path.Clean(uri)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	return cleaned
}

// CanonicalizeURI normalizes a URI for aggregation: CleanPath plus
// masking of numeric IDs and token-like segments, so the host's session
// layer groups "/user/123" and "/user/456" together.
func CanonicalizeURI(uri string) string {
	cleaned := CleanPath(uri)

	segments := strings.Split(cleaned, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if reNum.MatchString(seg) {
			segments[i] = ":id"
		} else if reUUID.MatchString(seg) || reHex32.MatchString(seg) || reBase64.MatchString(seg) {
			segments[i] = ":token"
		}
	}

	return strings.Join(segments, "/")
}
