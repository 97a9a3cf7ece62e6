package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"visitgate/internal/dataType"
)

const (
	identityPrefix  = "fp_"
	identityHexLen  = 16
	maxUALength     = 256
	componentJoiner = "|"
)

// Version digit runs collapse to one token so browser patch releases do
// not rotate identities.
var reVersionDigits = regexp.MustCompile(`\d+(?:[._]\d+)*`)

// platformGuesses maps user-agent substrings to a coarse platform name.
// Order matters: iOS devices advertise "like Mac OS X" and Android
// advertises "Linux", so the more specific tokens come first.
var platformGuesses = []struct {
	token    string
	platform string
}{
	{"windows", "Windows"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"ios", "iOS"},
	{"android", "Android"},
	{"mac os x", "macOS"},
	{"macintosh", "macOS"},
	{"linux", "Linux"},
	{"x11", "Linux"},
}

// Fingerprint derives a stable, cookie-free visitor identity from
// normalized request characteristics. It is total and deterministic:
// the component list and its order are fixed, so unrelated headers
// never perturb existing identities. Privacy mode drops the connection
// scheme and viewport components.
func Fingerprint(req dataType.RequestContext, privacyMode bool) dataType.Identity {
	components := []string{
		NormalizeUA(req.UserAgent()),
		req.Headers.Get("Accept-Language"),
		req.Headers.Get("Accept-Encoding"),
		PlatformGuess(req.UserAgent()),
	}

	if !privacyMode {
		components = append(components, scheme(req.Headers), viewportHint(req.Headers))
	}

	joined := strings.Join(components, componentJoiner)
	sum := sha256.Sum256([]byte(joined))
	return dataType.Identity(identityPrefix + hex.EncodeToString(sum[:])[:identityHexLen])
}

// NormalizeUA collapses embedded version numbers to a placeholder and
// caps the length so pathological user agents cannot blow up the digest
// input.
func NormalizeUA(ua string) string {
	normalized := reVersionDigits.ReplaceAllString(ua, "#")
	if len(normalized) > maxUALength {
		normalized = normalized[:maxUALength]
	}
	return normalized
}

// PlatformGuess returns a coarse platform name from user-agent
// substrings, or "Unknown" when nothing matches.
func PlatformGuess(ua string) string {
	lower := strings.ToLower(ua)
	for _, g := range platformGuesses {
		if strings.Contains(lower, g.token) {
			return g.platform
		}
	}
	return "Unknown"
}

func scheme(h dataType.Headers) string {
	if proto := h.Get("X-Forwarded-Proto"); proto != "" {
		return strings.ToLower(proto)
	}
	return ""
}

func viewportHint(h dataType.Headers) string {
	if w := h.Get("Sec-CH-Viewport-Width"); w != "" {
		return w
	}
	return h.Get("Viewport-Width")
}
