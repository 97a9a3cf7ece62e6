package fingerprint

import (
	"regexp"
	"strings"
	"testing"

	"visitgate/internal/dataType"
)

func browserRequest(ua string) dataType.RequestContext {
	return dataType.RequestContext{
		Method: "GET",
		Path:   "/",
		Headers: dataType.NewHeaders(map[string]string{
			"User-Agent":      ua,
			"Accept-Language": "en-US,en;q=0.9",
			"Accept-Encoding": "gzip, deflate, br",
		}),
	}
}

func TestFingerprintFormat(t *testing.T) {
	shape := regexp.MustCompile(`^fp_[0-9a-f]{16}$`)
	reqs := []dataType.RequestContext{
		browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0"),
		browserRequest(""),
		{},
	}
	for _, req := range reqs {
		id := Fingerprint(req, false)
		if !shape.MatchString(string(id)) {
			t.Errorf("identity %q does not match fp_ + 16 hex", id)
		}
	}
}

func TestFingerprintStableAcrossPatchVersions(t *testing.T) {
	a := Fingerprint(browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.6099.110 Safari/537.36"), false)
	b := Fingerprint(browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.6099.224 Safari/537.36"), false)
	if a != b {
		t.Errorf("patch release rotated identity: %q vs %q", a, b)
	}

	c := Fingerprint(browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/121.0.0.0 Safari/537.36"), false)
	if a != c {
		t.Errorf("major version rotated identity: %q vs %q", a, c)
	}
}

func TestFingerprintDistinguishesClients(t *testing.T) {
	windows := Fingerprint(browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0"), false)
	mac := Fingerprint(browserRequest("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15"), false)
	if windows == mac {
		t.Errorf("distinct browsers collapsed to one identity %q", windows)
	}

	en := browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0")
	de := browserRequest("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0")
	de.Headers.Set("Accept-Language", "de-DE,de;q=0.9")
	if Fingerprint(en, false) == Fingerprint(de, false) {
		t.Errorf("language change did not alter identity")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	req := browserRequest("Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")
	first := Fingerprint(req, false)
	for i := 0; i < 5; i++ {
		if got := Fingerprint(req, false); got != first {
			t.Fatalf("run %d produced %q, want %q", i, got, first)
		}
	}
}

func TestFingerprintUnrelatedHeadersIgnored(t *testing.T) {
	plain := browserRequest("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0")
	noisy := browserRequest("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0")
	noisy.Headers.Set("X-Request-ID", "abc-123")
	noisy.Headers.Set("Cookie", "session=deadbeef")
	if Fingerprint(plain, false) != Fingerprint(noisy, false) {
		t.Errorf("unrelated headers perturbed the identity")
	}
}

func TestFingerprintPrivacyMode(t *testing.T) {
	req := browserRequest("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0")
	req.Headers.Set("X-Forwarded-Proto", "https")
	req.Headers.Set("Viewport-Width", "1920")

	full := Fingerprint(req, false)
	private := Fingerprint(req, true)
	if full == private {
		t.Errorf("privacy mode should drop scheme and viewport components")
	}

	bare := browserRequest("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0")
	if Fingerprint(bare, true) != private {
		t.Errorf("privacy mode still sensitive to scheme or viewport headers")
	}
}

func TestNormalizeUA(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chrome/120.0.6099.110", "Chrome/#"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Mozilla/# (Windows NT #; Win#; x#)"},
		{"no digits at all", "no digits at all"},
		{"", ""},
		{"Mac OS X 10_15_7", "Mac OS X #"},
	}
	for _, tt := range tests {
		if got := NormalizeUA(tt.in); got != tt.want {
			t.Errorf("NormalizeUA(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeUACapsLength(t *testing.T) {
	long := "agent " + strings.Repeat("x", 1000)
	if got := NormalizeUA(long); len(got) != 256 {
		t.Errorf("normalized length = %d, want capped at 256", len(got))
	}
}
