package pipeline

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"regexp"
	"testing"

	"visitgate/internal/action"
	"visitgate/internal/config"
	"visitgate/internal/dataType"
	"visitgate/internal/utils"
)

func newTestPipeline(rc *config.RuleConfig, mutate func(*config.MainConfig)) *Pipeline {
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, rc, utils.NewNopManager())
}

func browserRequest(method, path string) dataType.RequestContext {
	return dataType.RequestContext{
		Method: method,
		Path:   path,
		Headers: dataType.NewHeaders(map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
			"Accept-Language": "en-US,en;q=0.9",
			"Accept-Encoding": "gzip, deflate, br",
		}),
	}
}

func TestEvaluateInfraPathShortCircuits(t *testing.T) {
	p := newTestPipeline(nil, nil)
	req := browserRequest("GET", "/health")
	req.Headers.Set("CF-IPCountry", "US")

	got := p.Evaluate(req, "")
	if got.Verdict.Act != action.Block || got.Verdict.Reason != action.ReasonInfraPath {
		t.Fatalf("verdict = %+v, want infra path block", got.Verdict)
	}
	if got.Identity != "" {
		t.Errorf("blocked request still got identity %q", got.Identity)
	}
	if got.Geo.Provider != dataType.ProviderNone || got.Geo.CountryCode != "" {
		t.Errorf("blocked request still got geo %+v", got.Geo)
	}
}

func TestEvaluateExcludedMethodWinsOverRules(t *testing.T) {
	rc := &config.RuleConfig{
		Global: config.RawScope{
			IncludeOnly: []config.RawRule{{Pattern: "/page"}},
		},
	}
	p := newTestPipeline(rc, nil)

	got := p.Evaluate(browserRequest("OPTIONS", "/page"), "")
	if got.Verdict.Act != action.Block || got.Verdict.Reason != action.ReasonMethodExcluded {
		t.Errorf("verdict = %+v, want method exclusion before configured rules", got.Verdict)
	}
}

func TestEvaluateStaticAsset(t *testing.T) {
	p := newTestPipeline(nil, nil)

	got := p.Evaluate(browserRequest("GET", "/styles/app.css"), "")
	if got.Verdict.Act != action.Block || got.Verdict.Reason != action.ReasonStaticAsset {
		t.Errorf("verdict = %+v, want static asset block", got.Verdict)
	}
}

func TestEvaluateAllowedHumanVisit(t *testing.T) {
	p := newTestPipeline(nil, nil)
	req := browserRequest("GET", "/pricing")
	req.Headers.Set("CF-IPCountry", "DE")
	req.Headers.Set("CF-Connecting-IP", "203.0.113.40")

	got := p.Evaluate(req, "")
	if got.Verdict.Act != action.Allow {
		t.Fatalf("verdict = %+v, want allow", got.Verdict)
	}
	if got.Classification.IsBot {
		t.Errorf("browser visit classified as bot: %+v", got.Classification)
	}
	if got.Geo.CountryCode != "DE" || got.Geo.Provider != dataType.ProviderCloudflare {
		t.Errorf("geo = %+v, want DE via cloudflare", got.Geo)
	}
	if !regexp.MustCompile(`^fp_[0-9a-f]{16}$`).MatchString(string(got.Identity)) {
		t.Errorf("identity %q has wrong shape", got.Identity)
	}
	if got.NormalizedPath != "/pricing" {
		t.Errorf("normalized path = %q, want /pricing", got.NormalizedPath)
	}
	if got.ProcessedAt.IsZero() {
		t.Errorf("ProcessedAt not set")
	}
}

func TestEvaluateGooglebot(t *testing.T) {
	p := newTestPipeline(nil, nil)
	req := dataType.RequestContext{
		Method: "GET",
		Path:   "/products",
		Headers: dataType.NewHeaders(map[string]string{
			"User-Agent": "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		}),
	}

	got := p.Evaluate(req, "")
	if got.Verdict.Act != action.Allow {
		t.Fatalf("verdict = %+v, want allow", got.Verdict)
	}
	c := got.Classification
	if !c.IsBot || c.BotType != dataType.BotTypeSearchEngine || c.BotName != "Googlebot" {
		t.Errorf("classification = %+v, want Googlebot search engine", c)
	}
	if c.Confidence < 0.8 || c.Confidence > 0.99 {
		t.Errorf("confidence = %v, want within [0.8, 0.99]", c.Confidence)
	}
}

func TestEvaluateTenantExclude(t *testing.T) {
	rc := &config.RuleConfig{
		Tenants: map[string]config.RawScope{
			"acme": {Exclude: []config.RawRule{{Pattern: "/beta/*"}}},
		},
	}
	p := newTestPipeline(rc, nil)

	got := p.Evaluate(browserRequest("GET", "/beta/feature"), "acme")
	if got.Verdict.Act != action.Block || got.Verdict.Reason != action.ReasonTenantExclude {
		t.Errorf("acme verdict = %+v, want tenant exclusion", got.Verdict)
	}

	got = p.Evaluate(browserRequest("GET", "/beta/feature"), "")
	if got.Verdict.Act != action.Allow {
		t.Errorf("global verdict = %+v, want allow", got.Verdict)
	}
}

func TestEvaluateNormalizedPathMasksIdentifiers(t *testing.T) {
	p := newTestPipeline(nil, nil)

	got := p.Evaluate(browserRequest("GET", "/users/12345/orders"), "")
	if got.NormalizedPath != "/users/:id/orders" {
		t.Errorf("normalized path = %q, want /users/:id/orders", got.NormalizedPath)
	}
}

func TestEvaluateDerivesFrequencyFromCounter(t *testing.T) {
	p := newTestPipeline(nil, nil)
	req := browserRequest("GET", "/pricing")
	req.RemoteAddr = netip.MustParseAddr("198.51.100.9")

	var last Result
	for i := 0; i < 70; i++ {
		last = p.Evaluate(req, "")
	}
	c := last.Classification
	if !c.IsBot || c.BotType != dataType.BotTypeUnknown {
		t.Fatalf("high-frequency visitor not flagged: %+v", c)
	}
	if c.Confidence < 0.65 || c.Confidence > 0.75 {
		t.Errorf("confidence = %v, want near 0.7 for frequency-only signal", c.Confidence)
	}
}

func TestEvaluatePrivacyMode(t *testing.T) {
	p := newTestPipeline(nil, func(cfg *config.MainConfig) {
		cfg.PrivacyMode = true
		cfg.PrecisionLevel = "full"
	})
	req := browserRequest("GET", "/pricing")
	req.Headers.Set("CF-IPCountry", "US")
	req.Headers.Set("CF-IPCity", "San Francisco")
	req.Headers.Set("CF-Connecting-IP", "203.0.113.40")

	got := p.Evaluate(req, "")
	if got.Geo.CountryCode != "US" {
		t.Errorf("country = %q, want US", got.Geo.CountryCode)
	}
	if got.Geo.City != "" {
		t.Errorf("privacy mode leaked city %q", got.Geo.City)
	}
	if got.Geo.AnonymizedAddr != "203.0.0.0" {
		t.Errorf("anonymized address = %q, want fully truncated", got.Geo.AnonymizedAddr)
	}
}

func TestRequestFromHTTP(t *testing.T) {
	cfg := config.Default()

	r := httptest.NewRequest(http.MethodGet, "/pricing?utm=x", nil)
	r.RemoteAddr = "203.0.113.9:4455"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r.Header.Set("CF-Connecting-IP", "198.51.100.23")

	req := RequestFromHTTP(cfg, r)
	if req.Method != "GET" || req.Path != "/pricing" {
		t.Errorf("method/path = %q %q", req.Method, req.Path)
	}
	if req.RemoteAddr != netip.MustParseAddr("198.51.100.23") {
		t.Errorf("remote = %v, want header address preferred", req.RemoteAddr)
	}
	if req.UserAgent() != "Mozilla/5.0" {
		t.Errorf("user agent = %q", req.UserAgent())
	}

	r.Header.Del("CF-Connecting-IP")
	req = RequestFromHTTP(cfg, r)
	if req.RemoteAddr != netip.MustParseAddr("203.0.113.9") {
		t.Errorf("remote = %v, want transport fallback", req.RemoteAddr)
	}
}
