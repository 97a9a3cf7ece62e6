package geo

import (
	"net/netip"
	"strconv"
	"strings"

	"visitgate/internal/dataType"
)

// geoFields is the raw yield of one provider before precision and
// privacy processing.
type geoFields struct {
	country  string
	region   string
	city     string
	timezone string
	addr     netip.Addr
	lat      *float64
	lon      *float64
}

// provider reads one CDN/proxy header convention. A provider matches
// only when it yields a syntactically valid two-letter country code;
// everything else it returns is best-effort.
type provider struct {
	id          dataType.GeoProvider
	conf        float64
	countryKeys []string
	regionKeys  []string
	cityKeys    []string
	tzKeys      []string
	addrKeys    []string
	latKey      string
	lonKey      string
}

// Country placeholders some CDNs emit for unknown or Tor traffic.
var countrySentinels = map[string]struct{}{
	"XX": {},
	"T1": {},
}

func (p provider) tryExtract(h dataType.Headers) (geoFields, bool) {
	country := ""
	for _, key := range p.countryKeys {
		if v := normalizeCountry(h.Get(key)); v != "" {
			country = v
			break
		}
	}
	if country == "" {
		return geoFields{}, false
	}

	f := geoFields{country: country}
	for _, key := range p.regionKeys {
		if v := strings.TrimSpace(h.Get(key)); v != "" {
			f.region = v
			break
		}
	}
	for _, key := range p.cityKeys {
		if v := strings.TrimSpace(h.Get(key)); v != "" {
			f.city = v
			break
		}
	}
	for _, key := range p.tzKeys {
		if v := strings.TrimSpace(h.Get(key)); v != "" {
			f.timezone = v
			break
		}
	}
	for _, key := range p.addrKeys {
		if addr, ok := parseHeaderAddr(h.Get(key)); ok {
			f.addr = addr
			break
		}
	}
	f.lat = parseCoordinate(h.Get(p.latKey), 90)
	f.lon = parseCoordinate(h.Get(p.lonKey), 180)
	return f, true
}

// normalizeCountry upper-cases and validates a country header value.
// Returns "" unless the value is exactly two ASCII letters and not a
// placeholder.
func normalizeCountry(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) != 2 {
		return ""
	}
	for i := 0; i < 2; i++ {
		if v[i] < 'A' || v[i] > 'Z' {
			return ""
		}
	}
	if _, sentinel := countrySentinels[v]; sentinel {
		return ""
	}
	return v
}

// parseCoordinate parses a latitude or longitude header. Out-of-range
// values are discarded, not clamped.
func parseCoordinate(v string, bound float64) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	if f < -bound || f > bound {
		return nil
	}
	return &f
}

// parseHeaderAddr parses an address header that may carry a port
// (CloudFront-Viewer-Address style) or a comma-joined hop list.
func parseHeaderAddr(v string) (netip.Addr, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return netip.Addr{}, false
	}
	if idx := strings.IndexByte(v, ','); idx != -1 {
		v = strings.TrimSpace(v[:idx])
	}
	if addr, err := netip.ParseAddr(v); err == nil {
		return addr.Unmap(), true
	}
	if ap, err := netip.ParseAddrPort(v); err == nil {
		return ap.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}

func builtinProvider(name string) (provider, bool) {
	switch name {
	case "cloudflare":
		return provider{
			id:          dataType.ProviderCloudflare,
			conf:        0.95,
			countryKeys: []string{"CF-IPCountry"},
			regionKeys:  []string{"CF-Region-Code", "CF-Region"},
			cityKeys:    []string{"CF-IPCity"},
			tzKeys:      []string{"CF-Timezone"},
			addrKeys:    []string{"CF-Connecting-IP"},
			latKey:      "CF-IPLatitude",
			lonKey:      "CF-IPLongitude",
		}, true
	case "cloudfront":
		return provider{
			id:          dataType.ProviderCloudFront,
			conf:        0.9,
			countryKeys: []string{"CloudFront-Viewer-Country"},
			regionKeys:  []string{"CloudFront-Viewer-Country-Region"},
			cityKeys:    []string{"CloudFront-Viewer-City"},
			tzKeys:      []string{"CloudFront-Viewer-Time-Zone"},
			addrKeys:    []string{"CloudFront-Viewer-Address"},
			latKey:      "CloudFront-Viewer-Latitude",
			lonKey:      "CloudFront-Viewer-Longitude",
		}, true
	case "vercel":
		return provider{
			id:          dataType.ProviderVercel,
			conf:        0.85,
			countryKeys: []string{"X-Vercel-IP-Country"},
			regionKeys:  []string{"X-Vercel-IP-Country-Region"},
			cityKeys:    []string{"X-Vercel-IP-City"},
			tzKeys:      []string{"X-Vercel-IP-Timezone"},
			addrKeys:    []string{"X-Real-IP"},
			latKey:      "X-Vercel-IP-Latitude",
			lonKey:      "X-Vercel-IP-Longitude",
		}, true
	case "generic":
		return provider{
			id:          dataType.ProviderGeneric,
			conf:        0.6,
			countryKeys: []string{"X-Country-Code", "X-Geo-Country"},
			regionKeys:  []string{"X-Region"},
			cityKeys:    []string{"X-City"},
			tzKeys:      []string{"X-Timezone"},
			// X-Forwarded-For is deliberately absent: the chain goes
			// through the resolver's trusted-proxy walk instead, so a
			// spoofed left-most hop cannot become the client address.
			addrKeys: []string{"X-Real-IP"},
			latKey:      "X-Latitude",
			lonKey:      "X-Longitude",
		}, true
	default:
		return provider{}, false
	}
}
