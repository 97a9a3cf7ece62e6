package geo

import (
	"net/netip"
	"strings"

	"visitgate/internal/config"
	"visitgate/internal/dataType"
	"visitgate/internal/privacy"
	"visitgate/internal/utils"
)

const (
	fallbackConfidence = 0.3
	vpnConfidenceCap   = 0.7
)

// Resolver extracts geographic data from trusted proxy/CDN headers.
// Providers are tried strictly in priority order; the first one that
// yields a valid country wins. Resolution never fails: when nothing
// matches, the result is empty with confidence zero.
type Resolver struct {
	providers   []provider
	trusted     *dataType.NetTrie
	detectVPN   bool
	anonLevel   dataType.AnonymizeLevel
	datacenters *dataType.NetTrie
	log         *utils.LogxManager
}

// NewResolver builds a resolver from startup configuration. Unknown
// provider names in the priority list are logged and skipped rather
// than rejected.
func NewResolver(cfg *config.MainConfig, lg *utils.LogxManager) *Resolver {
	r := &Resolver{
		detectVPN:   cfg.DetectVPN,
		anonLevel:   dataType.ParseAnonymizeLevel(cfg.AnonymizeAddressLevel),
		datacenters: newDatacenterTrie(),
		log:         lg,
	}
	for _, name := range cfg.ProviderPriority {
		p, ok := builtinProvider(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			lg.LogWarn("geo", "unknown geo provider skipped", name)
			continue
		}
		r.providers = append(r.providers, p)
	}
	if len(cfg.TrustedProxies) > 0 {
		r.trusted = dataType.NewNetTrie()
		for _, cidr := range cfg.TrustedProxies {
			r.trusted.InsertCIDR(cidr)
		}
	}
	return r
}

// Resolve runs the provider chain over the request headers, then the
// static range fallback against the remote address, and applies
// precision truncation and privacy bounds to whatever it found.
func (r *Resolver) Resolve(h dataType.Headers, remote netip.Addr, precision dataType.PrecisionLevel, privacyMode bool) dataType.GeoResult {
	var (
		fields  geoFields
		matched bool
		result  dataType.GeoResult
	)

	for _, p := range r.providers {
		if f, ok := p.tryExtract(h); ok {
			fields = f
			matched = true
			result.Provider = p.id
			result.Confidence = p.conf
			break
		}
	}

	if !matched {
		addr := fields.addr
		if !addr.IsValid() {
			addr = r.clientAddr(h, remote)
		}
		if f, ok := lookupStaticRange(addr); ok {
			fields = f
			matched = true
			result.Provider = dataType.ProviderStaticRange
			result.Confidence = fallbackConfidence
		} else {
			fields.addr = addr
		}
	}

	if matched {
		result.CountryCode = fields.country
		result.Region = fields.region
		result.City = fields.city
		result.Timezone = fields.timezone
		result.Latitude = fields.lat
		result.Longitude = fields.lon
	}

	addr := fields.addr
	if !addr.IsValid() {
		addr = r.clientAddr(h, remote)
	}

	if r.detectVPN && r.looksLikeVPN(h, addr) {
		result.IsVPN = true
		if result.Confidence > vpnConfidenceCap {
			result.Confidence = vpnConfidenceCap
		}
	}

	anonLevel := r.anonLevel
	if privacyMode {
		if precision > dataType.PrecisionCountry {
			precision = dataType.PrecisionCountry
		}
		anonLevel = dataType.AnonymizeFull
	}
	if addr.IsValid() && anonLevel != dataType.AnonymizeNone {
		result.AnonymizedAddr = privacy.AnonymizeAddr(addr, anonLevel).String()
	}

	applyPrecision(&result, precision)

	if result.Confidence > 0.99 {
		result.Confidence = 0.99
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	return result
}

// clientAddr picks the client address from forwarding headers, falling
// back to the transport-level remote address. When trusted proxies are
// configured, the X-Forwarded-For chain is walked right to left and the
// first hop outside the trusted set wins; appended hops from untrusted
// parties are ignored.
func (r *Resolver) clientAddr(h dataType.Headers, remote netip.Addr) netip.Addr {
	if addr, ok := parseHeaderAddr(h.Get("CF-Connecting-IP")); ok {
		return addr
	}
	if addr, ok := parseHeaderAddr(h.Get("X-Real-IP")); ok {
		return addr
	}

	if xff := h.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		if r.trusted != nil {
			for i := len(hops) - 1; i >= 0; i-- {
				addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
				if err != nil {
					break
				}
				if !r.trusted.Contains(addr) {
					return addr.Unmap()
				}
			}
		} else if addr, err := netip.ParseAddr(strings.TrimSpace(hops[0])); err == nil {
			return addr.Unmap()
		}
	}

	return remote
}

// applyPrecision truncates a result to the permitted granularity.
func applyPrecision(result *dataType.GeoResult, precision dataType.PrecisionLevel) {
	switch precision {
	case dataType.PrecisionCountry:
		result.Region = ""
		result.City = ""
		result.Latitude = nil
		result.Longitude = nil
	case dataType.PrecisionRegion:
		result.City = ""
		result.Latitude = nil
		result.Longitude = nil
	case dataType.PrecisionCity:
		result.Latitude = nil
		result.Longitude = nil
	case dataType.PrecisionFull:
	}
}
