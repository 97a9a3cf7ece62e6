package dataType

import (
	"net/netip"
	"net/textproto"
)

// Headers is a case-insensitive header map. Lookups return the first
// value recorded for a key, matching how proxies forward single-value
// geo and identity headers.
type Headers map[string][]string

// NewHeaders builds a Headers map from single-value pairs.
func NewHeaders(pairs map[string]string) Headers {
	h := make(Headers, len(pairs))
	for k, v := range pairs {
		h.Add(k, v)
	}
	return h
}

// Add appends a value under the canonical form of key.
func (h Headers) Add(key, value string) {
	ck := textproto.CanonicalMIMEHeaderKey(key)
	h[ck] = append(h[ck], value)
}

// Set replaces any existing values for key with a single value.
func (h Headers) Set(key, value string) {
	h[textproto.CanonicalMIMEHeaderKey(key)] = []string{value}
}

// Get returns the first value for key, or "" when absent.
func (h Headers) Get(key string) string {
	if h == nil {
		return ""
	}
	vs := h[textproto.CanonicalMIMEHeaderKey(key)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Has reports whether any value exists for key.
func (h Headers) Has(key string) bool {
	if h == nil {
		return false
	}
	return len(h[textproto.CanonicalMIMEHeaderKey(key)]) > 0
}

// RequestContext carries everything the intake pipeline reads about one
// request. It is built by the host, borrowed by the pipeline, and never
// mutated during evaluation.
type RequestContext struct {
	Method     string
	Path       string
	Headers    Headers
	RemoteAddr netip.Addr // zero value when the host could not parse one
	// RequestFrequency is the requests-per-minute seen from RemoteAddr,
	// supplied by the host. Zero or negative means unknown.
	RequestFrequency int64
}

// UserAgent returns the request User-Agent header.
func (r RequestContext) UserAgent() string {
	return r.Headers.Get("User-Agent")
}

// BotType categorizes an automated client.
type BotType int

const (
	BotTypeHuman BotType = iota
	BotTypeSearchEngine
	BotTypeSocialMedia
	BotTypeSecurity
	BotTypeSeo
	BotTypeMonitoring
	BotTypeUnknown
)

func (t BotType) String() string {
	switch t {
	case BotTypeHuman:
		return "human"
	case BotTypeSearchEngine:
		return "search_engine"
	case BotTypeSocialMedia:
		return "social_media"
	case BotTypeSecurity:
		return "security"
	case BotTypeSeo:
		return "seo"
	case BotTypeMonitoring:
		return "monitoring"
	default:
		return "unknown_bot"
	}
}

// ClassificationResult is the bot classifier output for one request.
type ClassificationResult struct {
	IsBot      bool
	BotType    BotType
	BotName    string
	Confidence float64
}

// GeoProvider identifies which header convention produced a GeoResult.
type GeoProvider int

const (
	ProviderNone GeoProvider = iota
	ProviderCloudflare
	ProviderCloudFront
	ProviderVercel
	ProviderGeneric
	ProviderStaticRange
)

func (p GeoProvider) String() string {
	switch p {
	case ProviderCloudflare:
		return "cloudflare"
	case ProviderCloudFront:
		return "cloudfront"
	case ProviderVercel:
		return "vercel"
	case ProviderGeneric:
		return "generic"
	case ProviderStaticRange:
		return "static_range"
	default:
		return "none"
	}
}

// GeoResult is the resolved, privacy-bounded location for one request.
// CountryCode is either empty or exactly two uppercase ASCII letters.
// Latitude and Longitude are only populated at full precision.
type GeoResult struct {
	CountryCode    string
	Region         string
	City           string
	Latitude       *float64
	Longitude      *float64
	Timezone       string
	Provider       GeoProvider
	Confidence     float64
	IsVPN          bool
	AnonymizedAddr string
}

// Identity is an opaque, irreversible visitor identifier.
type Identity string

// PrecisionLevel bounds how much geographic detail a GeoResult keeps.
type PrecisionLevel int

const (
	PrecisionCountry PrecisionLevel = iota
	PrecisionRegion
	PrecisionCity
	PrecisionFull
)

// ParsePrecision maps a configuration string to a PrecisionLevel.
// Unrecognized input falls back to PrecisionCountry, the safest level.
func ParsePrecision(s string) PrecisionLevel {
	switch s {
	case "region":
		return PrecisionRegion
	case "city":
		return PrecisionCity
	case "full":
		return PrecisionFull
	default:
		return PrecisionCountry
	}
}

func (p PrecisionLevel) String() string {
	switch p {
	case PrecisionRegion:
		return "region"
	case PrecisionCity:
		return "city"
	case PrecisionFull:
		return "full"
	default:
		return "country"
	}
}

// AnonymizeLevel selects how many low bits of an address are discarded.
type AnonymizeLevel int

const (
	AnonymizeNone AnonymizeLevel = iota
	AnonymizePartial
	AnonymizeFull
)

// ParseAnonymizeLevel maps a configuration string to an AnonymizeLevel.
func ParseAnonymizeLevel(s string) AnonymizeLevel {
	switch s {
	case "partial":
		return AnonymizePartial
	case "full":
		return AnonymizeFull
	default:
		return AnonymizeNone
	}
}
