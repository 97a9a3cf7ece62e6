package geo

import "net/netip"

// staticRange is a best-effort fallback entry for well-known address
// ranges. This table stands in for a real geolocation database, which
// is deliberately out of scope: header-derived geo is the primary path
// and this only softens the no-headers case.
type staticRange struct {
	prefix   netip.Prefix
	country  string
	region   string
	city     string
	timezone string
	lat, lon float64
}

var staticRanges = []staticRange{
	{netip.MustParsePrefix("8.8.8.0/24"), "US", "California", "Mountain View", "America/Los_Angeles", 37.4056, -122.0775},
	{netip.MustParsePrefix("8.8.4.0/24"), "US", "California", "Mountain View", "America/Los_Angeles", 37.4056, -122.0775},
	{netip.MustParsePrefix("1.1.1.0/24"), "AU", "New South Wales", "Sydney", "Australia/Sydney", -33.8688, 151.2093},
	{netip.MustParsePrefix("1.0.0.0/24"), "AU", "New South Wales", "Sydney", "Australia/Sydney", -33.8688, 151.2093},
	{netip.MustParsePrefix("9.9.9.0/24"), "CH", "Zurich", "Zurich", "Europe/Zurich", 47.3769, 8.5417},
	{netip.MustParsePrefix("208.67.222.0/24"), "US", "California", "San Francisco", "America/Los_Angeles", 37.7749, -122.4194},
	{netip.MustParsePrefix("2001:4860:4860::/48"), "US", "California", "Mountain View", "America/Los_Angeles", 37.4056, -122.0775},
	{netip.MustParsePrefix("2606:4700:4700::/48"), "AU", "New South Wales", "Sydney", "Australia/Sydney", -33.8688, 151.2093},
}

// lookupStaticRange scans the fallback table for addr.
func lookupStaticRange(addr netip.Addr) (geoFields, bool) {
	if !addr.IsValid() {
		return geoFields{}, false
	}
	addr = addr.Unmap()
	for _, r := range staticRanges {
		if r.prefix.Contains(addr) {
			lat, lon := r.lat, r.lon
			return geoFields{
				country:  r.country,
				region:   r.region,
				city:     r.city,
				timezone: r.timezone,
				addr:     addr,
				lat:      &lat,
				lon:      &lon,
			}, true
		}
	}
	return geoFields{}, false
}
