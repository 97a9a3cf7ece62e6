package privacy

import (
	"net/netip"

	"visitgate/internal/dataType"
)

// AnonymizeAddr zeroes the low bits of an address. IPv4 keeps three
// octets at partial strength and two at full; IPv6 keeps 48 bits at
// partial and 16 at full. The operation is idempotent: re-anonymizing
// at the same level changes nothing.
func AnonymizeAddr(addr netip.Addr, level dataType.AnonymizeLevel) netip.Addr {
	addr = addr.Unmap()
	if !addr.IsValid() || level == dataType.AnonymizeNone {
		return addr
	}

	if addr.Is4() {
		b := addr.As4()
		switch level {
		case dataType.AnonymizePartial:
			b[3] = 0
		case dataType.AnonymizeFull:
			b[2] = 0
			b[3] = 0
		}
		return netip.AddrFrom4(b)
	}

	b := addr.As16()
	keep := 6 // bytes, 48 bits: first 3 of 8 groups
	if level == dataType.AnonymizeFull {
		keep = 2 // 16 bits: first group only
	}
	for i := keep; i < len(b); i++ {
		b[i] = 0
	}
	return netip.AddrFrom16(b)
}

// AnonymizeAddrString anonymizes a textual address. Input that does not
// parse as an address is returned unchanged.
func AnonymizeAddrString(s string, level dataType.AnonymizeLevel) string {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return s
	}
	return AnonymizeAddr(addr, level).String()
}
