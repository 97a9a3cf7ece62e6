package geo

import (
	"net/netip"

	"visitgate/internal/dataType"
)

// datacenterNetworks are hosting and relay ranges. Residential traffic
// from these is rare, so an address hit is a strong VPN/proxy signal.
var datacenterNetworks = []string{
	"13.64.0.0/11",
	"34.64.0.0/10",
	"35.184.0.0/13",
	"52.0.0.0/11",
	"104.16.0.0/13",
	"45.76.0.0/16",
	"159.65.0.0/16",
	"185.220.100.0/22",
	"2600:1f00::/24",
}

func newDatacenterTrie() *dataType.NetTrie {
	trie := dataType.NewNetTrie()
	for _, cidr := range datacenterNetworks {
		trie.InsertCIDR(cidr)
	}
	return trie
}

// looksLikeVPN combines the address signal with header anomalies: a Via
// header without the forwarded chain that normally accompanies it is
// typical of anonymizing relays.
func (r *Resolver) looksLikeVPN(h dataType.Headers, addr netip.Addr) bool {
	if addr.IsValid() && r.datacenters.Contains(addr) {
		return true
	}
	if h.Has("Via") && !h.Has("X-Forwarded-For") {
		return true
	}
	return false
}
