package dataType

import "net/netip"

// NetTrie is a binary prefix trie over IP addresses. IPv4 and IPv6 live
// under separate roots so a v4 prefix never shadows a v6 lookup.
type NetTrie struct {
	v4Root *netTrieNode
	v6Root *netTrieNode
}

type netTrieNode struct {
	children [2]*netTrieNode
	isEnd    bool
}

// NewNetTrie returns an empty trie.
func NewNetTrie() *NetTrie {
	return &NetTrie{v4Root: &netTrieNode{}, v6Root: &netTrieNode{}}
}

// Insert adds a CIDR prefix to the trie.
func (t *NetTrie) Insert(prefix netip.Prefix) {
	addr := prefix.Addr().Unmap()
	if !addr.IsValid() {
		return
	}
	bits := prefix.Bits()
	if bits < 0 || bits > addr.BitLen() {
		return
	}

	var raw []byte
	var current *netTrieNode
	if addr.Is4() {
		b := addr.As4()
		raw = b[:]
		current = t.v4Root
	} else {
		b := addr.As16()
		raw = b[:]
		current = t.v6Root
	}

	for i := 0; i < bits; i++ {
		bit := (raw[i/8] >> (7 - uint(i%8))) & 1
		if current.children[bit] == nil {
			current.children[bit] = &netTrieNode{}
		}
		current = current.children[bit]
	}
	current.isEnd = true
}

// InsertCIDR parses s as a CIDR (or single address) and inserts it.
// Malformed input is silently ignored.
func (t *NetTrie) InsertCIDR(s string) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		t.Insert(prefix)
		return
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		addr = addr.Unmap()
		t.Insert(netip.PrefixFrom(addr, addr.BitLen()))
	}
}

// Contains reports whether ip falls inside any inserted prefix.
func (t *NetTrie) Contains(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !ip.IsValid() {
		return false
	}

	var raw []byte
	var current *netTrieNode
	if ip.Is4() {
		b := ip.As4()
		raw = b[:]
		current = t.v4Root
	} else {
		b := ip.As16()
		raw = b[:]
		current = t.v6Root
	}

	for i := 0; i < len(raw)*8; i++ {
		if current.isEnd {
			return true
		}
		bit := (raw[i/8] >> (7 - uint(i%8))) & 1
		if current.children[bit] == nil {
			return false
		}
		current = current.children[bit]
	}
	return current.isEnd
}
