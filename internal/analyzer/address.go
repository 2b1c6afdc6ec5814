package analyzer

import (
	"net/netip"
	"slices"
	"strings"
)

// privatePrefixes are the RFC 1918 ranges.
var privatePrefixes = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

// parseAddr parses an address, accepting an IPv6 zone suffix and unmapping
// IPv4-mapped IPv6 addresses.
func parseAddr(s string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// IsPrivateIPv4 reports whether s falls in one of the RFC 1918 ranges.
func IsPrivateIPv4(s string) bool {
	addr, ok := parseAddr(s)
	if !ok {
		return false
	}
	for _, p := range privatePrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsLocalAddress reports whether an ICE candidate address is local:
// loopback, link-local or RFC 1918. Host names, including mDNS obfuscated
// candidates ("<uuid>.local"), are not addresses and never local.
func IsLocalAddress(s string) bool {
	addr, ok := parseAddr(s)
	if !ok {
		return false
	}
	if addr.IsLoopback() || addr.IsLinkLocalUnicast() {
		return true
	}
	return IsPrivateIPv4(addr.String())
}

// SplitCandidates separates candidate addresses into local and public sets.
// Both sets are deduplicated and keep first-seen order. Entries that are
// not addresses, such as mDNS host names, are dropped.
func SplitCandidates(addrs []string) (local, public []string) {
	local = []string{}
	public = []string{}
	for _, raw := range addrs {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if _, ok := parseAddr(s); !ok {
			continue
		}
		if IsLocalAddress(s) {
			if !slices.Contains(local, s) {
				local = append(local, s)
			}
			continue
		}
		if !slices.Contains(public, s) {
			public = append(public, s)
		}
	}
	return local, public
}
