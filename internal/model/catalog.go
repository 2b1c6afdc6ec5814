package model

// CategoryInfo contains display metadata for a category: a title, what a
// weak score means, and what to do about it.
type CategoryInfo struct {
	Title          string
	Impact         string
	Recommendation string
}

// categoryInfoMapping is the single source of truth for category display text.
// Reports look entries up here instead of embedding text in each writer.
var categoryInfoMapping = map[Category]CategoryInfo{
	CategoryIP: {
		Title:          "IP Privacy",
		Impact:         "Your public IP address reveals your approximate location and internet provider to every site you visit.",
		Recommendation: "Route traffic through a trustworthy VPN or Tor so that every service observes the same non-identifying exit address.",
	},
	CategoryWebRTC: {
		Title:          "WebRTC Protection",
		Impact:         "WebRTC can expose local network and real public addresses even while a VPN is active.",
		Recommendation: "Disable WebRTC or restrict ICE candidates to the proxied interface (e.g. media.peerconnection.enabled=false in Firefox).",
	},
	CategoryDNS: {
		Title:          "DNS Privacy",
		Impact:         "DNS queries answered outside your tunnel reveal every domain you visit to your internet provider.",
		Recommendation: "Use DNS-over-HTTPS with a privacy-focused resolver, or make sure your VPN forces its own resolvers.",
	},
	CategoryIPv6: {
		Title:          "IPv6 Protection",
		Impact:         "IPv6 traffic that bypasses the tunnel exposes a globally routable address, sometimes derived from your hardware.",
		Recommendation: "Disable IPv6 when your VPN does not tunnel it, and enable privacy extensions (temporary addresses) otherwise.",
	},
	CategoryFingerprint: {
		Title:          "Fingerprint Resistance",
		Impact:         "Canvas, WebGL, audio and font signals combine into an identifier that survives cookie deletion.",
		Recommendation: "Use a browser with fingerprinting protection (Tor Browser, Brave, or Firefox with resistFingerprinting).",
	},
	CategoryBrowser: {
		Title:          "Browser Hardening",
		Impact:         "Permissive browser settings expose tracking surface such as third-party cookies, plugins and hardware details.",
		Recommendation: "Enable Do Not Track, block third-party cookies, remove unused plugins and prefer a privacy-focused browser.",
	},
}

// GetCategoryInfo returns the display metadata for a category.
// Unknown categories get a generic entry.
func GetCategoryInfo(c Category) CategoryInfo {
	if info, ok := categoryInfoMapping[c]; ok {
		return info
	}
	return CategoryInfo{
		Title:          string(c),
		Impact:         "Unknown category. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
