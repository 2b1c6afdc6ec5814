package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// IPObservation is a single public address reported by one echo source.
type IPObservation struct {
	IP     string `json:"ip"`
	Source string `json:"source"`
}

// Location is the geolocation of a public address.
// Every field is optional; analyzers treat empty values as unknown.
type Location struct {
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Region      string `json:"region,omitempty"`
	City        string `json:"city,omitempty"`
	ISP         string `json:"isp,omitempty"`
}

// IPResult is the raw output of the IP probe.
type IPResult struct {
	// ClientIP is the first address observed, or "Unknown" when no source answered.
	ClientIP string `json:"client_ip"`

	// Observations holds every address reported, one entry per source.
	Observations []IPObservation `json:"observations"`

	// IsConsistent is true when every source reported the same address.
	IsConsistent bool `json:"is_consistent"`

	// IsVPN is true when sources disagree or the address is flagged as a
	// proxy or hosting provider.
	IsVPN bool `json:"is_vpn"`

	// IsProxy is true when geolocation flags the address as a VPN, proxy or
	// Tor exit.
	IsProxy bool `json:"is_proxy"`

	// IsHosting is true when the address belongs to a hosting provider.
	IsHosting bool `json:"is_hosting"`

	// Location is nil when geolocation failed.
	Location *Location `json:"location,omitempty"`
}

// WebRTCResult is the raw output of the WebRTC probe.
type WebRTCResult struct {
	HasLeak   bool     `json:"has_leak"`
	LocalIPs  []string `json:"local_ips"`
	PublicIPs []string `json:"public_ips"`

	// Error is set when candidate harvesting could not complete.
	// The analyzer treats this as an uncertain result.
	Error string `json:"error,omitempty"`
}

// DNSLocation describes where the observed resolver lives.
type DNSLocation struct {
	Server  string `json:"server"`
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	ISP     string `json:"isp,omitempty"`
}

// DNSResult is the raw output of the DNS probe.
type DNSResult struct {
	HasDNSLeak      bool         `json:"has_dns_leak"`
	DNSServers      []string     `json:"dns_servers"`
	IsUsingVPNDNS   bool         `json:"is_using_vpn_dns"`
	DNSLocation     *DNSLocation `json:"dns_location,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// IPv6Result is the raw output of the IPv6 probe.
type IPv6Result struct {
	HasIPv6         bool     `json:"has_ipv6"`
	HasIPv6Leak     bool     `json:"has_ipv6_leak"`
	IPv6Addresses   []string `json:"ipv6_addresses"`
	IPv4Addresses   []string `json:"ipv4_addresses"`
	IsIPv6Disabled  bool     `json:"is_ipv6_disabled"`
	Recommendations []string `json:"recommendations,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// FingerprintResult is the raw output of the fingerprint probe.
// Canvas, WebGL and Audio hold opaque hashes; an empty string means the
// channel was unavailable.
type FingerprintResult struct {
	Canvas          string   `json:"canvas"`
	WebGL           string   `json:"webgl"`
	Audio           string   `json:"audio"`
	Fonts           []string `json:"fonts"`
	Screen          string   `json:"screen"`
	UniquenessScore int      `json:"uniqueness_score"`
}

// Digest returns a short BLAKE2b digest over every fingerprint channel.
// Reports show the digest instead of raw canvas or WebGL material.
// An all-empty fingerprint yields an empty digest.
func (f FingerprintResult) Digest() string {
	if f.Canvas == "" && f.WebGL == "" && f.Audio == "" && len(f.Fonts) == 0 && f.Screen == "" {
		return ""
	}
	parts := []string{f.Canvas, f.WebGL, f.Audio, strings.Join(f.Fonts, ","), f.Screen}
	sum := blake2b.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}

// BrowserResult is the raw output of the browser probe.
type BrowserResult struct {
	UserAgent           string   `json:"user_agent"`
	Platform            string   `json:"platform"`
	Vendor              string   `json:"vendor,omitempty"`
	Language            string   `json:"language"`
	Languages           []string `json:"languages,omitempty"`
	CookiesEnabled      bool     `json:"cookies_enabled"`
	DoNotTrack          bool     `json:"do_not_track"`
	HardwareConcurrency int      `json:"hardware_concurrency"`
	DeviceMemory        float64  `json:"device_memory"`
	ScreenResolution    string   `json:"screen_resolution,omitempty"`
	ColorDepth          int      `json:"color_depth,omitempty"`
	Timezone            string   `json:"timezone,omitempty"`
	Plugins             []string `json:"plugins"`
}
