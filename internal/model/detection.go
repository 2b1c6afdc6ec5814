package model

import (
	"slices"
	"time"
)

// DetectionResults is the snapshot produced by one completed run.
// Ownership passes to the caller once published; the orchestrator keeps no
// reference to it.
type DetectionResults struct {
	// RunID identifies the run that produced this snapshot.
	RunID string `json:"run_id"`

	IP          IPResult          `json:"ip"`
	WebRTC      WebRTCResult      `json:"webrtc"`
	DNS         DNSResult         `json:"dns"`
	IPv6        IPv6Result        `json:"ipv6"`
	Fingerprint FingerprintResult `json:"fingerprint"`
	Browser     BrowserResult     `json:"browser"`

	// Score is the aggregated security score.
	Score SecurityScore `json:"score"`

	// Analysis holds each analyzer's score and issues, keyed by category.
	Analysis map[Category]CategoryScore `json:"analysis"`

	// Fallbacks lists the categories whose probe failed and whose values
	// were substituted.
	Fallbacks []Category `json:"fallbacks,omitempty"`

	// Timestamp is when the snapshot was assembled.
	Timestamp time.Time `json:"timestamp"`
}

// FailedCount returns the number of categories filled with fallback values.
func (d *DetectionResults) FailedCount() int {
	return len(d.Fallbacks)
}

// IsFallback reports whether the category's probe failed.
func (d *DetectionResults) IsFallback(c Category) bool {
	return slices.Contains(d.Fallbacks, c)
}

// Clone returns a deep copy so that observers cannot mutate shared slices.
func (d *DetectionResults) Clone() *DetectionResults {
	if d == nil {
		return nil
	}
	out := *d

	out.IP.Observations = slices.Clone(d.IP.Observations)
	if d.IP.Location != nil {
		loc := *d.IP.Location
		out.IP.Location = &loc
	}

	out.WebRTC.LocalIPs = slices.Clone(d.WebRTC.LocalIPs)
	out.WebRTC.PublicIPs = slices.Clone(d.WebRTC.PublicIPs)

	out.DNS.DNSServers = slices.Clone(d.DNS.DNSServers)
	out.DNS.Recommendations = slices.Clone(d.DNS.Recommendations)
	if d.DNS.DNSLocation != nil {
		loc := *d.DNS.DNSLocation
		out.DNS.DNSLocation = &loc
	}

	out.IPv6.IPv6Addresses = slices.Clone(d.IPv6.IPv6Addresses)
	out.IPv6.IPv4Addresses = slices.Clone(d.IPv6.IPv4Addresses)
	out.IPv6.Recommendations = slices.Clone(d.IPv6.Recommendations)

	out.Fingerprint.Fonts = slices.Clone(d.Fingerprint.Fonts)
	out.Browser.Languages = slices.Clone(d.Browser.Languages)
	out.Browser.Plugins = slices.Clone(d.Browser.Plugins)

	if d.Analysis != nil {
		out.Analysis = make(map[Category]CategoryScore, len(d.Analysis))
		for k, v := range d.Analysis {
			out.Analysis[k] = CategoryScore{Score: v.Score, Issues: slices.Clone(v.Issues)}
		}
	}
	out.Fallbacks = slices.Clone(d.Fallbacks)
	return &out
}
