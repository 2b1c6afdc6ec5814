package model

// CategoryScore is an analyzer's verdict on one category.
type CategoryScore struct {
	// Score ranges from 0 (fully exposed) to 100 (no issues found).
	Score int `json:"score"`

	// Issues lists the findings that caused deductions.
	Issues []string `json:"issues"`
}

// Breakdown holds the six category scores fed to the aggregator.
type Breakdown struct {
	IPPrivacy             int `json:"ip_privacy"`
	WebRTCProtection      int `json:"webrtc_protection"`
	DNSPrivacy            int `json:"dns_privacy"`
	IPv6Protection        int `json:"ipv6_protection"`
	FingerprintResistance int `json:"fingerprint_resistance"`
	BrowserHardening      int `json:"browser_hardening"`
}

// Get returns the score stored for a category.
func (b Breakdown) Get(c Category) int {
	switch c {
	case CategoryIP:
		return b.IPPrivacy
	case CategoryWebRTC:
		return b.WebRTCProtection
	case CategoryDNS:
		return b.DNSPrivacy
	case CategoryIPv6:
		return b.IPv6Protection
	case CategoryFingerprint:
		return b.FingerprintResistance
	case CategoryBrowser:
		return b.BrowserHardening
	default:
		return 0
	}
}

// Set stores the score for a category. Unknown categories are ignored.
func (b *Breakdown) Set(c Category, score int) {
	switch c {
	case CategoryIP:
		b.IPPrivacy = score
	case CategoryWebRTC:
		b.WebRTCProtection = score
	case CategoryDNS:
		b.DNSPrivacy = score
	case CategoryIPv6:
		b.IPv6Protection = score
	case CategoryFingerprint:
		b.FingerprintResistance = score
	case CategoryBrowser:
		b.BrowserHardening = score
	}
}

// Level is the discrete risk tier derived from the total score.
// A high level means high protection, not high risk.
type Level string

const (
	// LevelLow is assigned to totals below 50.
	LevelLow Level = "low"
	// LevelMedium is assigned to totals from 50 through 79.
	LevelMedium Level = "medium"
	// LevelHigh is assigned to totals of 80 and above.
	LevelHigh Level = "high"
)

// SecurityScore is the composite output of the aggregator.
// It is derived once per run and never mutated afterwards.
type SecurityScore struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
	Level     Level     `json:"level"`
}
