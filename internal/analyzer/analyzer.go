package analyzer

import "github.com/nao1215/privacyguard/internal/model"

const (
	// baseline is the score every analyzer starts from.
	baseline = 100
	minScore = 0
	maxScore = 100
)

// clamp bounds a score into [0, 100].
func clamp(score int) int {
	return max(minScore, min(maxScore, score))
}

// Analysis is the output of running all six analyzers over one snapshot.
type Analysis struct {
	Scores    map[model.Category]model.CategoryScore
	Breakdown model.Breakdown
}

// Analyze runs every category analyzer over the raw results.
// The DNS analyzer is cross-referenced with the IP geolocation when present.
func Analyze(results *model.DetectionResults) Analysis {
	scores := map[model.Category]model.CategoryScore{
		model.CategoryIP:          IPPrivacy(results.IP.Observations),
		model.CategoryWebRTC:      WebRTCProtection(results.WebRTC),
		model.CategoryDNS:         DNSPrivacy(results.DNS, results.IP.Location),
		model.CategoryIPv6:        IPv6Protection(results.IPv6),
		model.CategoryFingerprint: FingerprintResistance(results.Fingerprint),
		model.CategoryBrowser:     BrowserHardening(results.Browser),
	}

	var breakdown model.Breakdown
	for c, s := range scores {
		breakdown.Set(c, s.Score)
	}
	return Analysis{Scores: scores, Breakdown: breakdown}
}
