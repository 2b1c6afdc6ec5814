package analyzer

import (
	"fmt"

	"github.com/nao1215/privacyguard/internal/model"
)

const (
	penaltyWebRTCLocal  = 40
	penaltyWebRTCPublic = 30

	// uncertainScore is used when the probe reported an error. An incomplete
	// harvest is neither safe nor leaking.
	uncertainScore = 50
)

// WebRTCProtection scores the addresses harvested from ICE candidates.
func WebRTCProtection(r model.WebRTCResult) model.CategoryScore {
	score := baseline
	issues := []string{}

	if len(r.LocalIPs) > 0 {
		issues = append(issues, fmt.Sprintf("%d local IP address(es) exposed through WebRTC", len(r.LocalIPs)))
		score -= penaltyWebRTCLocal
	}
	if len(r.PublicIPs) > 0 {
		issues = append(issues, fmt.Sprintf("%d public IP address(es) exposed through WebRTC", len(r.PublicIPs)))
		score -= penaltyWebRTCPublic
	}
	if r.Error != "" {
		issues = append(issues, "WebRTC detection error: "+r.Error)
		score = uncertainScore
	}

	return model.CategoryScore{Score: clamp(score), Issues: issues}
}
