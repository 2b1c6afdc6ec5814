package analyzer

import "github.com/nao1215/privacyguard/internal/model"

const (
	penaltyInconsistentIP = 30
	penaltyLocalIPLeak    = 20
)

// IPPrivacy scores the public IP observations gathered from independent
// echo sources. Observations with an empty IP are ignored.
func IPPrivacy(observations []model.IPObservation) model.CategoryScore {
	score := baseline
	issues := []string{}

	distinct := make(map[string]struct{}, len(observations))
	hasLocal := false
	for _, o := range observations {
		if o.IP == "" {
			continue
		}
		distinct[o.IP] = struct{}{}
		if IsPrivateIPv4(o.IP) {
			hasLocal = true
		}
	}

	if len(distinct) > 1 {
		issues = append(issues, "Inconsistent IPs: sources observed different public addresses, traffic may be leaking outside the tunnel")
		score -= penaltyInconsistentIP
	}
	if hasLocal {
		issues = append(issues, "Local IP leak: a private network address was exposed")
		score -= penaltyLocalIPLeak
	}

	return model.CategoryScore{Score: clamp(score), Issues: issues}
}
