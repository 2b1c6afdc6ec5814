package analyzer

import (
	"strings"

	"github.com/nao1215/privacyguard/internal/model"
)

const (
	penaltyDNSLeak         = 40
	penaltyNotVPNDNS       = 20
	penaltyManyResolvers   = 10
	penaltyCountryMismatch = 15
	bonusPrivacyResolver   = 10

	// maxResolvers is the number of distinct resolvers tolerated before the
	// multiple resolution paths are penalized.
	maxResolvers = 2
)

// privacyResolverProviders are matched case-insensitively against the
// resolver's ISP name.
var privacyResolverProviders = []string{"cloudflare", "quad9", "nextdns", "adguard"}

// DNSPrivacy scores the resolver observations. ipLocation is the geolocation
// of the client's public address; when nil, the rules that compare against
// it are skipped.
func DNSPrivacy(r model.DNSResult, ipLocation *model.Location) model.CategoryScore {
	score := baseline
	issues := []string{}

	if r.HasDNSLeak {
		issues = append(issues, "DNS leak detected: queries may reveal your real location")
		score -= penaltyDNSLeak
	}
	if !r.IsUsingVPNDNS && ipLocation != nil {
		issues = append(issues, "Not using the DNS servers provided by your VPN")
		score -= penaltyNotVPNDNS
	}
	if countDistinct(r.DNSServers) > maxResolvers {
		issues = append(issues, "Multiple DNS servers observed: more resolution paths increase the leak surface")
		score -= penaltyManyResolvers
	}
	if r.DNSLocation != nil && ipLocation != nil &&
		r.DNSLocation.Country != "" && ipLocation.Country != "" &&
		!strings.EqualFold(r.DNSLocation.Country, ipLocation.Country) {
		issues = append(issues, "DNS server location differs from your IP location")
		score -= penaltyCountryMismatch
	}
	if r.DNSLocation != nil && isPrivacyResolver(r.DNSLocation.ISP) {
		score += bonusPrivacyResolver
	}

	return model.CategoryScore{Score: clamp(score), Issues: issues}
}

func isPrivacyResolver(isp string) bool {
	isp = strings.ToLower(isp)
	if isp == "" {
		return false
	}
	for _, p := range privacyResolverProviders {
		if strings.Contains(isp, p) {
			return true
		}
	}
	return false
}

func countDistinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}
