package analyzer

import (
	"strings"

	"github.com/nao1215/privacyguard/internal/model"
)

const (
	penaltyIPv6Leak    = 40
	penaltyDualStack   = 20
	penaltyEUI64       = 25
	bonusIPv6Disabled  = 10
	penaltyNoTemporary = 15
)

// IsEUI64 reports whether an IPv6 address embeds a MAC-derived interface
// identifier. The check is textual: the ff:fe marker as written, either
// across a group boundary or inside one group.
func IsEUI64(addr string) bool {
	a := strings.ToLower(addr)
	return strings.Contains(a, "ff:fe") || strings.Contains(a, "fffe")
}

func isLinkLocalText(addr string) bool {
	return strings.HasPrefix(strings.ToLower(addr), "fe80:")
}

// IPv6Protection scores IPv6 exposure.
//
// The disabled bonus is capped at 100 as soon as it is applied, so a later
// deduction still lowers the score from 100 rather than from 110.
// An address counts as temporary when it is neither link-local nor EUI-64.
func IPv6Protection(r model.IPv6Result) model.CategoryScore {
	score := baseline
	issues := []string{}

	if r.HasIPv6Leak {
		issues = append(issues, "IPv6 leak detected: your real IPv6 address may reveal your location")
		score -= penaltyIPv6Leak
	}
	if len(r.IPv4Addresses) > 0 && len(r.IPv6Addresses) > 0 {
		issues = append(issues, "Dual-stack configuration (IPv4 + IPv6) increases tracking surface")
		score -= penaltyDualStack
	}

	hasEUI64 := false
	hasTemporary := false
	for _, a := range r.IPv6Addresses {
		eui := IsEUI64(a)
		if eui {
			hasEUI64 = true
		}
		if !eui && !isLinkLocalText(a) {
			hasTemporary = true
		}
	}
	if hasEUI64 {
		issues = append(issues, "IPv6 address embeds a device MAC address (EUI-64)")
		score -= penaltyEUI64
	}

	if r.IsIPv6Disabled {
		score = min(maxScore, score+bonusIPv6Disabled)
	}

	if r.HasIPv6 && !hasTemporary {
		issues = append(issues, "No temporary IPv6 address in use: privacy extensions appear to be disabled")
		score -= penaltyNoTemporary
	}

	return model.CategoryScore{Score: clamp(score), Issues: issues}
}
