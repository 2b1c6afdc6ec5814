package analyzer

import (
	"fmt"
	"strings"

	"github.com/nao1215/privacyguard/internal/model"
)

const (
	penaltyNoDNT       = 10
	penaltyCookies     = 15
	penaltyPlugins     = 10
	penaltyCPUCores    = 5
	penaltyDeviceMem   = 5
	penaltyChromium    = 10
	bonusFirefox       = 5
	maxPluginsTolerate = 5
)

// BrowserHardening scores the browser's configuration.
// Chromium-family user agents other than Edge are penalized; Firefox gets a
// small bonus. Edge user agents contain "edg" and are left neutral.
func BrowserHardening(b model.BrowserResult) model.CategoryScore {
	score := baseline
	issues := []string{}

	if !b.DoNotTrack {
		issues = append(issues, "Do Not Track is not enabled")
		score -= penaltyNoDNT
	}
	if b.CookiesEnabled {
		issues = append(issues, "Cookies are enabled and may be used for tracking")
		score -= penaltyCookies
	}
	if len(b.Plugins) > maxPluginsTolerate {
		issues = append(issues, fmt.Sprintf("%d browser plugins are enumerable, increasing fingerprinting risk", len(b.Plugins)))
		score -= penaltyPlugins
	}
	if b.HardwareConcurrency > 0 {
		issues = append(issues, "CPU core count is exposed")
		score -= penaltyCPUCores
	}
	if b.DeviceMemory > 0 {
		issues = append(issues, "Device memory size is exposed")
		score -= penaltyDeviceMem
	}

	ua := strings.ToLower(b.UserAgent)
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		issues = append(issues, "Chromium-based browser offers weaker privacy defaults")
		score -= penaltyChromium
	case strings.Contains(ua, "firefox"):
		score += bonusFirefox
	}

	return model.CategoryScore{Score: clamp(score), Issues: issues}
}
