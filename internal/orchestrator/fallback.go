package orchestrator

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/nao1215/privacyguard/internal/model"
	"golang.org/x/text/language"
)

const (
	unknownIP = "Unknown"

	dnsFallbackRecommendation  = "DNS detection failed, check your network connection"
	ipv6FallbackRecommendation = "IPv6 detection failed, check your network connection"
)

func fallbackIP() model.IPResult {
	return model.IPResult{
		ClientIP:     unknownIP,
		Observations: []model.IPObservation{},
	}
}

// fallbackWebRTC carries the probe error so the analyzer scores the category
// as uncertain rather than clean.
func fallbackWebRTC(err error) model.WebRTCResult {
	return model.WebRTCResult{
		LocalIPs:  []string{},
		PublicIPs: []string{},
		Error:     errorText(err),
	}
}

func fallbackDNS(err error) model.DNSResult {
	return model.DNSResult{
		DNSServers:      []string{},
		Recommendations: []string{dnsFallbackRecommendation},
		Error:           errorText(err),
	}
}

func fallbackIPv6(err error) model.IPv6Result {
	return model.IPv6Result{
		IPv6Addresses:   []string{},
		IPv4Addresses:   []string{},
		IsIPv6Disabled:  true,
		Recommendations: []string{ipv6FallbackRecommendation},
		Error:           errorText(err),
	}
}

func fallbackFingerprint() model.FingerprintResult {
	return model.FingerprintResult{Fonts: []string{}}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// LocalBrowserIntrospection describes the host environment in place of a
// browser that could not be probed. Cookies are assumed enabled and Do Not
// Track off because those are browser defaults.
func LocalBrowserIntrospection() model.BrowserResult {
	tag := localeTag()
	return model.BrowserResult{
		Platform:            runtime.GOOS + "/" + runtime.GOARCH,
		Language:            tag.String(),
		Languages:           []string{tag.String()},
		CookiesEnabled:      true,
		DoNotTrack:          false,
		HardwareConcurrency: runtime.NumCPU(),
		Timezone:            time.Local.String(),
		Plugins:             []string{},
	}
}

// localeTag parses a POSIX locale such as "ja_JP.UTF-8" into a BCP 47 tag.
func localeTag() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err == nil {
			return tag
		}
	}
	return language.AmericanEnglish
}
