package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/privacyguard/internal/config"
	"github.com/nao1215/privacyguard/internal/database"
	"github.com/nao1215/privacyguard/internal/model"
)

const testUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

var errProbeDown = errors.New("probe unavailable")

// stubProber returns clean results. Categories listed in fail return an
// error, and webrtcLeak adds a local address leak.
type stubProber struct {
	fail       map[model.Category]bool
	webrtcLeak bool
}

func (s *stubProber) failing(c model.Category) error {
	if s.fail[c] {
		return errProbeDown
	}
	return nil
}

func (s *stubProber) ProbeIP(context.Context) (model.IPResult, error) {
	return model.IPResult{
		ClientIP:     "203.0.113.5",
		Observations: []model.IPObservation{{IP: "203.0.113.5", Source: "a"}, {IP: "203.0.113.5", Source: "b"}},
		IsConsistent: true,
		IsVPN:        true,
		Location:     &model.Location{Country: "Japan", ISP: "Example VPN"},
	}, s.failing(model.CategoryIP)
}

func (s *stubProber) ProbeWebRTC(context.Context) (model.WebRTCResult, error) {
	r := model.WebRTCResult{LocalIPs: []string{}, PublicIPs: []string{}}
	if s.webrtcLeak {
		r.HasLeak = true
		r.LocalIPs = []string{"192.168.1.20"}
	}
	return r, s.failing(model.CategoryWebRTC)
}

func (s *stubProber) ProbeDNS(context.Context) (model.DNSResult, error) {
	return model.DNSResult{
		DNSServers:    []string{"1.1.1.1"},
		IsUsingVPNDNS: true,
		DNSLocation:   &model.DNSLocation{Server: "1.1.1.1", Country: "Japan", ISP: "Cloudflare, Inc."},
	}, s.failing(model.CategoryDNS)
}

func (s *stubProber) ProbeIPv6(context.Context) (model.IPv6Result, error) {
	return model.IPv6Result{IPv4Addresses: []string{"203.0.113.5"}, IPv6Addresses: []string{}}, s.failing(model.CategoryIPv6)
}

func (s *stubProber) ProbeFingerprint(context.Context) (model.FingerprintResult, error) {
	return model.FingerprintResult{Fonts: []string{}}, s.failing(model.CategoryFingerprint)
}

func (s *stubProber) ProbeBrowser(context.Context) (model.BrowserResult, error) {
	return model.BrowserResult{UserAgent: testUserAgent, DoNotTrack: true, Plugins: []string{}}, s.failing(model.CategoryBrowser)
}

// testConfig returns a Config whose history lives in a temporary directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.DBDir = t.TempDir()
	return cfg
}

// writeConfigFile writes a .privacyguard file pointing history at dbDir
// and returns its path.
func writeConfigFile(t *testing.T, dbDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".privacyguard")
	content := "history:\n  dir: " + dbDir + "\n  limit: 5\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// seedHistory stores one run per results value, oldest first, and returns
// the entry IDs in the same order.
func seedHistory(t *testing.T, dbDir string, results ...*model.DetectionResults) []string {
	t.Helper()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ids := make([]string, 0, len(results))
	for _, r := range results {
		id, err := db.Save(context.Background(), r, "")
		if err != nil {
			t.Fatalf("failed to save results: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// sampleRun builds stored results with the given category scores and issues.
func sampleRun(total int, webrtc int, issues map[model.Category][]string) *model.DetectionResults {
	r := &model.DetectionResults{
		RunID: "run",
		Score: model.SecurityScore{
			Total: total,
			Breakdown: model.Breakdown{
				IPPrivacy:             80,
				WebRTCProtection:      webrtc,
				DNSPrivacy:            80,
				IPv6Protection:        100,
				FingerprintResistance: 70,
				BrowserHardening:      60,
			},
			Level: levelFor(total),
		},
		Analysis:  map[model.Category]model.CategoryScore{},
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for c, list := range issues {
		r.Analysis[c] = model.CategoryScore{Score: r.Score.Breakdown.Get(c), Issues: list}
	}
	return r
}

func levelFor(total int) model.Level {
	switch {
	case total >= 80:
		return model.LevelHigh
	case total >= 50:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}
