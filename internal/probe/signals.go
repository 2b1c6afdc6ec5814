package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/privacyguard/internal/model"
)

// ErrSignalSectionMissing is returned when the signals file lacks the
// section a probe needs.
var ErrSignalSectionMissing = errors.New("signals file has no such section")

// Signals is the JSON document exported from the browser under test.
// Fingerprint and browser fields use the same names as the report JSON so
// an exported report can be fed back in.
//
// Example:
//
//	{
//	  "fingerprint": {"canvas": "9f2c...", "webgl": "", "audio": "", "fonts": ["Arial"], "screen": "1920x1080x24"},
//	  "browser": {"user_agent": "Mozilla/5.0 ...", "do_not_track": true, "cookies_enabled": false, "plugins": []},
//	  "webrtc": {"candidates": ["candidate:1 1 udp 2122260223 192.168.1.20 54321 typ host"]}
//	}
type Signals struct {
	Fingerprint *model.FingerprintResult `json:"fingerprint,omitempty"`
	Browser     *model.BrowserResult     `json:"browser,omitempty"`
	WebRTC      *WebRTCSignals           `json:"webrtc,omitempty"`
}

// WebRTCSignals holds the ICE candidates gathered by the browser.
type WebRTCSignals struct {
	// Candidates are raw "candidate:" lines or bare addresses.
	Candidates []string `json:"candidates"`
}

// LoadSignals reads a signals file.
func LoadSignals(path string) (*Signals, error) {
	if path == "" {
		return nil, ErrSignalsNotConfigured
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-provided signals path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read signals file: %w", err)
	}

	var s Signals
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse signals file %s: %w", path, err)
	}
	return &s, nil
}

// CandidateAddress extracts the connection address from an ICE candidate
// line ("candidate:<foundation> <component> <transport> <priority> <address>
// <port> typ <type> ..."). Input that is not a candidate line is returned
// trimmed, so bare addresses pass through.
func CandidateAddress(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "a=")
	if !strings.HasPrefix(s, "candidate:") {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) < 5 {
		return ""
	}
	return fields[4]
}
