package orchestrator

import (
	"context"

	"github.com/nao1215/privacyguard/internal/model"
)

// Prober supplies raw results for each category. Implementations own their
// timeouts; the orchestrator waits for every call to return.
type Prober interface {
	ProbeIP(ctx context.Context) (model.IPResult, error)
	ProbeWebRTC(ctx context.Context) (model.WebRTCResult, error)
	ProbeDNS(ctx context.Context) (model.DNSResult, error)
	ProbeIPv6(ctx context.Context) (model.IPv6Result, error)
	ProbeFingerprint(ctx context.Context) (model.FingerprintResult, error)
	ProbeBrowser(ctx context.Context) (model.BrowserResult, error)
}

// HistorySink persists completed snapshots. A failure to save is logged and
// never fails the run. SaveResults is called before the run is finished, so
// Run.Wait and Detect return only after it returns; a slow sink delays them.
type HistorySink interface {
	SaveResults(ctx context.Context, results *model.DetectionResults) error
}

// Notifier receives the summary notification emitted at the end of a run.
type Notifier interface {
	Notify(n model.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n model.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n model.Notification) {
	f(n)
}
