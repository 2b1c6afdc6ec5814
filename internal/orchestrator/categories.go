package orchestrator

import (
	"context"
	"fmt"

	"github.com/nao1215/privacyguard/internal/model"
)

// categorySpec describes how one category is probed, substituted on failure,
// and stored in the snapshot. Adding a category is a new table entry.
type categorySpec struct {
	category model.Category
	name     string
	weight   float64
	probe    func(ctx context.Context, p Prober) (any, error)
	fallback func(o *Orchestrator, probeErr error) any
	assign   func(r *model.DetectionResults, v any) error
}

// categories lists every category in launch order.
// Weights sum to totalWeight.
var categories = []categorySpec{
	{
		category: model.CategoryIP,
		name:     "IP address detection",
		weight:   1,
		probe:    probeWith(Prober.ProbeIP),
		fallback: func(*Orchestrator, error) any { return fallbackIP() },
		assign:   assignTo(func(r *model.DetectionResults) *model.IPResult { return &r.IP }),
	},
	{
		category: model.CategoryWebRTC,
		name:     "WebRTC leak detection",
		weight:   1,
		probe:    probeWith(Prober.ProbeWebRTC),
		fallback: func(_ *Orchestrator, err error) any { return fallbackWebRTC(err) },
		assign:   assignTo(func(r *model.DetectionResults) *model.WebRTCResult { return &r.WebRTC }),
	},
	{
		category: model.CategoryDNS,
		name:     "DNS leak detection",
		weight:   1,
		probe:    probeWith(Prober.ProbeDNS),
		fallback: func(_ *Orchestrator, err error) any { return fallbackDNS(err) },
		assign:   assignTo(func(r *model.DetectionResults) *model.DNSResult { return &r.DNS }),
	},
	{
		category: model.CategoryIPv6,
		name:     "IPv6 leak detection",
		weight:   1,
		probe:    probeWith(Prober.ProbeIPv6),
		fallback: func(_ *Orchestrator, err error) any { return fallbackIPv6(err) },
		assign:   assignTo(func(r *model.DetectionResults) *model.IPv6Result { return &r.IPv6 }),
	},
	{
		category: model.CategoryFingerprint,
		name:     "Browser fingerprint analysis",
		weight:   1.5,
		probe:    probeWith(Prober.ProbeFingerprint),
		fallback: func(*Orchestrator, error) any { return fallbackFingerprint() },
		assign:   assignTo(func(r *model.DetectionResults) *model.FingerprintResult { return &r.Fingerprint }),
	},
	{
		category: model.CategoryBrowser,
		name:     "Browser configuration analysis",
		weight:   0.5,
		probe:    probeWith(Prober.ProbeBrowser),
		fallback: func(o *Orchestrator, _ error) any { return o.introspect() },
		assign:   assignTo(func(r *model.DetectionResults) *model.BrowserResult { return &r.Browser }),
	},
}

const (
	totalWeight = 6.0

	progressStart   = 10
	progressSpan    = 80
	progressScoring = 95
	progressDone    = 100
)

func probeWith[T any](fn func(Prober, context.Context) (T, error)) func(context.Context, Prober) (any, error) {
	return func(ctx context.Context, p Prober) (any, error) {
		v, err := fn(p, ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func assignTo[T any](field func(*model.DetectionResults) *T) func(*model.DetectionResults, any) error {
	return func(r *model.DetectionResults, v any) error {
		typed, ok := v.(T)
		if !ok {
			var want T
			return fmt.Errorf("%w: got %T, want %T", ErrUnexpectedResult, v, want)
		}
		*field(r) = typed
		return nil
	}
}

// newTasks creates one pending task per category.
func newTasks() []model.DetectionTask {
	tasks := make([]model.DetectionTask, len(categories))
	for i, spec := range categories {
		tasks[i] = model.DetectionTask{
			Name:     spec.name,
			Category: spec.category,
			Weight:   spec.weight,
			Status:   model.TaskPending,
		}
	}
	return tasks
}
