package orchestrator

import (
	"fmt"

	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/scoring"
)

// summarize builds the end-of-run notification. Failed probes take
// precedence over the score-based message.
func summarize(r *model.DetectionResults) model.Notification {
	total := r.Score.Total
	if failed := r.FailedCount(); failed > 0 {
		return model.Notification{
			Severity: model.SeverityWarning,
			Title:    "Detection partially completed",
			Detail: fmt.Sprintf("%d of %d detections failed, but a usable report was generated (score %d/100)",
				failed, len(categories), total),
		}
	}

	switch {
	case total >= scoring.HighThreshold:
		return model.Notification{
			Severity: model.SeveritySuccess,
			Title:    "Detection completed",
			Detail:   fmt.Sprintf("Security score %d/100: your privacy protection is strong", total),
		}
	case total >= scoring.MediumThreshold:
		return model.Notification{
			Severity: model.SeverityWarning,
			Title:    "Detection completed",
			Detail:   fmt.Sprintf("Security score %d/100: your privacy protection could be improved", total),
		}
	default:
		return model.Notification{
			Severity: model.SeverityError,
			Title:    "Detection completed",
			Detail:   fmt.Sprintf("Security score %d/100: your privacy is at risk", total),
		}
	}
}
