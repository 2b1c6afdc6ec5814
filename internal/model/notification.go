package model

// Severity classifies a notification.
//
// Design decision: We use iota-based constants rather than string constants
// so that notifiers can compare severities directly. String() and
// MarshalText() provide the wire form.
type Severity int

const (
	// SeverityInfo is a neutral status message.
	SeverityInfo Severity = iota

	// SeveritySuccess means the run completed with a high score.
	SeveritySuccess

	// SeverityWarning means the run completed but the score is medium or some
	// detections failed.
	SeverityWarning

	// SeverityError means the score is low or the run itself failed.
	SeverityError
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity as its string form.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Notification is a user-facing summary event.
type Notification struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}
