package model

// Category identifies one of the six privacy dimensions that are audited.
type Category string

const (
	// CategoryIP covers public IP exposure and consistency across sources.
	CategoryIP Category = "ip"
	// CategoryWebRTC covers addresses leaked through ICE candidates.
	CategoryWebRTC Category = "webrtc"
	// CategoryDNS covers which resolvers answer on behalf of the client.
	CategoryDNS Category = "dns"
	// CategoryIPv6 covers IPv6 reachability outside a tunnel.
	CategoryIPv6 Category = "ipv6"
	// CategoryFingerprint covers canvas, WebGL, audio, font and screen entropy.
	CategoryFingerprint Category = "fingerprint"
	// CategoryBrowser covers browser configuration hardening.
	CategoryBrowser Category = "browser"
)

// AllCategories lists every category in display order.
// The order is fixed so that reports and task lists are stable across runs.
var AllCategories = []Category{
	CategoryIP,
	CategoryWebRTC,
	CategoryDNS,
	CategoryIPv6,
	CategoryFingerprint,
	CategoryBrowser,
}

// String returns the category identifier.
func (c Category) String() string {
	return string(c)
}

// TaskStatus is the lifecycle state of a single detection task.
type TaskStatus string

const (
	// TaskPending means the task was created but its probe has not been launched.
	TaskPending TaskStatus = "pending"
	// TaskRunning means the probe has been launched and has not settled.
	TaskRunning TaskStatus = "running"
	// TaskCompleted means the probe returned a result.
	TaskCompleted TaskStatus = "completed"
	// TaskFailed means the probe returned an error or panicked.
	TaskFailed TaskStatus = "failed"
)

// Settled reports whether the task has reached a terminal status.
func (s TaskStatus) Settled() bool {
	return s == TaskCompleted || s == TaskFailed
}

// DetectionTask tracks one probe within a run.
// Tasks are created at run start and mutated only by the orchestrator.
type DetectionTask struct {
	// Name is the human-readable label shown while the task runs.
	Name string `json:"name"`

	// Category is the privacy dimension this task probes.
	Category Category `json:"category"`

	// Weight is the task's share of overall progress. Always positive.
	Weight float64 `json:"weight"`

	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`

	// Error holds the probe's error message when Status is TaskFailed.
	Error string `json:"error,omitempty"`
}
