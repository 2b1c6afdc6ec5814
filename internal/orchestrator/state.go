package orchestrator

import (
	"slices"

	"github.com/nao1215/privacyguard/internal/model"
)

// Phase is the orchestrator's lifecycle state.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseDetecting Phase = "detecting"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// State is a point-in-time view of the orchestrator.
// Snapshots handed to callers are deep copies.
type State struct {
	Phase       Phase                   `json:"phase"`
	RunID       string                  `json:"run_id,omitempty"`
	IsDetecting bool                    `json:"is_detecting"`
	Progress    int                     `json:"progress"`
	CurrentStep string                  `json:"current_step"`
	Error       string                  `json:"error,omitempty"`
	Tasks       []model.DetectionTask   `json:"tasks"`
	Results     *model.DetectionResults `json:"results,omitempty"`

	// Version increases with every published change. Observers can use it to
	// discard snapshots they have already superseded.
	Version uint64 `json:"version"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Tasks = slices.Clone(s.Tasks)
	out.Results = s.Results.Clone()
	return out
}

// FailedTasks returns the number of tasks whose probe failed.
func (s State) FailedTasks() int {
	n := 0
	for _, t := range s.Tasks {
		if t.Status == model.TaskFailed {
			n++
		}
	}
	return n
}
