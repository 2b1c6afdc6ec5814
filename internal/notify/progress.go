package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/orchestrator"
)

// Progress prints one line per visible change of a detection run.
// Snapshots that change neither the progress nor the step are skipped,
// as are snapshots older than the last one printed.
type Progress struct {
	mu      sync.Mutex
	output  io.Writer
	color   bool
	version uint64
	last    string
}

// NewProgress creates a Progress that writes to output.
func NewProgress(output io.Writer, colorEnabled bool) *Progress {
	return &Progress{output: output, color: colorEnabled}
}

// Observe is an orchestrator subscriber.
func (p *Progress) Observe(s orchestrator.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Version != 0 && s.Version <= p.version {
		return
	}
	p.version = s.Version

	line := p.format(s)
	if line == p.last {
		return
	}
	p.last = line
	fmt.Fprintln(p.output, line)
}

func (p *Progress) format(s orchestrator.State) string {
	bar := color.New(color.FgCyan)
	if p.color {
		bar.EnableColor()
	} else {
		bar.DisableColor()
	}

	switch s.Phase {
	case orchestrator.PhaseFailed:
		return fmt.Sprintf("[%3d%%] detection failed: %s", s.Progress, s.Error)
	case orchestrator.PhaseIdle:
		return "[  0%] idle"
	}

	step := s.CurrentStep
	if step == "" {
		step = string(s.Phase)
	}
	line := fmt.Sprintf("%s %s", bar.Sprintf("[%3d%%]", s.Progress), step)
	if failed := failedNames(s.Tasks); failed != "" {
		line += " (failed: " + failed + ")"
	}
	return line
}

func failedNames(tasks []model.DetectionTask) string {
	var names []string
	for _, t := range tasks {
		if t.Status == model.TaskFailed {
			names = append(names, string(t.Category))
		}
	}
	return strings.Join(names, ", ")
}
