package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/orchestrator"
)

func TestConsoleNotify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    model.Notification
		want string
	}{
		{
			name: "success with detail",
			n:    model.Notification{Severity: model.SeveritySuccess, Title: "Detection complete", Detail: "Score 92/100"},
			want: "[success] Detection complete: Score 92/100\n",
		},
		{
			name: "error without detail",
			n:    model.Notification{Severity: model.SeverityError, Title: "Detection failed"},
			want: "[error] Detection failed\n",
		},
		{
			name: "warning",
			n:    model.Notification{Severity: model.SeverityWarning, Title: "Partial results", Detail: "2 detections failed"},
			want: "[warning] Partial results: 2 detections failed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			NewConsole(&buf).Notify(tt.n)
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestConsoleColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewConsole(&buf, WithColor(true)).Notify(model.Notification{Severity: model.SeverityError, Title: "x"})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI escape codes, got %q", buf.String())
	}
}

func TestProgressObserve(t *testing.T) {
	t.Parallel()

	t.Run("prints changes only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := NewProgress(&buf, false)

		p.Observe(orchestrator.State{Phase: orchestrator.PhaseDetecting, Progress: 0, CurrentStep: "Preparing detection", Version: 1})
		p.Observe(orchestrator.State{Phase: orchestrator.PhaseDetecting, Progress: 0, CurrentStep: "Preparing detection", Version: 2})
		p.Observe(orchestrator.State{Phase: orchestrator.PhaseDetecting, Progress: 17, CurrentStep: "IP Address completed", Version: 3})

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
		}
		if lines[1] != "[ 17%] IP Address completed" {
			t.Errorf("unexpected line %q", lines[1])
		}
	})

	t.Run("skips stale versions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := NewProgress(&buf, false)

		p.Observe(orchestrator.State{Phase: orchestrator.PhaseDetecting, Progress: 50, CurrentStep: "b", Version: 5})
		p.Observe(orchestrator.State{Phase: orchestrator.PhaseDetecting, Progress: 33, CurrentStep: "a", Version: 4})

		if strings.Contains(buf.String(), "33%") {
			t.Errorf("stale snapshot printed: %q", buf.String())
		}
	})

	t.Run("lists failed tasks", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := NewProgress(&buf, false)
		p.Observe(orchestrator.State{
			Phase:       orchestrator.PhaseDetecting,
			Progress:    33,
			CurrentStep: "DNS failed",
			Tasks: []model.DetectionTask{
				{Category: model.CategoryIP, Status: model.TaskCompleted},
				{Category: model.CategoryDNS, Status: model.TaskFailed},
			},
			Version: 1,
		})

		if !strings.Contains(buf.String(), "(failed: dns)") {
			t.Errorf("expected failed task list, got %q", buf.String())
		}
	})

	t.Run("failed phase shows error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewProgress(&buf, false).Observe(orchestrator.State{
			Phase:    orchestrator.PhaseFailed,
			Progress: 100,
			Error:    "aggregate: score out of range",
			Version:  9,
		})

		if got := strings.TrimSpace(buf.String()); got != "[100%] detection failed: aggregate: score out of range" {
			t.Errorf("unexpected line %q", got)
		}
	})
}
