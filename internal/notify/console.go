package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/orchestrator"
)

// Console writes notifications as single colored lines.
// It implements orchestrator.Notifier.
type Console struct {
	mu     sync.Mutex
	output io.Writer
	color  bool
}

// Option configures a Console.
type Option func(*Console)

// WithColor enables ANSI colors.
func WithColor(enabled bool) Option {
	return func(c *Console) {
		c.color = enabled
	}
}

// NewConsole creates a Console that writes to output.
func NewConsole(output io.Writer, opts ...Option) *Console {
	c := &Console{output: output}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ orchestrator.Notifier = (*Console)(nil)

// Notify writes n as "[severity] title: detail".
func (c *Console) Notify(n model.Notification) {
	tag := c.paint(fmt.Sprintf("[%s]", n.Severity), severityAttrs(n.Severity)...)

	line := tag + " " + n.Title
	if n.Detail != "" {
		line += ": " + n.Detail
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.output, line)
}

// paint applies attrs when color is enabled.
func (c *Console) paint(s string, attrs ...color.Attribute) string {
	p := color.New(attrs...)
	if c.color {
		p.EnableColor()
	} else {
		p.DisableColor()
	}
	return p.Sprint(s)
}

func severityAttrs(s model.Severity) []color.Attribute {
	switch s {
	case model.SeveritySuccess:
		return []color.Attribute{color.FgGreen}
	case model.SeverityWarning:
		return []color.Attribute{color.FgYellow}
	case model.SeverityError:
		return []color.Attribute{color.FgRed, color.Bold}
	default:
		return []color.Attribute{color.FgBlue}
	}
}
