package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nao1215/privacyguard/internal/model"
)

// barWidth is the number of cells in a score bar.
const barWidth = 10

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: Output is plain ASCII unless WithColor is set. Reports
// are often redirected to files, and escape codes make them unreadable
// there. The CLI enables color only when stdout is a terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the raw probe observations.
	verbose bool

	// color highlights the score line and issue markers.
	color bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the raw observations.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithColor enables ANSI colors.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.color = enabled
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(results *model.DetectionResults) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, results)
	w.writeScores(&sb, results)
	w.writeFindings(&sb, results)
	if w.verbose {
		w.writeDetails(&sb, results)
	}
	w.writeRecommendations(&sb, results)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// paint applies attrs when color is enabled.
func (w *SimpleWriter) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if w.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// levelColor returns the color for a protection level.
func levelColor(level model.Level) color.Attribute {
	switch level {
	case model.LevelHigh:
		return color.FgGreen
	case model.LevelMedium:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, results *model.DetectionResults) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       PRIVACYGUARD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	score := fmt.Sprintf("%d/100 (%s)", results.Score.Total, levelText(results.Score.Level))
	fmt.Fprintf(sb, "Run ID:    %s\n", orDash(results.RunID))
	fmt.Fprintf(sb, "Date:      %s\n", results.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Score:     %s\n", w.paint(score, levelColor(results.Score.Level), color.Bold))
	fmt.Fprintf(sb, "Status:    %s\n", statusText(results))
	sb.WriteString("\n")
}

// writeScores writes one bar per category.
func (w *SimpleWriter) writeScores(sb *strings.Builder, results *model.DetectionResults) {
	sb.WriteString("Category Scores\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, row := range Rows(results) {
		note := ""
		if row.Fallback {
			note = "  (detection failed, neutral value)"
		}
		fmt.Fprintf(sb, "  %-24s %3d  [%s]  weight %2d%%%s\n",
			row.Title, row.Score, scoreBar(row.Score), row.Weight, note)
	}
	sb.WriteString("\n")
}

// scoreBar renders a score as a fixed-width bar.
func scoreBar(score int) string {
	filled := max(0, min(barWidth, (score+5)/10))
	return strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
}

// writeFindings writes the issues of every category that has any.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, results *model.DetectionResults) {
	sb.WriteString("Findings\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	found := false
	for _, row := range Rows(results) {
		if len(row.Issues) == 0 {
			continue
		}
		found = true
		fmt.Fprintf(sb, "\n[%s]\n", row.Title)
		for _, issue := range row.Issues {
			fmt.Fprintf(sb, "  %s %s\n", w.paint("!", color.FgRed), issue)
		}
	}
	if !found {
		sb.WriteString("  No privacy issues detected.\n")
	}
	sb.WriteString("\n")
}

// writeDetails writes the raw observations behind the scores.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, results *model.DetectionResults) {
	sb.WriteString("Details\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	ip := results.IP
	fmt.Fprintf(sb, "  Public IP:        %s\n", orDash(ip.ClientIP))
	for _, o := range ip.Observations {
		fmt.Fprintf(sb, "    %-18s %s\n", o.Source, o.IP)
	}
	if ip.Location != nil {
		fmt.Fprintf(sb, "  Location:         %s, %s (%s)\n", orDash(ip.Location.City), orDash(ip.Location.Country), orDash(ip.Location.ISP))
	}
	fmt.Fprintf(sb, "  VPN/Proxy:        vpn=%t proxy=%t hosting=%t\n", ip.IsVPN, ip.IsProxy, ip.IsHosting)

	fmt.Fprintf(sb, "  WebRTC local:     %s\n", orDash(strings.Join(results.WebRTC.LocalIPs, ", ")))
	fmt.Fprintf(sb, "  WebRTC public:    %s\n", orDash(strings.Join(results.WebRTC.PublicIPs, ", ")))
	if results.WebRTC.Error != "" {
		fmt.Fprintf(sb, "  WebRTC error:     %s\n", results.WebRTC.Error)
	}

	fmt.Fprintf(sb, "  DNS servers:      %s\n", orDash(strings.Join(results.DNS.DNSServers, ", ")))
	if loc := results.DNS.DNSLocation; loc != nil {
		fmt.Fprintf(sb, "  DNS operator:     %s (%s)\n", orDash(loc.ISP), orDash(loc.Country))
	}

	fmt.Fprintf(sb, "  IPv6 addresses:   %s\n", orDash(strings.Join(results.IPv6.IPv6Addresses, ", ")))
	fmt.Fprintf(sb, "  IPv6 disabled:    %t\n", results.IPv6.IsIPv6Disabled)

	fmt.Fprintf(sb, "  Fingerprint:      %s (uniqueness %d)\n", orDash(results.Fingerprint.Digest()), results.Fingerprint.UniquenessScore)
	fmt.Fprintf(sb, "  User agent:       %s\n", orDash(truncateString(results.Browser.UserAgent, 60)))
	sb.WriteString("\n")
}

// writeRecommendations writes a numbered list of suggested actions.
func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, results *model.DetectionResults) {
	recs := Recommendations(results)
	if len(recs) == 0 {
		return
	}

	sb.WriteString("Recommendations\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	for i, r := range recs {
		fmt.Fprintf(sb, "  %d. %s\n", i+1, r)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
