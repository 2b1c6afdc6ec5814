package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/scoring"
)

// Writer defines the interface for report output.
// Implementations write detection results in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(results *model.DetectionResults) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(results *model.DetectionResults) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// recommendThreshold is the category score below which the category's
// general recommendation is included.
const recommendThreshold = scoring.HighThreshold

// CategoryRow is one category's line in a report.
type CategoryRow struct {
	Category model.Category `json:"category"`
	Title    string         `json:"title"`
	Score    int            `json:"score"`
	Weight   int            `json:"weight"`
	Issues   []string       `json:"issues"`
	Fallback bool           `json:"fallback"`
}

// Rows returns one row per category in canonical order.
func Rows(results *model.DetectionResults) []CategoryRow {
	rows := make([]CategoryRow, 0, len(model.AllCategories))
	for _, c := range model.AllCategories {
		rows = append(rows, CategoryRow{
			Category: c,
			Title:    model.GetCategoryInfo(c).Title,
			Score:    results.Score.Breakdown.Get(c),
			Weight:   scoring.Weights[c],
			Issues:   slices.Clone(results.Analysis[c].Issues),
			Fallback: results.IsFallback(c),
		})
	}
	return rows
}

// Recommendations returns the actions suggested by a run, without
// duplicates. Probe-specific advice comes first, followed by the general
// advice for every category scoring below the high threshold, weakest
// category first.
func Recommendations(results *model.DetectionResults) []string {
	var out []string
	add := func(s string) {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	if !results.IsFallback(model.CategoryDNS) {
		for _, r := range results.DNS.Recommendations {
			add(r)
		}
	}
	if !results.IsFallback(model.CategoryIPv6) {
		for _, r := range results.IPv6.Recommendations {
			add(r)
		}
	}

	rows := Rows(results)
	slices.SortStableFunc(rows, func(a, b CategoryRow) int {
		return a.Score - b.Score
	})
	for _, row := range rows {
		if row.Score < recommendThreshold && !row.Fallback {
			add(model.GetCategoryInfo(row.Category).Recommendation)
		}
	}
	return out
}

// statusText describes whether every detection completed.
func statusText(results *model.DetectionResults) string {
	if n := results.FailedCount(); n > 0 {
		return fmt.Sprintf("Partial (%d of %d detections failed)", n, len(model.AllCategories))
	}
	return "Complete"
}

// levelText returns a display name for a level.
func levelText(level model.Level) string {
	switch level {
	case model.LevelHigh:
		return "HIGH protection"
	case model.LevelMedium:
		return "MEDIUM protection"
	case model.LevelLow:
		return "LOW protection"
	default:
		return "UNKNOWN"
	}
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
