package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/privacyguard/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the model types already carry json tags and the
// output must round-trip through the history store, which uses the same
// encoding.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the detection results in JSON format.
func (w *JSONWriter) Write(results *model.DetectionResults) (int, error) {
	return w.writeJSON(results)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for terminal output.
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps detection results with output metadata.
//
// Design decision: We wrap the results rather than extending
// DetectionResults so that output-only fields never reach the history
// store.
type JSONReport struct {
	// Version is the PrivacyGuard version that generated this report.
	Version string `json:"version"`

	// Results is the full detection output.
	Results *model.DetectionResults `json:"results"`

	// Categories is the per-category summary in canonical order.
	Categories []CategoryRow `json:"categories"`

	// Recommendations is the deduplicated list of suggested actions.
	Recommendations []string `json:"recommendations"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(results *model.DetectionResults, version string) *JSONReport {
	recs := Recommendations(results)
	if recs == nil {
		recs = []string{}
	}
	return &JSONReport{
		Version:         version,
		Results:         results,
		Categories:      Rows(results),
		Recommendations: recs,
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the PrivacyGuard version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the detection results wrapped with metadata.
func (w *FullJSONWriter) Write(results *model.DetectionResults) (int, error) {
	return w.writeJSON(NewJSONReport(results, w.version))
}
