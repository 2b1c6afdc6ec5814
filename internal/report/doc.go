// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown with tables, alerts and a mermaid pie chart
//   - JSONWriter: Structured JSON output for tool integration and export
//
// Design decision: We separate report writing from the detection results
// (which are in the model package) so new output formats can be added
// without touching the orchestrator or the analyzers.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
