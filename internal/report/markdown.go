package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/privacyguard/internal/model"
	"github.com/nao1215/privacyguard/internal/scoring"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides type-safe tables, GitHub-flavored alerts and
// mermaid charts without hand-escaping.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(results *model.DetectionResults) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, results)
	w.writeScores(md, results)
	w.writeFindings(md, results)
	w.writeDetails(md, results)
	w.writeRecommendations(md, results)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, results *model.DetectionResults) {
	md.H1("PrivacyGuard Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + orDash(results.RunID) + "`"},
			{"Date", results.Timestamp.Format("2006-01-02 15:04:05 MST")},
			{"Score", "**" + strconv.Itoa(results.Score.Total) + "/100**"},
			{"Level", levelText(results.Score.Level)},
			{"Status", statusText(results)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, results)
}

// writeAlert writes an alert matching the protection level.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, results *model.DetectionResults) {
	switch results.Score.Level {
	case model.LevelLow:
		md.Cautionf("Low privacy protection (%d/100). Your identity is likely exposed.", results.Score.Total)
	case model.LevelMedium:
		md.Warningf("Medium privacy protection (%d/100). Some information leaks were detected.", results.Score.Total)
	default:
		md.Tip("High privacy protection. No significant leaks detected.")
	}
	md.PlainText("")

	if n := results.FailedCount(); n > 0 {
		md.Importantf("%d detection(s) failed and were scored with neutral values.", n)
		md.PlainText("")
	}
}

// writeScores writes the category table and the contribution chart.
func (w *MarkdownWriter) writeScores(md *markdown.Markdown, results *model.DetectionResults) {
	md.H2("Category Scores")
	md.PlainText("")

	rows := Rows(results)
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		note := "-"
		if row.Fallback {
			note = "detection failed"
		}
		table = append(table, []string{
			row.Title,
			strconv.Itoa(row.Score),
			strconv.Itoa(row.Weight) + "%",
			strconv.Itoa(len(row.Issues)),
			note,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Weight", "Issues", "Note"},
		Rows:   table,
	})
	md.PlainText("")

	if results.Score.Total > 0 {
		w.writePieChart(md, results)
	}
}

// writePieChart writes a mermaid pie chart of each category's share of
// the total score.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, results *model.DetectionResults) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Score Contribution by Category"),
		piechart.WithShowData(true),
	)

	for _, c := range model.AllCategories {
		points := (scoring.Contribution(results.Score.Breakdown, c) + 50) / 100
		if points > 0 {
			chart.LabelAndIntValue(model.GetCategoryInfo(c).Title, uint64(points))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFindings writes the issues of every category that has any.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, results *model.DetectionResults) {
	md.H2("Findings")
	md.PlainText("")

	found := false
	for _, row := range Rows(results) {
		if len(row.Issues) == 0 {
			continue
		}
		found = true
		md.H3(row.Title)
		md.PlainText("")
		md.BulletList(row.Issues...)
		md.PlainText("")
		md.Details("Why it matters", model.GetCategoryInfo(row.Category).Impact)
		md.PlainText("")
	}
	if !found {
		md.PlainText("No privacy issues detected.")
		md.PlainText("")
	}
}

// writeDetails writes the raw observations as a table.
func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, results *model.DetectionResults) {
	md.H2("Details")
	md.PlainText("")

	location := "-"
	if loc := results.IP.Location; loc != nil {
		location = orDash(strings.Join(nonEmpty(loc.City, loc.Country), ", "))
	}
	dnsOperator := "-"
	if loc := results.DNS.DNSLocation; loc != nil {
		dnsOperator = orDash(loc.ISP)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Observation", "Value"},
		Rows: [][]string{
			{"Public IP", code(results.IP.ClientIP)},
			{"Location", location},
			{"IP sources agree", strconv.FormatBool(results.IP.IsConsistent)},
			{"WebRTC local IPs", code(strings.Join(results.WebRTC.LocalIPs, ", "))},
			{"WebRTC public IPs", code(strings.Join(results.WebRTC.PublicIPs, ", "))},
			{"DNS servers", code(strings.Join(results.DNS.DNSServers, ", "))},
			{"DNS operator", dnsOperator},
			{"IPv6 addresses", code(strings.Join(results.IPv6.IPv6Addresses, ", "))},
			{"Fingerprint", code(results.Fingerprint.Digest())},
			{"Fingerprint uniqueness", strconv.Itoa(results.Fingerprint.UniquenessScore)},
			{"User agent", truncateString(orDash(results.Browser.UserAgent), 60)},
		},
	})
	md.PlainText("")
}

// writeRecommendations writes the suggested actions as a numbered list.
func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, results *model.DetectionResults) {
	recs := Recommendations(results)
	if len(recs) == 0 {
		return
	}
	md.H2("Recommendations")
	md.PlainText("")
	md.OrderedList(recs...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [PrivacyGuard](https://github.com/nao1215/privacyguard)*")
}

// code wraps a non-empty value in backticks.
func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

// nonEmpty returns the non-empty values in order.
func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
