package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/privacyguard/internal/database"
	"github.com/nao1215/privacyguard/internal/model"
)

// Constants for score direction.
const (
	scoreDirectionWorsened  = "worsened"
	scoreDirectionImproved  = "improved"
	scoreDirectionUnchanged = "unchanged"
)

// NewCompareCmd creates the history compare command.
// This command compares two stored detection runs.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [old-id] [new-id]",
		Short: "Compare two stored detection runs",
		Long: `Compare displays differences between two stored detection runs:
- The change of the total score and of every category score
- Issues that appeared since the older run
- Issues that were resolved since the older run

With no arguments the latest two runs are compared. With one argument that
run is compared with the latest run.

Examples:
  # Compare the latest two runs
  privacyguard history compare

  # Compare a specific run with the latest one
  privacyguard history compare 3f2a9c1e

  # Compare two specific runs in JSON format
  privacyguard history compare 3f2a9c1e 9b7d0a44 --json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	// Validate before opening the database.
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	db, _, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	previous, current, err := selectRuns(cmd.Context(), db, args)
	if err != nil {
		return err
	}

	comparison := compareRuns(previous, current)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return outputComparisonJSON(out, comparison)
	case markdownOutput:
		return outputComparisonMarkdown(out, comparison)
	default:
		return outputComparisonText(out, comparison)
	}
}

// selectRuns returns the older and the newer entry to compare.
func selectRuns(ctx context.Context, db *database.HistoryDB, args []string) (previous, current *database.Entry, err error) {
	switch len(args) {
	case 2:
		if previous, err = db.Get(ctx, args[0]); err != nil {
			return nil, nil, err
		}
		if current, err = db.Get(ctx, args[1]); err != nil {
			return nil, nil, err
		}
	case 1:
		if previous, err = db.Get(ctx, args[0]); err != nil {
			return nil, nil, err
		}
		latest, err := db.Latest(ctx, 1)
		if err != nil {
			return nil, nil, err
		}
		current = latest[0]
	default:
		latest, err := db.Latest(ctx, 2)
		if err != nil {
			return nil, nil, err
		}
		if len(latest) < 2 {
			return nil, nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
		}
		previous, current = latest[1], latest[0]
	}

	if previous.ID == current.ID {
		return nil, nil, fmt.Errorf("cannot compare run %s with itself", shortID(previous.ID))
	}
	return previous, current, nil
}

// ComparisonResult holds the result of comparing two detection runs.
type ComparisonResult struct {
	// PreviousRun contains metadata about the older run.
	PreviousRun RunMetadata `json:"previous_run"`

	// CurrentRun contains metadata about the newer run.
	CurrentRun RunMetadata `json:"current_run"`

	// Categories lists every category's score change in canonical order.
	Categories []CategoryChange `json:"categories"`

	// NewIssues contains issues that are new in the current run.
	NewIssues []IssueChange `json:"new_issues,omitempty"`

	// ResolvedIssues contains issues of the previous run that are gone.
	ResolvedIssues []IssueChange `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues present in both runs.
	UnchangedCount int `json:"unchanged_count"`

	// ScoreChange describes the overall change.
	ScoreChange ScoreChange `json:"score_change"`
}

// RunMetadata contains metadata about a run for comparison display.
type RunMetadata struct {
	ID        string      `json:"id"`
	Label     string      `json:"label,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Total     int         `json:"total"`
	Level     model.Level `json:"level"`
	Failed    int         `json:"failed"`
}

// CategoryChange is one category's score in both runs.
type CategoryChange struct {
	Category model.Category `json:"category"`
	Title    string         `json:"title"`
	Previous int            `json:"previous"`
	Current  int            `json:"current"`
	Delta    int            `json:"delta"`
}

// IssueChange is an issue that appeared or disappeared.
type IssueChange struct {
	Category model.Category `json:"category"`
	Title    string         `json:"title"`
	Issue    string         `json:"issue"`
}

// ScoreChange describes the change of the total score.
type ScoreChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// TotalDelta is the change of the total score.
	TotalDelta int `json:"total_delta"`

	// LevelChanged reports whether the protection level changed.
	LevelChanged bool `json:"level_changed"`
}

// compareRuns compares two stored runs.
func compareRuns(previous, current *database.Entry) *ComparisonResult {
	result := &ComparisonResult{
		PreviousRun: runMetadata(previous),
		CurrentRun:  runMetadata(current),
		Categories:  make([]CategoryChange, 0, len(model.AllCategories)),
	}

	prev := resultsOf(previous)
	cur := resultsOf(current)

	for _, c := range model.AllCategories {
		p := prev.Score.Breakdown.Get(c)
		n := cur.Score.Breakdown.Get(c)
		result.Categories = append(result.Categories, CategoryChange{
			Category: c,
			Title:    model.GetCategoryInfo(c).Title,
			Previous: p,
			Current:  n,
			Delta:    n - p,
		})
	}

	previousIssues := issueSet(prev)
	currentIssues := issueSet(cur)

	// Walk categories in order so output is stable.
	for _, c := range model.AllCategories {
		for _, issue := range cur.Analysis[c].Issues {
			if !previousIssues[issueKey(c, issue)] {
				result.NewIssues = append(result.NewIssues, newIssueChange(c, issue))
			}
		}
		for _, issue := range prev.Analysis[c].Issues {
			if currentIssues[issueKey(c, issue)] {
				result.UnchangedCount++
			} else {
				result.ResolvedIssues = append(result.ResolvedIssues, newIssueChange(c, issue))
			}
		}
	}

	result.ScoreChange = calculateScoreChange(result.PreviousRun, result.CurrentRun)
	return result
}

func runMetadata(e *database.Entry) RunMetadata {
	return RunMetadata{
		ID:        e.ID,
		Label:     e.Label,
		Timestamp: e.Timestamp,
		Total:     e.Total,
		Level:     e.Level,
		Failed:    e.Failed,
	}
}

// resultsOf returns the entry's snapshot, or an empty one.
func resultsOf(e *database.Entry) *model.DetectionResults {
	if e.Results == nil {
		return &model.DetectionResults{}
	}
	return e.Results
}

func issueSet(r *model.DetectionResults) map[string]bool {
	set := make(map[string]bool)
	for c, s := range r.Analysis {
		for _, issue := range s.Issues {
			set[issueKey(c, issue)] = true
		}
	}
	return set
}

// issueKey generates a unique key for an issue for comparison purposes.
func issueKey(c model.Category, issue string) string {
	return string(c) + "|" + issue
}

func newIssueChange(c model.Category, issue string) IssueChange {
	return IssueChange{Category: c, Title: model.GetCategoryInfo(c).Title, Issue: issue}
}

// calculateScoreChange calculates the change between two runs. A higher
// score is better.
func calculateScoreChange(previous, current RunMetadata) ScoreChange {
	change := ScoreChange{
		TotalDelta:   current.Total - previous.Total,
		LevelChanged: current.Level != previous.Level,
	}

	switch {
	case change.TotalDelta > 0:
		change.Direction = scoreDirectionImproved
	case change.TotalDelta < 0:
		change.Direction = scoreDirectionWorsened
	default:
		change.Direction = scoreDirectionUnchanged
	}
	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Run Comparison")
	md.PlainText("")
	md.PlainText("**Score Status:** " + formatScoreDirection(result.ScoreChange.Direction))
	md.PlainText("")

	rows := [][]string{
		{"Run", "`" + shortID(result.PreviousRun.ID) + "`", "`" + shortID(result.CurrentRun.ID) + "`", "-"},
		{"Date",
			result.PreviousRun.Timestamp.Format("2006-01-02 15:04"),
			result.CurrentRun.Timestamp.Format("2006-01-02 15:04"),
			"-"},
	}
	for _, c := range result.Categories {
		rows = append(rows, []string{c.Title, strconv.Itoa(c.Previous), strconv.Itoa(c.Current), formatDelta(c.Delta)})
	}
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.Itoa(result.PreviousRun.Total) + "**",
		"**" + strconv.Itoa(result.CurrentRun.Total) + "**",
		"**" + formatDelta(result.ScoreChange.TotalDelta) + "**",
	})
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.NewIssues) > 0 {
		md.H2(fmt.Sprintf("New Issues (%d)", len(result.NewIssues)))
		md.PlainText("")
		items := make([]string, 0, len(result.NewIssues))
		for _, i := range result.NewIssues {
			items = append(items, "**["+i.Title+"]** "+i.Issue)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(result.ResolvedIssues) > 0 {
		md.H2(fmt.Sprintf("Resolved Issues (%d)", len(result.ResolvedIssues)))
		md.PlainText("")
		items := make([]string, 0, len(result.ResolvedIssues))
		for _, i := range result.ResolvedIssues {
			items = append(items, "~~**["+i.Title+"]** "+i.Issue+"~~")
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if result.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d issues unchanged*", result.UnchangedCount)
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintln(out, "Run Comparison")
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nScore Status: %s\n", formatScoreDirection(result.ScoreChange.Direction))

	fmt.Fprintf(out, "\nPrevious run: %s  %s%s\n",
		shortID(result.PreviousRun.ID),
		result.PreviousRun.Timestamp.Format("2006-01-02 15:04:05"),
		labelSuffix(result.PreviousRun.Label))
	fmt.Fprintf(out, "Current run:  %s  %s%s\n",
		shortID(result.CurrentRun.ID),
		result.CurrentRun.Timestamp.Format("2006-01-02 15:04:05"),
		labelSuffix(result.CurrentRun.Label))

	fmt.Fprintln(out, "\nCategory Scores:")
	fmt.Fprintf(out, "  %-24s  %-8s  %-8s  %-6s\n", "Category", "Previous", "Current", "Change")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 52))
	for _, c := range result.Categories {
		fmt.Fprintf(out, "  %-24s  %-8d  %-8d  %-6s\n", c.Title, c.Previous, c.Current, formatDelta(c.Delta))
	}
	fmt.Fprintln(out, "  "+strings.Repeat("-", 52))
	fmt.Fprintf(out, "  %-24s  %-8d  %-8d  %-6s\n", "Total",
		result.PreviousRun.Total, result.CurrentRun.Total, formatDelta(result.ScoreChange.TotalDelta))
	if result.ScoreChange.LevelChanged {
		fmt.Fprintf(out, "  Level: %s -> %s\n", result.PreviousRun.Level, result.CurrentRun.Level)
	}

	if len(result.NewIssues) > 0 {
		fmt.Fprintf(out, "\nNew Issues (%d):\n", len(result.NewIssues))
		for _, i := range result.NewIssues {
			fmt.Fprintf(out, "  [+] [%s] %s\n", i.Title, i.Issue)
		}
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Fprintf(out, "\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, i := range result.ResolvedIssues {
			fmt.Fprintf(out, "  [-] [%s] %s\n", i.Title, i.Issue)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d issues\n", result.UnchangedCount)
	}

	return nil
}

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return "  (" + label + ")"
}

// formatScoreDirection formats the score change direction for display.
func formatScoreDirection(direction string) string {
	switch direction {
	case scoreDirectionImproved:
		return "IMPROVED (score increased)"
	case scoreDirectionWorsened:
		return "WORSENED (score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
