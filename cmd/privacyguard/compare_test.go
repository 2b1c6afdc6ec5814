package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/privacyguard/internal/database"
	"github.com/nao1215/privacyguard/internal/model"
)

// entryOf wraps results in a stored entry.
func entryOf(id, label string, r *model.DetectionResults) *database.Entry {
	return &database.Entry{
		ID:        id,
		Label:     label,
		Timestamp: r.Timestamp,
		Total:     r.Score.Total,
		Level:     r.Score.Level,
		Failed:    r.FailedCount(),
		Results:   r,
	}
}

func comparisonFixture() *ComparisonResult {
	previous := sampleRun(62, 40, map[model.Category][]string{
		model.CategoryWebRTC: {"WebRTC exposes a local address", "WebRTC exposes your public address"},
		model.CategoryDNS:    {"No secure DNS resolver detected"},
	})
	current := sampleRun(85, 100, map[model.Category][]string{
		model.CategoryDNS:     {"No secure DNS resolver detected"},
		model.CategoryBrowser: {"Do Not Track is disabled"},
	})
	current.Timestamp = previous.Timestamp.Add(time.Hour)

	return compareRuns(
		entryOf("11111111-aaaa-4bbb-8ccc-000000000001", "before", previous),
		entryOf("22222222-aaaa-4bbb-8ccc-000000000002", "after vpn", current),
	)
}

func TestCompareRuns(t *testing.T) {
	t.Parallel()

	result := comparisonFixture()

	t.Run("category changes in canonical order", func(t *testing.T) {
		t.Parallel()
		if len(result.Categories) != len(model.AllCategories) {
			t.Fatalf("expected %d categories, got %d", len(model.AllCategories), len(result.Categories))
		}
		for i, c := range model.AllCategories {
			if result.Categories[i].Category != c {
				t.Errorf("category %d = %s, want %s", i, result.Categories[i].Category, c)
			}
		}
		for _, c := range result.Categories {
			if c.Category == model.CategoryWebRTC {
				if c.Previous != 40 || c.Current != 100 || c.Delta != 60 {
					t.Errorf("unexpected WebRTC change: %+v", c)
				}
				if c.Title != "WebRTC Protection" {
					t.Errorf("unexpected title %q", c.Title)
				}
			} else if c.Delta != 0 {
				t.Errorf("expected no change for %s, got %+v", c.Category, c)
			}
		}
	})

	t.Run("issue changes", func(t *testing.T) {
		t.Parallel()
		if len(result.NewIssues) != 1 || result.NewIssues[0].Category != model.CategoryBrowser {
			t.Errorf("unexpected new issues: %+v", result.NewIssues)
		}
		if len(result.ResolvedIssues) != 2 {
			t.Fatalf("expected 2 resolved issues, got %+v", result.ResolvedIssues)
		}
		for _, i := range result.ResolvedIssues {
			if i.Category != model.CategoryWebRTC {
				t.Errorf("unexpected resolved issue: %+v", i)
			}
		}
		if result.UnchangedCount != 1 {
			t.Errorf("expected 1 unchanged issue, got %d", result.UnchangedCount)
		}
	})

	t.Run("score change", func(t *testing.T) {
		t.Parallel()
		sc := result.ScoreChange
		if sc.Direction != scoreDirectionImproved || sc.TotalDelta != 23 || !sc.LevelChanged {
			t.Errorf("unexpected score change: %+v", sc)
		}
	})

	t.Run("same issue text in different categories", func(t *testing.T) {
		t.Parallel()
		prev := sampleRun(70, 60, map[model.Category][]string{model.CategoryIP: {"shared"}})
		cur := sampleRun(70, 60, map[model.Category][]string{model.CategoryDNS: {"shared"}})
		r := compareRuns(entryOf("a", "", prev), entryOf("b", "", cur))
		if len(r.NewIssues) != 1 || len(r.ResolvedIssues) != 1 || r.UnchangedCount != 0 {
			t.Errorf("expected issues to be keyed by category, got %+v", r)
		}
	})

	t.Run("entry without snapshot", func(t *testing.T) {
		t.Parallel()
		cur := sampleRun(70, 60, map[model.Category][]string{model.CategoryIP: {"exposed"}})
		r := compareRuns(&database.Entry{ID: "a"}, entryOf("b", "", cur))
		if len(r.NewIssues) != 1 {
			t.Errorf("expected every current issue to be new, got %+v", r.NewIssues)
		}
	})
}

func TestCalculateScoreChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		previous  RunMetadata
		current   RunMetadata
		direction string
		delta     int
		level     bool
	}{
		{
			name:      "improved",
			previous:  RunMetadata{Total: 40, Level: model.LevelLow},
			current:   RunMetadata{Total: 55, Level: model.LevelMedium},
			direction: scoreDirectionImproved,
			delta:     15,
			level:     true,
		},
		{
			name:      "worsened",
			previous:  RunMetadata{Total: 95, Level: model.LevelHigh},
			current:   RunMetadata{Total: 81, Level: model.LevelHigh},
			direction: scoreDirectionWorsened,
			delta:     -14,
		},
		{
			name:      "unchanged",
			previous:  RunMetadata{Total: 60, Level: model.LevelMedium},
			current:   RunMetadata{Total: 60, Level: model.LevelMedium},
			direction: scoreDirectionUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calculateScoreChange(tt.previous, tt.current)
			if got.Direction != tt.direction || got.TotalDelta != tt.delta || got.LevelChanged != tt.level {
				t.Errorf("calculateScoreChange() = %+v", got)
			}
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	deltas := map[int]string{5: "+5", -3: "-3", 0: "0"}
	for in, want := range deltas {
		if got := formatDelta(in); got != want {
			t.Errorf("formatDelta(%d) = %q, want %q", in, got, want)
		}
	}

	directions := map[string]string{
		scoreDirectionImproved:  "IMPROVED (score increased)",
		scoreDirectionWorsened:  "WORSENED (score decreased)",
		scoreDirectionUnchanged: "UNCHANGED",
	}
	for in, want := range directions {
		if got := formatScoreDirection(in); got != want {
			t.Errorf("formatScoreDirection(%q) = %q, want %q", in, got, want)
		}
	}

	if got := labelSuffix(""); got != "" {
		t.Errorf("labelSuffix(\"\") = %q", got)
	}
	if got := labelSuffix("home"); got != "  (home)" {
		t.Errorf("labelSuffix(\"home\") = %q", got)
	}
}

func TestComparisonOutput(t *testing.T) {
	t.Parallel()

	result := comparisonFixture()

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonText(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Run Comparison",
			"IMPROVED (score increased)",
			"11111111",
			"(after vpn)",
			"WebRTC Protection",
			"+60",
			"Level: medium -> high",
			"New Issues (1):",
			"[+] [Browser Hardening] Do Not Track is disabled",
			"Resolved Issues (2):",
			"[-] [WebRTC Protection] WebRTC exposes a local address",
			"Unchanged: 1 issues",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonMarkdown(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# Run Comparison",
			"## New Issues (1)",
			"## Resolved Issues (2)",
			"**+23**",
			"*1 issues unchanged*",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonJSON(&buf, result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got ComparisonResult
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.ScoreChange.TotalDelta != 23 || len(got.Categories) != len(model.AllCategories) {
			t.Errorf("unexpected comparison: %+v", got)
		}
	})
}

func TestSelectRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	open := func(t *testing.T, dbDir string) *database.HistoryDB {
		t.Helper()
		db, err := database.Open(dbDir, database.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return db
	}

	t.Run("needs two runs", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		seedHistory(t, dbDir, sampleRun(90, 100, nil))

		_, _, err := selectRuns(ctx, open(t, dbDir), nil)
		if err == nil || !strings.Contains(err.Error(), "at least 2 runs") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("latest two by default", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		ids := seedHistory(t, dbDir, sampleRun(50, 40, nil), sampleRun(60, 60, nil), sampleRun(70, 80, nil))

		prev, cur, err := selectRuns(ctx, open(t, dbDir), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev.ID != ids[1] || cur.ID != ids[2] {
			t.Errorf("expected %s -> %s, got %s -> %s", ids[1], ids[2], prev.ID, cur.ID)
		}
	})

	t.Run("one argument compares with latest", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		ids := seedHistory(t, dbDir, sampleRun(50, 40, nil), sampleRun(60, 60, nil), sampleRun(70, 80, nil))

		prev, cur, err := selectRuns(ctx, open(t, dbDir), []string{shortID(ids[0])})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev.ID != ids[0] || cur.ID != ids[2] {
			t.Errorf("expected %s -> %s, got %s -> %s", ids[0], ids[2], prev.ID, cur.ID)
		}
	})

	t.Run("two arguments", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		ids := seedHistory(t, dbDir, sampleRun(50, 40, nil), sampleRun(60, 60, nil))

		prev, cur, err := selectRuns(ctx, open(t, dbDir), []string{ids[1], ids[0]})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev.ID != ids[1] || cur.ID != ids[0] {
			t.Error("expected arguments to be used in the given order")
		}
	})

	t.Run("run compared with itself", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		ids := seedHistory(t, dbDir, sampleRun(50, 40, nil), sampleRun(60, 60, nil))

		_, _, err := selectRuns(ctx, open(t, dbDir), []string{ids[1]})
		if err == nil || !strings.Contains(err.Error(), "with itself") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCompareCmd(t *testing.T) {
	t.Parallel()

	t.Run("rejects both formats", func(t *testing.T) {
		t.Parallel()
		_, err := runHistory(t, t.TempDir(), "compare", "--json", "--markdown")
		if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("compares latest runs", func(t *testing.T) {
		t.Parallel()
		dbDir := t.TempDir()
		seedHistory(t, dbDir, sampleRun(50, 40, nil), sampleRun(70, 80, nil))

		out, err := runHistory(t, dbDir, "compare")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "IMPROVED") || !strings.Contains(out, "+20") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}
