package stats

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typeduelz/internal/model"
	"github.com/verte-zerg/typeduelz/internal/store"
)

func seedAttempts(n int) []model.AttemptRecord {
	attempts := make([]model.AttemptRecord, 0, n)
	for i := 0; i < n; i++ {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		attempts = append(attempts, model.AttemptRecord{
			ID:             fmt.Sprintf("a-%d", i),
			StartedAt:      start,
			EndedAt:        start.Add(10 * time.Second),
			BaseDifficulty: model.Easy,
			Difficulty:     model.Easy,
			Mode:           model.Solo,
			Sentence:       "Fast fox.",
			WPM:            15 + i*5,
			Accuracy:       90 + i,
			DurationMs:     10000,
		})
	}
	return attempts
}

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "typeduelz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i, a := range seedAttempts(3) {
		update := model.ProgressUpdate{Attempt: a, SkillGained: 1, DuelPointsGained: i % 2}
		if err := st.Save(ctx, update); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(report.Attempts))
	}
	if report.Attempts[0].ID != "a-1" || report.Attempts[1].ID != "a-2" {
		t.Fatalf("unexpected attempt ids: %+v", report.Attempts)
	}
	if len(report.Window) != 1 || report.Window[0].ID != "a-2" {
		t.Fatalf("unexpected window: %+v", report.Window)
	}
	if report.Summary.BestWPM != 25 {
		t.Fatalf("expected best wpm 25, got %d", report.Summary.BestWPM)
	}
	if report.Recent.Attempts != 1 {
		t.Fatalf("expected 1 recent attempt, got %d", report.Recent.Attempts)
	}
	if report.Progression.SkillLevel != 3 || report.Progression.DuelPoints != 1 {
		t.Fatalf("unexpected progression: %+v", report.Progression)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(seedAttempts(3))
	if s.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", s.Attempts)
	}
	if s.AvgWPM != 20 {
		t.Fatalf("expected avg wpm 20, got %v", s.AvgWPM)
	}
	if s.AvgAccuracy != 91 {
		t.Fatalf("expected avg accuracy 91, got %v", s.AvgAccuracy)
	}
	// Easy goal is 20 WPM: attempts at 20 and 25 meet it.
	if s.GoalsMet != 2 {
		t.Fatalf("expected 2 goals met, got %d", s.GoalsMet)
	}
	if s.TotalTime != 30*time.Second {
		t.Fatalf("expected 30s total, got %s", s.TotalTime)
	}
	if Summarize(nil).GoalRate() != 0 {
		t.Fatalf("expected zero goal rate for empty summary")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparklineFlatAndRange(t *testing.T) {
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline: %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
}

func TestResampleCapsWidth(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	out := resample(values, 10)
	if len(out) != 10 {
		t.Fatalf("expected 10 values, got %d", len(out))
	}
	if out[0] != 4.5 {
		t.Fatalf("expected first bucket mean 4.5, got %v", out[0])
	}
}

func TestRenderReportPlain(t *testing.T) {
	attempts := seedAttempts(3)
	var buf bytes.Buffer
	report := Report{
		Attempts:    attempts,
		Summary:     Summarize(attempts),
		Progression: model.ProgressionCounters{SkillLevel: 3, DuelPoints: 2},
	}
	if err := RenderReport(&buf, report, 2, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Skill level: 3", "Duel points: 2", "Attempts: 3", "Best WPM: 25", "Goals met: 2 (67%)", "Recent Attempts", "Fast fox."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain output must not contain ANSI codes")
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No attempts found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestAttemptRowsNewestFirst(t *testing.T) {
	attempts := seedAttempts(3)
	attempts[2].Difficulty = model.Medium
	attempts[2].BaseDifficulty = model.Hard
	rows := AttemptRows(attempts, 2)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "hard>medium" {
		t.Fatalf("expected eased tier label, got %q", rows[0][1])
	}
	if rows[0][4] != "miss" || rows[1][4] != "hit" {
		t.Fatalf("unexpected goal column: %q %q", rows[0][4], rows[1][4])
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(0); got != 0 {
		t.Fatalf("expected 0 for unknown width, got %d", got)
	}
	if got := PlotWidthFor(20); got != minPlotWidth {
		t.Fatalf("expected min width, got %d", got)
	}
	if got := PlotWidthFor(100); got != 76 {
		t.Fatalf("expected 76, got %d", got)
	}
}
