// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/typeduelz/internal/engine"
	"github.com/verte-zerg/typeduelz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of attempts.
type Summary struct {
	Attempts    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	GoalsMet    int
	TotalTime   time.Duration
}

// GoalRate returns the fraction of attempts that met their tier goal.
func (s Summary) GoalRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.GoalsMet) / float64(s.Attempts)
}

// Summarize computes averages, best speed and goal hits for attempts.
func Summarize(attempts []model.AttemptRecord) Summary {
	s := Summary{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return s
	}
	var totalWPM, totalAcc float64
	for _, a := range attempts {
		totalWPM += float64(a.WPM)
		totalAcc += float64(a.Accuracy)
		if a.WPM > s.BestWPM {
			s.BestWPM = a.WPM
		}
		if a.WPM >= engine.GoalWPM(a.BaseDifficulty) {
			s.GoalsMet++
		}
		s.TotalTime += time.Duration(a.DurationMs) * time.Millisecond
	}
	count := float64(len(attempts))
	s.AvgWPM = totalWPM / count
	s.AvgAccuracy = totalAcc / count
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Series extracts WPM and accuracy values from attempts, oldest first.
func Series(attempts []model.AttemptRecord) (wpm, accuracy []float64) {
	wpm = make([]float64, len(attempts))
	accuracy = make([]float64, len(attempts))
	for i, a := range attempts {
		wpm[i] = float64(a.WPM)
		accuracy[i] = float64(a.Accuracy)
	}
	return wpm, accuracy
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptRecord) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(attempts)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %d", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
		fmt.Sprintf("Goals met: %d (%.0f%%)", s.GoalsMet, s.GoalRate()*100),
		fmt.Sprintf("Time typing: %s", s.TotalTime.Round(time.Second)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines, smoothed over window and
// resampled to at most width columns.
func RenderCurves(w io.Writer, attempts []model.AttemptRecord, window, width int, useColor bool) error {
	if len(attempts) == 0 {
		return nil
	}
	wpm, acc := Series(attempts)
	wpm = resample(MovingAverage(wpm, window), width)
	acc = resample(MovingAverage(acc, window), width)
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	rows := []struct {
		label  string
		values []float64
		color  string
	}{
		{label: "WPM     ", values: wpm, color: "\x1b[36m"},
		{label: "Accuracy", values: acc, color: "\x1b[35m"},
	}
	for _, row := range rows {
		line := Sparkline(row.values)
		if useColor {
			line = row.color + line + "\x1b[0m"
		}
		lo, hi := bounds(row.values)
		if _, err := fmt.Fprintf(w, "%s │%s│ %.0f..%.0f\n", row.label, line, lo, hi); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAttemptTable prints the most recent attempts, newest first.
func RenderAttemptTable(w io.Writer, attempts []model.AttemptRecord, limit int) error {
	if len(attempts) == 0 {
		return nil
	}
	headers := []string{"When", "Tier", "Mode", "WPM", "Goal", "Accuracy", "Sentence"}
	rows := AttemptRows(attempts, limit)
	if _, err := fmt.Fprintln(w, "Recent Attempts"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// AttemptRows formats attempts as table rows, newest first, keeping at most limit
// rows when limit is positive.
func AttemptRows(attempts []model.AttemptRecord, limit int) [][]string {
	rows := make([][]string, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		if limit > 0 && len(rows) >= limit {
			break
		}
		a := attempts[i]
		goal := "miss"
		if a.WPM >= engine.GoalWPM(a.BaseDifficulty) {
			goal = "hit"
		}
		tier := string(a.BaseDifficulty)
		if a.Difficulty != a.BaseDifficulty {
			tier = fmt.Sprintf("%s>%s", a.BaseDifficulty, a.Difficulty)
		}
		rows = append(rows, []string{
			a.EndedAt.Local().Format("2006-01-02 15:04"),
			tier,
			string(a.Mode),
			fmt.Sprintf("%d", a.WPM),
			goal,
			fmt.Sprintf("%d%%", a.Accuracy),
			a.Sentence,
		})
	}
	return rows
}

func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	step := float64(len(values)) / float64(width)
	for i := range out {
		start := int(float64(i) * step)
		end := int(float64(i+1) * step)
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func bounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
