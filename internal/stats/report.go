// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/typeduelz/internal/model"
	"github.com/verte-zerg/typeduelz/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts    []model.AttemptRecord
	Window      []model.AttemptRecord
	Summary     Summary
	Recent      Summary
	Progression model.ProgressionCounters
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	counters, err := st.Counters(ctx)
	if err != nil {
		return Report{}, err
	}
	window := lastAttempts(attempts, cfg.CurveWindow)
	return Report{
		Attempts:    attempts,
		Window:      window,
		Summary:     Summarize(attempts),
		Recent:      Summarize(window),
		Progression: counters,
	}, nil
}

// RenderReport writes the plain-text report: progression counters, summary,
// curves and recent attempts.
func RenderReport(w io.Writer, report Report, window, width int, useColor bool) error {
	if p := report.Progression; p.SkillLevel > 0 || p.DuelPoints > 0 {
		if _, err := fmt.Fprintf(w, "Skill level: %d\nDuel points: %d\n\n", p.SkillLevel, p.DuelPoints); err != nil {
			return err
		}
	}
	if err := RenderSummary(w, report.Attempts); err != nil {
		return err
	}
	if err := RenderCurves(w, report.Attempts, window, PlotWidthFor(width), useColor); err != nil {
		return err
	}
	return RenderAttemptTable(w, report.Attempts, 10)
}

func lastAttempts(attempts []model.AttemptRecord, window int) []model.AttemptRecord {
	if window <= 0 || len(attempts) <= window {
		return attempts
	}
	return attempts[len(attempts)-window:]
}
