package engine

import (
	"math"
	"time"

	"github.com/goblinsan/gh-burndown/pkg/types"
)

// CalculateBurndown builds the daily series for snapshot. plannedPoints, when
// non-nil, replaces the snapshot total as the starting point of both curves.
//
// An item counts as done on every day whose calendar date is on or after the
// calendar date (UTC) it was closed. The ideal line falls linearly from the
// total on the first day to zero on the last; a zero-length sprint yields a
// single point.
func CalculateBurndown(snapshot types.ProjectSnapshot, plannedPoints *float64) types.BurndownSeries {
	total := snapshot.TotalPoints
	if plannedPoints != nil {
		total = *plannedPoints
	}

	start, end := snapshot.SprintStart, snapshot.SprintEnd
	days := wholeDays(end.Sub(start))
	if days < 1 {
		days = 1
	}
	rate := total / float64(days)

	series := types.BurndownSeries{TotalPoints: total}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := civilDate(d)
		done := 0.0
		for _, item := range snapshot.Items {
			if item.ClosedAt != nil && !civilDate(item.ClosedAt.UTC()).After(day) {
				done += item.StoryPoints
			}
		}
		elapsed := wholeDays(d.Sub(start))

		series.Dates = append(series.Dates, d)
		series.Remaining = append(series.Remaining, math.Max(0, total-done))
		series.Ideal = append(series.Ideal, math.Max(0, total-rate*float64(elapsed)))
	}
	return series
}

// wholeDays floors d to a number of days.
func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}

// civilDate drops the time of day, keeping t's calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
