// Package timeline derives calendar-time projections from a level plan.
//
// Tasks within a level are modeled as fully parallel, levels as strictly
// serial: a level's duration is the maximum estimate among its tasks, and
// the schedule is the running sum of level durations converted to workdays.
package timeline

import (
	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/plan"
)

// DefaultHoursPerDay is the workday divisor used when none is configured.
const DefaultHoursPerDay = 8.0

// LevelEstimate describes the schedule of a single level.
type LevelEstimate struct {
	Level           int      `json:"level"`
	TaskIDs         []string `json:"task_ids"`
	Hours           float64  `json:"hours"`
	CumulativeHours float64  `json:"cumulative_hours"`
	StartDay        float64  `json:"start_day"`
	EndDay          float64  `json:"end_day"`
}

// Report is the full calendar projection for a plan.
type Report struct {
	Levels      []LevelEstimate `json:"levels"`
	TotalHours  float64         `json:"total_hours"`
	TotalDays   float64         `json:"total_days"`
	HoursPerDay float64         `json:"hours_per_day"`
	// Efficiency is sum(level maxima) / sum(all task hours). A value below 1
	// means the plan benefits from parallelism; exactly 1 means the plan is
	// a fully serial chain.
	Efficiency float64 `json:"parallel_efficiency"`
}

// Estimator converts level plans into calendar schedules.
type Estimator struct {
	// HoursPerDay is the workday divisor; zero selects DefaultHoursPerDay.
	HoursPerDay float64
}

// Timeline computes the schedule for the graph's level plan. A cyclic graph
// fails with the scheduler's *graph.CycleError.
func (e Estimator) Timeline(g *graph.Graph) (Report, error) {
	levels, err := plan.Levels(g)
	if err != nil {
		return Report{}, err
	}
	return e.FromLevels(g, levels), nil
}

// FromLevels computes the schedule for an already-computed level plan.
func (e Estimator) FromLevels(g *graph.Graph, levels [][]string) Report {
	hoursPerDay := e.HoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = DefaultHoursPerDay
	}

	report := Report{
		Levels:      make([]LevelEstimate, 0, len(levels)),
		HoursPerDay: hoursPerDay,
	}

	var cumulative float64
	for i, level := range levels {
		var peak float64
		for _, id := range level {
			if t, ok := g.Task(id); ok && t.EstimatedHours > peak {
				peak = t.EstimatedHours
			}
		}
		start := cumulative / hoursPerDay
		cumulative += peak
		report.Levels = append(report.Levels, LevelEstimate{
			Level:           i,
			TaskIDs:         append([]string(nil), level...),
			Hours:           peak,
			CumulativeHours: cumulative,
			StartDay:        start,
			EndDay:          cumulative / hoursPerDay,
		})
	}

	report.TotalHours = cumulative
	report.TotalDays = cumulative / hoursPerDay

	if total := g.TotalHours(); total > 0 {
		report.Efficiency = cumulative / total
	}
	return report
}
