// Package dto defines the JSON report document consumed by external tooling
// (dashboards, CI logs). The document round-trips: re-reading it reproduces
// an equivalent graph's descriptive fields, though not live execution state.
package dto

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/taskflow/taskflow/internal/core/cpm"
	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/plan"
	"github.com/taskflow/taskflow/internal/core/task"
	"github.com/taskflow/taskflow/internal/core/timeline"
)

// TeamAllocation maps task categories to the teams conventionally staffed
// on them. It is a static hint table carried verbatim into every report.
var TeamAllocation = map[string]string{
	"backend":        "platform",
	"frontend":       "product",
	"infrastructure": "sre",
	"data":           "analytics",
	"qa":             "quality",
}

// Report is the persisted reporting document.
type Report struct {
	Project            string                        `json:"project" validate:"required"`
	GeneratedAt        time.Time                     `json:"generated_at"`
	Statistics         Statistics                    `json:"statistics"`
	Tasks              map[string]TaskEntry          `json:"tasks" validate:"required,dive"`
	ExecutionPlan      [][]string                    `json:"execution_plan"`
	Timeline           timeline.Report               `json:"timeline"`
	ResourceAllocation map[string]CategoryAllocation `json:"resource_allocation"`
	TeamHints          map[string]string             `json:"team_allocation"`
	CriticalPath       []string                      `json:"critical_path"`
}

// Statistics summarizes the task set.
type Statistics struct {
	TotalTasks         int            `json:"total_tasks"`
	TotalHours         float64        `json:"total_hours"`
	Categories         map[string]int `json:"categories"`
	CriticalPathLength int            `json:"critical_path_length"`
}

// TaskEntry is the descriptive projection of one task.
type TaskEntry struct {
	Name           string      `json:"name" validate:"required"`
	Description    string      `json:"description,omitempty"`
	Category       string      `json:"category,omitempty"`
	Priority       string      `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	EstimatedHours float64     `json:"estimated_hours" validate:"gte=0"`
	Dependencies   []string    `json:"dependencies,omitempty"`
	Outputs        task.Values `json:"outputs,omitempty"`
}

// CategoryAllocation aggregates one category for resource planning.
type CategoryAllocation struct {
	Tasks         []string `json:"tasks"`
	TotalHours    float64  `json:"total_hours"`
	PriorityScore float64  `json:"priority_score"`
}

// BuildReport derives the full document from a graph: plan, critical path,
// timeline, statistics, and resource allocation. Fails with the graph's
// *graph.CycleError when no plan exists.
func BuildReport(project string, g *graph.Graph) (*Report, error) {
	levels, err := plan.Levels(g)
	if err != nil {
		return nil, err
	}
	critical, err := cpm.Analyze(g)
	if err != nil {
		return nil, err
	}
	estimator := timeline.Estimator{}

	report := &Report{
		Project:            project,
		GeneratedAt:        time.Now().UTC(),
		Tasks:              make(map[string]TaskEntry, g.Len()),
		ExecutionPlan:      levels,
		Timeline:           estimator.FromLevels(g, levels),
		ResourceAllocation: make(map[string]CategoryAllocation),
		TeamHints:          TeamAllocation,
		CriticalPath:       critical.Path,
	}

	categories := make(map[string]int)
	g.Each(func(t *task.Task) {
		report.Tasks[t.ID] = TaskEntry{
			Name:           t.Name,
			Description:    t.Description,
			Category:       t.Category,
			Priority:       t.Priority.String(),
			EstimatedHours: t.EstimatedHours,
			Dependencies:   append([]string(nil), t.Dependencies...),
			Outputs:        t.Outputs.Clone(),
		}
		if t.Category != "" {
			categories[t.Category]++
			alloc := report.ResourceAllocation[t.Category]
			alloc.Tasks = append(alloc.Tasks, t.ID)
			alloc.TotalHours += t.EstimatedHours
			alloc.PriorityScore += t.Priority.Weight()
			report.ResourceAllocation[t.Category] = alloc
		}
	})
	for category := range report.ResourceAllocation {
		sort.Strings(report.ResourceAllocation[category].Tasks)
	}

	report.Statistics = Statistics{
		TotalTasks:         g.Len(),
		TotalHours:         g.TotalHours(),
		Categories:         categories,
		CriticalPathLength: len(critical.Path),
	}
	return report, nil
}

// Marshal renders the document as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Load parses a report document.
func Load(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Graph rebuilds an equivalent graph from the document's descriptive fields.
// Execution state (statuses, timestamps) is not reconstructed; tasks start
// pending.
func (r *Report) Graph() (*graph.Graph, error) {
	ids := make([]string, 0, len(r.Tasks))
	for id := range r.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tasks := make([]*task.Task, 0, len(ids))
	for _, id := range ids {
		entry := r.Tasks[id]
		t, err := task.New(id, entry.Name, entry.EstimatedHours, entry.Dependencies...)
		if err != nil {
			return nil, err
		}
		t.Description = entry.Description
		t.Category = entry.Category
		if entry.Priority != "" {
			if err := t.Priority.UnmarshalText([]byte(entry.Priority)); err != nil {
				return nil, err
			}
		}
		tasks = append(tasks, t)
	}
	return graph.Build(tasks)
}
